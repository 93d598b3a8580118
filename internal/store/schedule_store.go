package store

import (
	"context"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

// ScheduleStore defines the interface for schedules and their execution logs.
type ScheduleStore interface {
	// ListActiveSchedules returns every schedule with is_active set.
	ListActiveSchedules(ctx context.Context) ([]types.Schedule, error)

	// MarkExecuted moves the schedule's last-executed timestamp to at.
	// The timestamp never moves backwards; an older at is ignored.
	MarkExecuted(ctx context.Context, scheduleID string, at time.Time) error

	// CreateExecutionLog appends one execution log row.
	CreateExecutionLog(ctx context.Context, entry types.ExecutionLog) error

	// ListExecutionLogs returns a schedule's logs, newest first.
	ListExecutionLogs(ctx context.Context, scheduleID string, page, pageSize int) (*types.PaginationResult[types.ExecutionLog], error)
}
