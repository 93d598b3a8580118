package mocks

import (
	"context"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

// MockScheduleStore is a mock implementation of store.ScheduleStore for testing.
type MockScheduleStore struct {
	ListActiveSchedulesFunc func(ctx context.Context) ([]types.Schedule, error)
	MarkExecutedFunc        func(ctx context.Context, scheduleID string, at time.Time) error
	CreateExecutionLogFunc  func(ctx context.Context, entry types.ExecutionLog) error
	ListExecutionLogsFunc   func(ctx context.Context, scheduleID string, page, pageSize int) (*types.PaginationResult[types.ExecutionLog], error)
}

func (m *MockScheduleStore) ListActiveSchedules(ctx context.Context) ([]types.Schedule, error) {
	if m.ListActiveSchedulesFunc != nil {
		return m.ListActiveSchedulesFunc(ctx)
	}
	return []types.Schedule{}, nil
}

func (m *MockScheduleStore) MarkExecuted(ctx context.Context, scheduleID string, at time.Time) error {
	if m.MarkExecutedFunc != nil {
		return m.MarkExecutedFunc(ctx, scheduleID, at)
	}
	return nil
}

func (m *MockScheduleStore) CreateExecutionLog(ctx context.Context, entry types.ExecutionLog) error {
	if m.CreateExecutionLogFunc != nil {
		return m.CreateExecutionLogFunc(ctx, entry)
	}
	return nil
}

func (m *MockScheduleStore) ListExecutionLogs(ctx context.Context, scheduleID string, page, pageSize int) (*types.PaginationResult[types.ExecutionLog], error) {
	if m.ListExecutionLogsFunc != nil {
		return m.ListExecutionLogsFunc(ctx, scheduleID, page, pageSize)
	}
	return &types.PaginationResult[types.ExecutionLog]{Items: []types.ExecutionLog{}}, nil
}
