package store

import (
	"context"

	"github.com/RezaEskandarii/prnotifier/types"
)

// EscalationStore persists per (schedule, pull request) escalation state.
type EscalationStore interface {
	// GetTracking returns nil without error when no row exists.
	GetTracking(ctx context.Context, scheduleID, pullRequestID string) (*types.EscalationTracking, error)

	UpsertTracking(ctx context.Context, entry types.EscalationTracking) error

	// DeleteStaleTracking removes the schedule's rows whose pull request id is not in
	// activePullRequestIDs and returns how many were removed.
	DeleteStaleTracking(ctx context.Context, scheduleID string, activePullRequestIDs []string) (int64, error)
}
