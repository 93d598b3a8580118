package mocks

import (
	"context"

	"github.com/RezaEskandarii/prnotifier/types"
)

// MockEscalationStore is a mock implementation of store.EscalationStore for testing.
type MockEscalationStore struct {
	GetTrackingFunc         func(ctx context.Context, scheduleID, pullRequestID string) (*types.EscalationTracking, error)
	UpsertTrackingFunc      func(ctx context.Context, entry types.EscalationTracking) error
	DeleteStaleTrackingFunc func(ctx context.Context, scheduleID string, activePullRequestIDs []string) (int64, error)
}

func (m *MockEscalationStore) GetTracking(ctx context.Context, scheduleID, pullRequestID string) (*types.EscalationTracking, error) {
	if m.GetTrackingFunc != nil {
		return m.GetTrackingFunc(ctx, scheduleID, pullRequestID)
	}
	return nil, nil
}

func (m *MockEscalationStore) UpsertTracking(ctx context.Context, entry types.EscalationTracking) error {
	if m.UpsertTrackingFunc != nil {
		return m.UpsertTrackingFunc(ctx, entry)
	}
	return nil
}

func (m *MockEscalationStore) DeleteStaleTracking(ctx context.Context, scheduleID string, activePullRequestIDs []string) (int64, error) {
	if m.DeleteStaleTrackingFunc != nil {
		return m.DeleteStaleTrackingFunc(ctx, scheduleID, activePullRequestIDs)
	}
	return 0, nil
}
