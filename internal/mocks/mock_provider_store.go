package mocks

import (
	"context"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

// MockProviderStore is a mock implementation of store.ProviderStore for testing.
type MockProviderStore struct {
	GetGitProviderFunc                 func(ctx context.Context, id string) (*types.ProviderConnection, error)
	GetMessagingProviderFunc           func(ctx context.Context, id string) (*types.ProviderConnection, error)
	ListExpiringGitProvidersFunc       func(ctx context.Context, before time.Time) ([]types.ProviderConnection, error)
	ListExpiringMessagingProvidersFunc func(ctx context.Context, before time.Time) ([]types.ProviderConnection, error)
	UpdateGitProviderTokensFunc        func(ctx context.Context, id string, tokens types.Tokens) error
	UpdateMessagingProviderTokensFunc  func(ctx context.Context, id string, tokens types.Tokens) error
}

func (m *MockProviderStore) GetGitProvider(ctx context.Context, id string) (*types.ProviderConnection, error) {
	if m.GetGitProviderFunc != nil {
		return m.GetGitProviderFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockProviderStore) GetMessagingProvider(ctx context.Context, id string) (*types.ProviderConnection, error) {
	if m.GetMessagingProviderFunc != nil {
		return m.GetMessagingProviderFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockProviderStore) ListExpiringGitProviders(ctx context.Context, before time.Time) ([]types.ProviderConnection, error) {
	if m.ListExpiringGitProvidersFunc != nil {
		return m.ListExpiringGitProvidersFunc(ctx, before)
	}
	return nil, nil
}

func (m *MockProviderStore) ListExpiringMessagingProviders(ctx context.Context, before time.Time) ([]types.ProviderConnection, error) {
	if m.ListExpiringMessagingProvidersFunc != nil {
		return m.ListExpiringMessagingProvidersFunc(ctx, before)
	}
	return nil, nil
}

func (m *MockProviderStore) UpdateGitProviderTokens(ctx context.Context, id string, tokens types.Tokens) error {
	if m.UpdateGitProviderTokensFunc != nil {
		return m.UpdateGitProviderTokensFunc(ctx, id, tokens)
	}
	return nil
}

func (m *MockProviderStore) UpdateMessagingProviderTokens(ctx context.Context, id string, tokens types.Tokens) error {
	if m.UpdateMessagingProviderTokensFunc != nil {
		return m.UpdateMessagingProviderTokensFunc(ctx, id, tokens)
	}
	return nil
}
