package mocks

import (
	"context"

	"github.com/RezaEskandarii/prnotifier/internal/format"
	"github.com/RezaEskandarii/prnotifier/internal/provider"
	"github.com/RezaEskandarii/prnotifier/types"
)

// MockGitClient is a mock implementation of provider.GitClient for testing.
type MockGitClient struct {
	FetchPullRequestsFunc func(ctx context.Context, creds provider.Credentials, repos []string, hints provider.FilterHints) ([]types.PullRequest, error)
}

func (m *MockGitClient) FetchPullRequests(ctx context.Context, creds provider.Credentials, repos []string, hints provider.FilterHints) ([]types.PullRequest, error) {
	if m.FetchPullRequestsFunc != nil {
		return m.FetchPullRequestsFunc(ctx, creds, repos, hints)
	}
	return []types.PullRequest{}, nil
}

// MockChatClient is a mock implementation of provider.ChatClient for testing.
type MockChatClient struct {
	SendMessageFunc func(ctx context.Context, target provider.Target, msg format.Message) error
}

func (m *MockChatClient) SendMessage(ctx context.Context, target provider.Target, msg format.Message) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, target, msg)
	}
	return nil
}

// MockTokenRefresher is a mock implementation of provider.TokenRefresher for testing.
type MockTokenRefresher struct {
	RefreshFunc func(ctx context.Context, conn types.ProviderConnection) (*types.Tokens, error)
}

func (m *MockTokenRefresher) Refresh(ctx context.Context, conn types.ProviderConnection) (*types.Tokens, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, conn)
	}
	return nil, nil
}
