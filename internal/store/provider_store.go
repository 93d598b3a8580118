package store

import (
	"context"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

// ProviderStore reads and updates provider connection records.
// Get methods return nil without error when the record does not exist.
type ProviderStore interface {
	GetGitProvider(ctx context.Context, id string) (*types.ProviderConnection, error)
	GetMessagingProvider(ctx context.Context, id string) (*types.ProviderConnection, error)

	// ListExpiringGitProviders returns git connections whose token expires at or before before.
	ListExpiringGitProviders(ctx context.Context, before time.Time) ([]types.ProviderConnection, error)
	ListExpiringMessagingProviders(ctx context.Context, before time.Time) ([]types.ProviderConnection, error)

	UpdateGitProviderTokens(ctx context.Context, id string, tokens types.Tokens) error
	UpdateMessagingProviderTokens(ctx context.Context, id string, tokens types.Tokens) error
}
