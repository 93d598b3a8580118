package provider

import (
	"context"

	"github.com/RezaEskandarii/prnotifier/types"
)

// NoopRefresher serves providers whose tokens do not expire.
type NoopRefresher struct{}

func (NoopRefresher) Refresh(ctx context.Context, conn types.ProviderConnection) (*types.Tokens, error) {
	return nil, nil
}
