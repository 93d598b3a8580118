// Package oauthstate issues single use OAuth state tokens shared by every instance
// through Redis.
package oauthstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/constants"
	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "prnotifier:oauth_state:"

// ErrStateNotFound is returned for unknown, expired or already consumed states.
var ErrStateNotFound = errors.New("oauth state not found")

// Entry is what an issued state remembers about the flow that started it.
type Entry struct {
	UserID   string             `json:"userId"`
	Provider types.ProviderKind `json:"provider"`
	IssuedAt time.Time          `json:"issuedAt"`
}

type Store struct {
	client   redis.Cmdable
	ttl      time.Duration
	newState func() string
	now      func() time.Time
}

func NewStore(client redis.Cmdable) *Store {
	return &Store{
		client:   client,
		ttl:      constants.OAuthStateTTL,
		newState: uuid.NewString,
		now:      time.Now,
	}
}

func key(state string) string {
	return keyPrefix + state
}

// Issue creates a state token for userID connecting provider. It expires after the TTL.
func (s *Store) Issue(ctx context.Context, userID string, provider types.ProviderKind) (string, error) {
	state := s.newState()
	payload, err := json.Marshal(Entry{UserID: userID, Provider: provider, IssuedAt: s.now().UTC()})
	if err != nil {
		return "", fmt.Errorf("encode oauth state: %w", err)
	}
	if err := s.client.Set(ctx, key(state), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// Consume returns the entry of state and deletes it in the same round trip, so a state
// can be redeemed once across all instances.
func (s *Store) Consume(ctx context.Context, state string) (*Entry, error) {
	if state == "" {
		return nil, ErrStateNotFound
	}
	raw, err := s.client.GetDel(ctx, key(state)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode oauth state: %w", err)
	}
	return &entry, nil
}
