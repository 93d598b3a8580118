package oauthstate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/constants"
	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	s := NewStore(client)
	s.newState = func() string { return "state-1" }
	s.now = func() time.Time { return issuedAt }
	return s, mock
}

func encoded(t *testing.T, e Entry) []byte {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return b
}

func TestIssue_StoresEntryWithTTL(t *testing.T) {
	s, mock := newTestStore(t)
	entry := Entry{UserID: "u1", Provider: types.ProviderGitLab, IssuedAt: issuedAt}
	mock.ExpectSet("prnotifier:oauth_state:state-1", encoded(t, entry), constants.OAuthStateTTL).SetVal("OK")

	state, err := s.Issue(context.Background(), "u1", types.ProviderGitLab)

	require.NoError(t, err)
	assert.Equal(t, "state-1", state)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssue_RedisError(t *testing.T) {
	s, mock := newTestStore(t)
	entry := Entry{UserID: "u1", Provider: types.ProviderSlack, IssuedAt: issuedAt}
	mock.ExpectSet("prnotifier:oauth_state:state-1", encoded(t, entry), constants.OAuthStateTTL).SetErr(errors.New("READONLY"))

	_, err := s.Issue(context.Background(), "u1", types.ProviderSlack)

	assert.ErrorContains(t, err, "store oauth state")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_ReturnsEntryOnce(t *testing.T) {
	s, mock := newTestStore(t)
	entry := Entry{UserID: "u1", Provider: types.ProviderGitHub, IssuedAt: issuedAt}
	mock.ExpectGetDel("prnotifier:oauth_state:state-1").SetVal(string(encoded(t, entry)))
	mock.ExpectGetDel("prnotifier:oauth_state:state-1").RedisNil()

	got, err := s.Consume(context.Background(), "state-1")
	require.NoError(t, err)
	assert.Equal(t, entry, *got)

	_, err = s.Consume(context.Background(), "state-1")
	assert.ErrorIs(t, err, ErrStateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_EmptyState(t *testing.T) {
	s, mock := newTestStore(t)

	_, err := s.Consume(context.Background(), "")

	assert.ErrorIs(t, err, ErrStateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_CorruptPayload(t *testing.T) {
	s, mock := newTestStore(t)
	mock.ExpectGetDel("prnotifier:oauth_state:bad").SetVal("{not json")

	_, err := s.Consume(context.Background(), "bad")

	assert.ErrorContains(t, err, "decode oauth state")
	assert.NoError(t, mock.ExpectationsWereMet())
}
