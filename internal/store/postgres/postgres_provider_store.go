package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

const (
	gitProvidersTable       = "prnotifier_schema.git_providers"
	messagingProvidersTable = "prnotifier_schema.messaging_providers"
)

type PostgresProviderStore struct {
	db *sql.DB
}

func NewPostgresProviderStore(db *sql.DB) *PostgresProviderStore {
	return &PostgresProviderStore{db: db}
}

func (r *PostgresProviderStore) GetGitProvider(ctx context.Context, id string) (*types.ProviderConnection, error) {
	return r.get(ctx, types.CategoryGit, id)
}

func (r *PostgresProviderStore) GetMessagingProvider(ctx context.Context, id string) (*types.ProviderConnection, error) {
	return r.get(ctx, types.CategoryMessaging, id)
}

func (r *PostgresProviderStore) ListExpiringGitProviders(ctx context.Context, before time.Time) ([]types.ProviderConnection, error) {
	return r.listExpiring(ctx, types.CategoryGit, before)
}

func (r *PostgresProviderStore) ListExpiringMessagingProviders(ctx context.Context, before time.Time) ([]types.ProviderConnection, error) {
	return r.listExpiring(ctx, types.CategoryMessaging, before)
}

func (r *PostgresProviderStore) UpdateGitProviderTokens(ctx context.Context, id string, tokens types.Tokens) error {
	return r.updateTokens(ctx, types.CategoryGit, id, tokens)
}

func (r *PostgresProviderStore) UpdateMessagingProviderTokens(ctx context.Context, id string, tokens types.Tokens) error {
	return r.updateTokens(ctx, types.CategoryMessaging, id, tokens)
}

// selectColumns returns the column list of a table; the url column differs per category.
func selectColumns(category types.ProviderCategory) (table, columns string) {
	if category == types.CategoryGit {
		return gitProvidersTable, "id, user_id, kind, access_token, refresh_token, token_expires_at, NULL::TEXT AS webhook_url, base_url"
	}
	return messagingProvidersTable, "id, user_id, kind, access_token, refresh_token, token_expires_at, webhook_url, NULL::TEXT AS base_url"
}

func scanConnection(scan func(dest ...any) error) (types.ProviderConnection, error) {
	var c types.ProviderConnection
	err := scan(&c.ID, &c.UserID, &c.Kind, &c.AccessToken, &c.RefreshToken, &c.TokenExpiresAt, &c.WebhookURL, &c.BaseURL)
	return c, err
}

func (r *PostgresProviderStore) get(ctx context.Context, category types.ProviderCategory, id string) (*types.ProviderConnection, error) {
	table, columns := selectColumns(category)
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, columns, table), id)

	c, err := scanConnection(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s provider %s: %w", category, id, err)
	}
	return &c, nil
}

func (r *PostgresProviderStore) listExpiring(ctx context.Context, category types.ProviderCategory, before time.Time) ([]types.ProviderConnection, error) {
	table, columns := selectColumns(category)
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE token_expires_at IS NOT NULL AND token_expires_at <= $1
		ORDER BY token_expires_at ASC`, columns, table), before)
	if err != nil {
		return nil, fmt.Errorf("list expiring %s providers: %w", category, err)
	}
	defer rows.Close()

	var connections []types.ProviderConnection
	for rows.Next() {
		c, err := scanConnection(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s provider: %w", category, err)
		}
		connections = append(connections, c)
	}
	return connections, rows.Err()
}

func (r *PostgresProviderStore) updateTokens(ctx context.Context, category types.ProviderCategory, id string, tokens types.Tokens) error {
	table, _ := selectColumns(category)
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET access_token = $1,
		    refresh_token = COALESCE($2, refresh_token),
		    token_expires_at = $3,
		    updated_at = now()
		WHERE id = $4`, table), tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt, id)
	if err != nil {
		return fmt.Errorf("update %s provider %s tokens: %w", category, id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("update %s provider %s tokens: no such record", category, id)
	}
	return nil
}
