// Package provider is the gateway between the engine and git/chat providers.
// Each persisted provider kind maps to one implementation through a Registry.
package provider

import (
	"context"

	"github.com/RezaEskandarii/prnotifier/internal/format"
	"github.com/RezaEskandarii/prnotifier/types"
)

// Credentials authorize calls against one provider connection.
// BaseURL is only set for self-hosted installations.
type Credentials struct {
	Token   string
	BaseURL string
}

// CredentialsFor extracts the call credentials of a stored connection.
func CredentialsFor(conn types.ProviderConnection) Credentials {
	c := Credentials{Token: conn.AccessToken}
	if conn.BaseURL != nil {
		c.BaseURL = *conn.BaseURL
	}
	return c
}

// FilterHints let a git client narrow what it fetches. The filter pipeline still runs
// over the result.
type FilterHints struct {
	IncludeDrafts bool
}

// Target addresses a chat message. Webhook based providers ignore Token and Channel.
type Target struct {
	Token      string
	WebhookURL string
	Channel    string
}

// TargetFor builds the target of channel on a stored messaging connection.
func TargetFor(conn types.ProviderConnection, channel string) Target {
	t := Target{Token: conn.AccessToken, Channel: channel}
	if conn.WebhookURL != nil {
		t.WebhookURL = *conn.WebhookURL
	}
	return t
}

// GitClient lists the open pull requests of a set of repositories.
type GitClient interface {
	FetchPullRequests(ctx context.Context, creds Credentials, repos []string, hints FilterHints) ([]types.PullRequest, error)
}

// ChatClient delivers a rendered message.
type ChatClient interface {
	SendMessage(ctx context.Context, target Target, msg format.Message) error
}

// TokenRefresher renews the tokens of a connection. A nil result with a nil error means
// the provider's tokens never expire and nothing was changed.
type TokenRefresher interface {
	Refresh(ctx context.Context, conn types.ProviderConnection) (*types.Tokens, error)
}
