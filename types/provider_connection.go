package types

import "time"

// ProviderKind is the persisted provider type used to pick an implementation.
type ProviderKind string

const (
	ProviderGitHub  ProviderKind = "github"
	ProviderGitLab  ProviderKind = "gitlab"
	ProviderSlack   ProviderKind = "slack"
	ProviderDiscord ProviderKind = "discord"
)

func (k ProviderKind) String() string {
	return string(k)
}

// ProviderCategory selects the table a connection lives in.
type ProviderCategory string

const (
	CategoryGit       ProviderCategory = "git"
	CategoryMessaging ProviderCategory = "messaging"
)

// ProviderConnection is a user's authorized link to a git or chat provider.
type ProviderConnection struct {
	ID             string
	UserID         string
	Kind           ProviderKind
	AccessToken    string
	RefreshToken   *string
	TokenExpiresAt *time.Time
	WebhookURL     *string
	BaseURL        *string
}

// Tokens is the result of a token refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
}
