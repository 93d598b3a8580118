package constants

import "time"

// Postgres advisory lock ids.
const (
	MigrationLock = iota + 1
	TokenRefreshLock
)

var Locks = []int{
	MigrationLock,
	TokenRefreshLock,
}

const (
	// ReEscalationCooldown is the minimum gap between two escalations of the same PR.
	ReEscalationCooldown = 7 * 24 * time.Hour

	// StaleAfter puts a PR in the stale bucket of a regular notification.
	StaleAfter = 7 * 24 * time.Hour

	// DefaultTokenLookahead is how far ahead of expiry tokens are refreshed.
	DefaultTokenLookahead = time.Hour

	// OAuthStateTTL bounds the lifetime of an issued OAuth state token.
	OAuthStateTTL = 10 * time.Minute
)
