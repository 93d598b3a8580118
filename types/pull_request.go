package types

import "time"

const day = 24 * time.Hour

// PullRequest is fetched fresh on every run and never persisted.
// ID is provider scoped and stable across runs.
type PullRequest struct {
	ID               string
	Number           int
	Title            string
	Author           string
	URL              string
	CreatedAt        time.Time
	Repository       string
	Labels           []string
	Reviewers        []string
	Approved         bool
	ChangesRequested bool
	Draft            bool
	Additions        *int
	Deletions        *int
}

// Age returns how long the pull request has been open at now.
func (pr PullRequest) Age(now time.Time) time.Duration {
	return now.Sub(pr.CreatedAt)
}

// AgeDays returns the age in whole days, truncated.
func (pr PullRequest) AgeDays(now time.Time) int {
	return int(pr.Age(now) / day)
}

// PullRequestIDs returns the ids of prs in input order.
func PullRequestIDs(prs []PullRequest) []string {
	ids := make([]string, 0, len(prs))
	for _, pr := range prs {
		ids = append(ids, pr.ID)
	}
	return ids
}
