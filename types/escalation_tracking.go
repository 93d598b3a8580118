package types

import "time"

// EscalationTracking records that a pull request has been escalated for a schedule.
// There is exactly one row per (ScheduleID, PullRequestID) while the PR keeps escalating.
type EscalationTracking struct {
	ScheduleID       string
	PullRequestID    string
	FirstEscalatedAt time.Time
	LastEscalatedAt  time.Time
	EscalationCount  int
}
