package types

import (
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/state"
)

// ExecutionLog is written once per executor run and never updated.
type ExecutionLog struct {
	ID                   string                `json:"id"`
	ScheduleID           string                `json:"scheduleId"`
	ExecutedAt           time.Time             `json:"executedAt"`
	Status               state.ExecutionStatus `json:"status"`
	PullRequestsFound    int                   `json:"pullRequestsFound"`
	MessagesSent         int                   `json:"messagesSent"`
	EscalationsTriggered int                   `json:"escalationsTriggered"`
	ErrorMessage         *string               `json:"errorMessage,omitempty"`
	Duration             time.Duration         `json:"-"`
}

// ExecutionTimeMs is the persisted form of Duration.
func (l ExecutionLog) ExecutionTimeMs() int64 {
	return l.Duration.Milliseconds()
}
