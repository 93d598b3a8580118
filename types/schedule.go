package types

import "time"

// Schedule describes when and how a team is told about its open pull requests.
// CronExpression is always evaluated in UTC.
type Schedule struct {
	ID                   string
	UserID               string
	Name                 string
	CronExpression       string
	GitProviderID        string
	Repositories         []string
	MessagingProviderID  string
	ChannelID            string
	EscalationProviderID *string
	EscalationChannelID  *string
	EscalationDays       *int
	Filters              FilterSpec
	SendWhenEmpty        bool
	IsActive             bool
	LastExecutedAt       *time.Time
}

// EscalationEnabled reports whether the schedule has a complete escalation target.
func (s Schedule) EscalationEnabled() bool {
	return s.EscalationProviderID != nil && *s.EscalationProviderID != "" &&
		s.EscalationChannelID != nil && *s.EscalationChannelID != "" &&
		s.EscalationDays != nil && *s.EscalationDays > 0
}
