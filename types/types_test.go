package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPullRequest_AgeDaysTruncates(t *testing.T) {
	now := time.Date(2025, 6, 10, 16, 0, 0, 0, time.UTC)
	pr := PullRequest{CreatedAt: now.Add(-(3*24*time.Hour + 23*time.Hour))}

	assert.Equal(t, 3, pr.AgeDays(now))
	assert.Equal(t, 3*24*time.Hour+23*time.Hour, pr.Age(now))
}

func TestSchedule_EscalationEnabled(t *testing.T) {
	provider, channel, days := "mp-1", "C123", 3

	assert.False(t, Schedule{}.EscalationEnabled())
	assert.False(t, Schedule{EscalationProviderID: &provider, EscalationChannelID: &channel}.EscalationEnabled())
	assert.True(t, Schedule{
		EscalationProviderID: &provider,
		EscalationChannelID:  &channel,
		EscalationDays:       &days,
	}.EscalationEnabled())
}

func TestFilterSpec_IsEmpty(t *testing.T) {
	min := 1
	assert.True(t, FilterSpec{}.IsEmpty())
	assert.False(t, FilterSpec{MinAgeDays: &min}.IsEmpty())
	assert.False(t, FilterSpec{Labels: []string{"bug"}}.IsEmpty())
}

func TestNewPaginationResult(t *testing.T) {
	res := NewPaginationResult([]int{1, 2}, 5, 2, 2)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNextPage)
	assert.True(t, res.HasPreviousPage)

	empty := NewPaginationResult([]int{}, 0, 1, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
}
