// Package format renders pull request lists into chat messages that fit the
// provider's size limits.
package format

import (
	"fmt"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

// Render builds the regular notification for scheduleName. Slack gets Block Kit, every
// other provider gets markdown text. An empty prs renders the all clear message.
func Render(kind types.ProviderKind, scheduleName string, prs []types.PullRequest, now time.Time) Message {
	if kind == types.ProviderSlack {
		return renderSlack(scheduleName, prs, now)
	}
	return renderText(scheduleName, prs, now)
}

// RenderEscalation builds the notice for pull requests open longer than escalationDays.
func RenderEscalation(kind types.ProviderKind, scheduleName string, escalationDays int, prs []types.PullRequest, now time.Time) Message {
	if kind == types.ProviderSlack {
		return renderSlackEscalation(scheduleName, escalationDays, prs, now)
	}
	return renderTextEscalation(scheduleName, escalationDays, prs, now)
}

func allClearText(scheduleName string) string {
	return fmt.Sprintf("%s: all clear! No open pull requests need attention.", scheduleName)
}
