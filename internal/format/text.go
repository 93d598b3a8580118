package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

var markdownEscaper = strings.NewReplacer("[", "(", "]", ")", "*", "\\*", "_", "\\_", "`", "'")

func textLine(now time.Time) lineFunc {
	return func(pr types.PullRequest) string {
		title := markdownEscaper.Replace(clip(pr.Title, maxTitleChars))
		return fmt.Sprintf("• [#%d %s](<%s>) by %s · %s",
			pr.Number, title, pr.URL, markdownEscaper.Replace(pr.Author), details(pr, now))
	}
}

func renderText(scheduleName string, prs []types.PullRequest, now time.Time) Message {
	if len(prs) == 0 {
		return Message{Text: "🎉 " + allClearText(scheduleName), AllClear: true}
	}

	var b strings.Builder
	header := fmt.Sprintf("📋 **%s**: %s need attention", scheduleName, pluralize(len(prs), "open pull request"))
	b.WriteString(clip(header, MaxDiscordChars/4))

	msg := Message{}
	line := textLine(now)
	skipped := 0
	for _, bucket := range Categorize(prs, now) {
		heading := fmt.Sprintf("\n\n**%s %s (%d)**", bucket.Category.emoji(), bucket.Category, len(bucket.PullRequests))
		remaining := MaxDiscordChars - runeLen(b.String()) - trailerReserve
		if remaining < runeLen(heading)+trailerReserve {
			skipped += len(bucket.PullRequests)
			continue
		}
		text, omitted := renderList(heading, bucket.PullRequests, line, remaining)
		if omitted > 0 {
			msg.Truncated = true
		}
		b.WriteString(text)
	}

	if skipped > 0 {
		msg.Truncated = true
		b.WriteString("\n\n")
		b.WriteString(moreLine(skipped))
	}
	msg.Text = b.String()
	return msg
}

func renderTextEscalation(scheduleName string, escalationDays int, prs []types.PullRequest, now time.Time) Message {
	heading := fmt.Sprintf("🚨 **Escalation: %s**\n%s open longer than %s",
		clip(scheduleName, MaxDiscordChars/4), pluralize(len(prs), "pull request"), pluralize(escalationDays, "day"))
	text, omitted := renderList(heading, prs, textLine(now), MaxDiscordChars)
	return Message{Text: text, Truncated: omitted > 0}
}
