package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func slackLine(now time.Time) lineFunc {
	return func(pr types.PullRequest) string {
		title := slackEscaper.Replace(clip(pr.Title, maxTitleChars))
		return fmt.Sprintf("• <%s|#%d %s> by %s · %s",
			pr.URL, pr.Number, title, slackEscaper.Replace(pr.Author), details(pr, now))
	}
}

func renderSlack(scheduleName string, prs []types.PullRequest, now time.Time) Message {
	if len(prs) == 0 {
		text := allClearText(scheduleName)
		return Message{
			Text:     text,
			Blocks:   []Block{headerBlock("🎉 " + scheduleName), sectionBlock(text)},
			AllClear: true,
		}
	}

	summary := fmt.Sprintf("%s: %s need attention", scheduleName, pluralize(len(prs), "open pull request"))
	msg := Message{Text: summary}
	msg.Blocks = append(msg.Blocks, headerBlock("📋 "+scheduleName))
	msg.Blocks = append(msg.Blocks, contextBlock(slackEscaper.Replace(summary)))

	line := slackLine(now)
	skipped := 0
	for _, bucket := range Categorize(prs, now) {
		// Room for this section, a divider and the closing context block.
		if len(msg.Blocks)+3 > MaxSlackBlocks {
			skipped += len(bucket.PullRequests)
			continue
		}
		heading := fmt.Sprintf("*%s %s (%d)*", bucket.Category.emoji(), bucket.Category, len(bucket.PullRequests))
		text, omitted := renderList(heading, bucket.PullRequests, line, MaxSlackSectionChars)
		if omitted > 0 {
			msg.Truncated = true
		}
		msg.Blocks = append(msg.Blocks, dividerBlock(), sectionBlock(text))
	}

	if skipped > 0 {
		msg.Truncated = true
		msg.Blocks = append(msg.Blocks, contextBlock(moreLine(skipped)))
	}
	return msg
}

func renderSlackEscalation(scheduleName string, escalationDays int, prs []types.PullRequest, now time.Time) Message {
	summary := fmt.Sprintf("%s open longer than %s", pluralize(len(prs), "pull request"), pluralize(escalationDays, "day"))
	heading := fmt.Sprintf("*%s*", slackEscaper.Replace(summary))
	text, omitted := renderList(heading, prs, slackLine(now), MaxSlackSectionChars)

	return Message{
		Text: fmt.Sprintf("Escalation for %s: %s", scheduleName, summary),
		Blocks: []Block{
			headerBlock("🚨 Escalation: " + scheduleName),
			sectionBlock(text),
		},
		Truncated: omitted > 0,
	}
}
