package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RezaEskandarii/prnotifier/types"
)

// Size limits of the chat providers.
const (
	MaxPRsPerCategory    = 10
	MaxSlackBlocks       = 50
	MaxSlackSectionChars = 3000
	MaxSlackHeaderChars  = 150
	MaxDiscordChars      = 2000

	maxTitleChars = 120

	// trailerReserve leaves room for one "and N more" line after a budget check.
	trailerReserve = 64
)

// Message is a rendered notification. Blocks is only set for block based providers.
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`

	// Truncated is set when at least one pull request was left out to fit the size budget.
	Truncated bool `json:"-"`
	AllClear  bool `json:"-"`
}

// Block is a Slack Block Kit layout block.
type Block struct {
	Type     string       `json:"type"`
	Text     *TextObject  `json:"text,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

func headerBlock(text string) Block {
	return Block{Type: "header", Text: &TextObject{Type: "plain_text", Text: clip(text, MaxSlackHeaderChars), Emoji: true}}
}

func sectionBlock(markdown string) Block {
	return Block{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: markdown}}
}

func contextBlock(markdown string) Block {
	return Block{Type: "context", Elements: []TextObject{{Type: "mrkdwn", Text: markdown}}}
}

func dividerBlock() Block {
	return Block{Type: "divider"}
}

func moreLine(n int) string {
	return fmt.Sprintf("_…and %d more_", n)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func ageLabel(pr types.PullRequest, now time.Time) string {
	days := pr.AgeDays(now)
	if days == 0 {
		return "today"
	}
	return pluralize(days, "day")
}

func details(pr types.PullRequest, now time.Time) string {
	parts := []string{pr.Repository, ageLabel(pr, now)}
	if pr.Additions != nil && pr.Deletions != nil {
		parts = append(parts, fmt.Sprintf("+%d/-%d", *pr.Additions, *pr.Deletions))
	}
	if pr.Draft {
		parts = append(parts, "draft")
	}
	return strings.Join(parts, " · ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// clip shortens s to at most max runes, marking the cut with an ellipsis.
func clip(s string, max int) string {
	if runeLen(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
