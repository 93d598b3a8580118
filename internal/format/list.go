package format

import (
	"strings"

	"github.com/RezaEskandarii/prnotifier/types"
)

type lineFunc func(pr types.PullRequest) string

// renderList writes heading followed by one line per pull request, stopping at
// MaxPRsPerCategory lines or when budget runes would be exceeded. Left out pull requests
// are announced with a trailing "and N more" line. It returns the text and how many were
// left out.
func renderList(heading string, prs []types.PullRequest, line lineFunc, budget int) (string, int) {
	var b strings.Builder
	b.WriteString(heading)
	used := runeLen(heading)
	limit := budget - trailerReserve

	shown := 0
	for _, pr := range prs {
		if shown == MaxPRsPerCategory {
			break
		}
		l := "\n" + line(pr)
		if used+runeLen(l) > limit {
			break
		}
		b.WriteString(l)
		used += runeLen(l)
		shown++
	}

	omitted := len(prs) - shown
	if omitted > 0 {
		b.WriteString("\n")
		b.WriteString(moreLine(omitted))
	}
	return b.String(), omitted
}
