package format

import (
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/constants"
	"github.com/RezaEskandarii/prnotifier/types"
)

// Category is a display bucket. Lower values are shown first.
type Category int

const (
	ReadyToMerge Category = iota
	NeedsChanges
	Stale
	UnderReview
	AwaitingReview
)

var AllCategories = []Category{
	ReadyToMerge,
	NeedsChanges,
	Stale,
	UnderReview,
	AwaitingReview,
}

func (c Category) String() string {
	switch c {
	case ReadyToMerge:
		return "Ready to Merge"
	case NeedsChanges:
		return "Needs Changes"
	case Stale:
		return "Stale"
	case UnderReview:
		return "Under Review"
	default:
		return "Awaiting Review"
	}
}

func (c Category) emoji() string {
	switch c {
	case ReadyToMerge:
		return "✅"
	case NeedsChanges:
		return "🔧"
	case Stale:
		return "⏰"
	case UnderReview:
		return "👀"
	default:
		return "⏳"
	}
}

// CategoryOf returns the first bucket pr matches.
func CategoryOf(pr types.PullRequest, now time.Time) Category {
	switch {
	case pr.Approved && !pr.ChangesRequested:
		return ReadyToMerge
	case pr.ChangesRequested:
		return NeedsChanges
	case pr.Age(now) >= constants.StaleAfter:
		return Stale
	case len(pr.Reviewers) > 0:
		return UnderReview
	default:
		return AwaitingReview
	}
}

type Bucket struct {
	Category     Category
	PullRequests []types.PullRequest
}

// Categorize groups prs into non-empty buckets in display order, keeping input order inside a bucket.
func Categorize(prs []types.PullRequest, now time.Time) []Bucket {
	grouped := make(map[Category][]types.PullRequest, len(AllCategories))
	for _, pr := range prs {
		c := CategoryOf(pr, now)
		grouped[c] = append(grouped[c], pr)
	}

	buckets := make([]Bucket, 0, len(grouped))
	for _, c := range AllCategories {
		if len(grouped[c]) == 0 {
			continue
		}
		buckets = append(buckets, Bucket{Category: c, PullRequests: grouped[c]})
	}
	return buckets
}
