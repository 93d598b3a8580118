// Package filter narrows a fetched pull request list down to what a schedule cares about.
package filter

import (
	"strings"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

type stage func(pr types.PullRequest) bool

// Apply runs every configured criterion of spec over prs and returns the survivors in
// input order. Criteria that are not configured let everything through, so an empty spec
// returns prs unchanged. Ages are whole days relative to now.
func Apply(prs []types.PullRequest, spec types.FilterSpec, now time.Time) []types.PullRequest {
	stages := buildStages(spec, now)
	if len(stages) == 0 {
		return prs
	}

	out := make([]types.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if keep(pr, stages) {
			out = append(out, pr)
		}
	}
	return out
}

// WithoutDrafts drops draft pull requests, keeping input order. Drafts are never
// notified but still count as open for escalation tracking.
func WithoutDrafts(prs []types.PullRequest) []types.PullRequest {
	out := make([]types.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if !pr.Draft {
			out = append(out, pr)
		}
	}
	return out
}

func keep(pr types.PullRequest, stages []stage) bool {
	for _, s := range stages {
		if !s(pr) {
			return false
		}
	}
	return true
}

func buildStages(spec types.FilterSpec, now time.Time) []stage {
	var stages []stage

	if len(spec.Repositories) > 0 {
		allowed := lowerSet(spec.Repositories)
		stages = append(stages, func(pr types.PullRequest) bool {
			_, ok := allowed[strings.ToLower(pr.Repository)]
			return ok
		})
	}

	if len(spec.Labels) > 0 {
		wanted := lowerAll(spec.Labels)
		stages = append(stages, func(pr types.PullRequest) bool {
			for _, label := range pr.Labels {
				if containsAny(strings.ToLower(label), wanted) {
					return true
				}
			}
			return false
		})
	}

	if len(spec.TitleKeywords) > 0 {
		keywords := lowerAll(spec.TitleKeywords)
		stages = append(stages, func(pr types.PullRequest) bool {
			return containsAny(strings.ToLower(pr.Title), keywords)
		})
	}

	if len(spec.ExcludeAuthors) > 0 {
		excluded := make(map[string]struct{}, len(spec.ExcludeAuthors))
		for _, a := range spec.ExcludeAuthors {
			excluded[a] = struct{}{}
		}
		stages = append(stages, func(pr types.PullRequest) bool {
			_, banned := excluded[pr.Author]
			return !banned
		})
	}

	if spec.MinAgeDays != nil {
		minDays := *spec.MinAgeDays
		stages = append(stages, func(pr types.PullRequest) bool {
			return pr.AgeDays(now) >= minDays
		})
	}

	if spec.MaxAgeDays != nil {
		maxDays := *spec.MaxAgeDays
		stages = append(stages, func(pr types.PullRequest) bool {
			return pr.AgeDays(now) <= maxDays
		})
	}

	return stages
}

// containsAny reports whether s contains any non-empty needle. Both sides are lower case.
func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range lowerAll(values) {
		set[v] = struct{}{}
	}
	return set
}
