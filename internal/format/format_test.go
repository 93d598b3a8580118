package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func makePR(n int, mutate func(pr *types.PullRequest)) types.PullRequest {
	pr := types.PullRequest{
		ID:         fmt.Sprintf("pr-%d", n),
		Number:     n,
		Title:      fmt.Sprintf("Change number %d", n),
		Author:     "alice",
		URL:        fmt.Sprintf("https://git.example.com/acme/api/pull/%d", n),
		Repository: "acme/api",
		CreatedAt:  now.Add(-24 * time.Hour),
	}
	if mutate != nil {
		mutate(&pr)
	}
	return pr
}

func manyPRs(count int, mutate func(pr *types.PullRequest)) []types.PullRequest {
	prs := make([]types.PullRequest, 0, count)
	for i := 1; i <= count; i++ {
		prs = append(prs, makePR(i, mutate))
	}
	return prs
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		pr   types.PullRequest
		want Category
	}{
		{"approved", makePR(1, func(p *types.PullRequest) { p.Approved = true }), ReadyToMerge},
		{"approved but changes requested", makePR(2, func(p *types.PullRequest) { p.Approved = true; p.ChangesRequested = true }), NeedsChanges},
		{"changes requested", makePR(3, func(p *types.PullRequest) { p.ChangesRequested = true }), NeedsChanges},
		{"stale with reviewers", makePR(4, func(p *types.PullRequest) {
			p.CreatedAt = now.Add(-8 * 24 * time.Hour)
			p.Reviewers = []string{"bob"}
		}), Stale},
		{"under review", makePR(5, func(p *types.PullRequest) { p.Reviewers = []string{"bob"} }), UnderReview},
		{"awaiting review", makePR(6, nil), AwaitingReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.pr, now))
		})
	}
}

func TestCategorize_OrderAndGrouping(t *testing.T) {
	prs := []types.PullRequest{
		makePR(1, nil),
		makePR(2, func(p *types.PullRequest) { p.Approved = true }),
		makePR(3, func(p *types.PullRequest) { p.ChangesRequested = true }),
		makePR(4, nil),
	}
	buckets := Categorize(prs, now)
	require.Len(t, buckets, 3)
	assert.Equal(t, ReadyToMerge, buckets[0].Category)
	assert.Equal(t, NeedsChanges, buckets[1].Category)
	assert.Equal(t, AwaitingReview, buckets[2].Category)
	assert.Equal(t, []string{"pr-1", "pr-4"}, types.PullRequestIDs(buckets[2].PullRequests))
}

func TestRender_AllClear(t *testing.T) {
	for _, kind := range []types.ProviderKind{types.ProviderSlack, types.ProviderDiscord} {
		msg := Render(kind, "Morning digest", nil, now)
		assert.True(t, msg.AllClear, kind)
		assert.False(t, msg.Truncated, kind)
		assert.Contains(t, msg.Text, "all clear", kind)
	}
}

func TestRender_SlackBlocks(t *testing.T) {
	prs := []types.PullRequest{
		makePR(1, func(p *types.PullRequest) { p.Approved = true; p.Title = "Fix <script> & co" }),
		makePR(2, func(p *types.PullRequest) { p.Additions = intPtr(10); p.Deletions = intPtr(2); p.Draft = true }),
	}
	msg := Render(types.ProviderSlack, "Morning digest", prs, now)

	assert.False(t, msg.AllClear)
	assert.False(t, msg.Truncated)
	assert.Contains(t, msg.Text, "2 open pull requests")
	require.NotEmpty(t, msg.Blocks)
	assert.Equal(t, "header", msg.Blocks[0].Type)

	var sections []string
	for _, b := range msg.Blocks {
		if b.Type == "section" {
			sections = append(sections, b.Text.Text)
		}
	}
	require.Len(t, sections, 2)
	assert.Contains(t, sections[0], "Ready to Merge (1)")
	assert.Contains(t, sections[0], "Fix &lt;script&gt; &amp; co")
	assert.Contains(t, sections[1], "+10/-2")
	assert.Contains(t, sections[1], "draft")

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"mrkdwn"`)
}

func TestRender_SlackTruncatesPerCategory(t *testing.T) {
	prs := manyPRs(MaxPRsPerCategory+5, nil)
	msg := Render(types.ProviderSlack, "Digest", prs, now)

	assert.True(t, msg.Truncated)
	var section string
	for _, b := range msg.Blocks {
		if b.Type == "section" {
			section = b.Text.Text
		}
	}
	assert.Equal(t, MaxPRsPerCategory, strings.Count(section, "• "))
	assert.Contains(t, section, "…and 5 more")
}

func TestRender_SlackRespectsLimits(t *testing.T) {
	longTitle := strings.Repeat("very long title ", 40)
	prs := manyPRs(60, func(p *types.PullRequest) { p.Title = longTitle })
	for i := range prs {
		switch i % 5 {
		case 0:
			prs[i].Approved = true
		case 1:
			prs[i].ChangesRequested = true
		case 2:
			prs[i].CreatedAt = now.Add(-30 * 24 * time.Hour)
		case 3:
			prs[i].Reviewers = []string{"bob"}
		}
	}
	msg := Render(types.ProviderSlack, "Digest", prs, now)

	assert.True(t, msg.Truncated)
	assert.LessOrEqual(t, len(msg.Blocks), MaxSlackBlocks)
	for _, b := range msg.Blocks {
		if b.Text != nil {
			assert.LessOrEqual(t, runeLen(b.Text.Text), MaxSlackSectionChars)
		}
	}
}

func TestRender_DiscordText(t *testing.T) {
	prs := []types.PullRequest{
		makePR(7, func(p *types.PullRequest) { p.ChangesRequested = true; p.Title = "Use [brackets] safely" }),
	}
	msg := Render(types.ProviderDiscord, "Digest", prs, now)

	assert.Empty(t, msg.Blocks)
	assert.False(t, msg.Truncated)
	assert.Contains(t, msg.Text, "Needs Changes (1)")
	assert.Contains(t, msg.Text, "[#7 Use (brackets) safely](<https://git.example.com/acme/api/pull/7>)")
	assert.Contains(t, msg.Text, "1 day")
}

func TestRender_DiscordStaysUnderLimitAndFlagsTruncation(t *testing.T) {
	longTitle := strings.Repeat("x", 200)
	prs := manyPRs(50, func(p *types.PullRequest) { p.Title = longTitle })
	for i := range prs {
		if i%2 == 0 {
			prs[i].Approved = true
		}
	}
	msg := Render(types.ProviderDiscord, "Digest", prs, now)

	assert.True(t, msg.Truncated)
	assert.LessOrEqual(t, runeLen(msg.Text), MaxDiscordChars)
	assert.Contains(t, msg.Text, "more_")
}

func TestRenderEscalation(t *testing.T) {
	prs := []types.PullRequest{makePR(3, func(p *types.PullRequest) { p.CreatedAt = now.Add(-4 * 24 * time.Hour) })}

	slack := RenderEscalation(types.ProviderSlack, "Digest", 3, prs, now)
	require.Len(t, slack.Blocks, 2)
	assert.Contains(t, slack.Blocks[0].Text.Text, "Escalation")
	assert.Contains(t, slack.Blocks[1].Text.Text, "1 pull request open longer than 3 days")
	assert.Contains(t, slack.Blocks[1].Text.Text, "4 days")

	discord := RenderEscalation(types.ProviderDiscord, "Digest", 3, prs, now)
	assert.Contains(t, discord.Text, "Escalation: Digest")
	assert.False(t, discord.Truncated)
}

func TestRenderEscalation_Truncates(t *testing.T) {
	prs := manyPRs(MaxPRsPerCategory+1, nil)
	msg := RenderEscalation(types.ProviderDiscord, "Digest", 1, prs, now)
	assert.True(t, msg.Truncated)
	assert.Contains(t, msg.Text, "…and 1 more")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcd…", clip("abcdefgh", 5))
}
