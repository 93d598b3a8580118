package provider

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com"
	githubPerPage       = 100
	githubMaxPages      = 10
)

type GitHubClient struct {
	baseURL string
	http    *httpDoer
}

func NewGitHubClient(baseURL string, timeout time.Duration, rateLimit float64) *GitHubClient {
	if baseURL == "" {
		baseURL = DefaultGitHubAPIURL
	}
	return &GitHubClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPDoer("github", timeout, rateLimit),
	}
}

type githubUser struct {
	Login string `json:"login"`
}

type githubPull struct {
	ID                 int64        `json:"id"`
	Number             int          `json:"number"`
	Title              string       `json:"title"`
	HTMLURL            string       `json:"html_url"`
	CreatedAt          time.Time    `json:"created_at"`
	Draft              bool         `json:"draft"`
	User               githubUser   `json:"user"`
	RequestedReviewers []githubUser `json:"requested_reviewers"`
	Labels             []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

type githubReview struct {
	User  githubUser `json:"user"`
	State string     `json:"state"`
}

func (c *GitHubClient) headers(token string) map[string]string {
	return map[string]string{
		"Authorization":        "Bearer " + token,
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
}

// FetchPullRequests lists the open pull requests of every "owner/name" repository and
// resolves their review state.
func (c *GitHubClient) FetchPullRequests(ctx context.Context, creds Credentials, repos []string, hints FilterHints) ([]types.PullRequest, error) {
	base := c.baseURL
	if creds.BaseURL != "" {
		base = strings.TrimRight(creds.BaseURL, "/")
	}

	var result []types.PullRequest
	for _, repo := range repos {
		pulls, err := c.listPulls(ctx, base, creds.Token, repo)
		if err != nil {
			return nil, fmt.Errorf("list pull requests of %s: %w", repo, err)
		}
		for _, p := range pulls {
			if p.Draft && !hints.IncludeDrafts {
				continue
			}
			pr := p.toPullRequest(repo)
			if err := c.applyReviews(ctx, base, creds.Token, repo, &pr); err != nil {
				return nil, fmt.Errorf("reviews of %s#%d: %w", repo, p.Number, err)
			}
			result = append(result, pr)
		}
	}
	return result, nil
}

func (c *GitHubClient) listPulls(ctx context.Context, base, token, repo string) ([]githubPull, error) {
	var all []githubPull
	for page := 1; page <= githubMaxPages; page++ {
		url := fmt.Sprintf("%s/repos/%s/pulls?state=open&per_page=%d&page=%d", base, repo, githubPerPage, page)
		var batch []githubPull
		if _, err := c.http.do(ctx, http.MethodGet, url, c.headers(token), nil, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < githubPerPage {
			break
		}
	}
	return all, nil
}

// listReviews returns the reviews of a pull request oldest first, across pages.
func (c *GitHubClient) listReviews(ctx context.Context, base, token, repo string, number int) ([]githubReview, error) {
	var all []githubReview
	for page := 1; page <= githubMaxPages; page++ {
		url := fmt.Sprintf("%s/repos/%s/pulls/%d/reviews?per_page=%d&page=%d", base, repo, number, githubPerPage, page)
		var batch []githubReview
		if _, err := c.http.do(ctx, http.MethodGet, url, c.headers(token), nil, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < githubPerPage {
			break
		}
	}
	return all, nil
}

// applyReviews sets the approval flags from the latest review of every reviewer.
func (c *GitHubClient) applyReviews(ctx context.Context, base, token, repo string, pr *types.PullRequest) error {
	reviews, err := c.listReviews(ctx, base, token, repo, pr.Number)
	if err != nil {
		return err
	}

	latest := make(map[string]string, len(reviews))
	var order []string
	for _, r := range reviews {
		switch r.State {
		case "APPROVED", "CHANGES_REQUESTED", "DISMISSED":
		default:
			continue
		}
		if _, ok := latest[r.User.Login]; !ok {
			order = append(order, r.User.Login)
		}
		latest[r.User.Login] = r.State
	}

	for _, login := range order {
		switch latest[login] {
		case "APPROVED":
			pr.Approved = true
		case "CHANGES_REQUESTED":
			pr.ChangesRequested = true
		}
		if !contains(pr.Reviewers, login) {
			pr.Reviewers = append(pr.Reviewers, login)
		}
	}
	return nil
}

func (p githubPull) toPullRequest(repo string) types.PullRequest {
	pr := types.PullRequest{
		ID:         strconv.FormatInt(p.ID, 10),
		Number:     p.Number,
		Title:      p.Title,
		Author:     p.User.Login,
		URL:        p.HTMLURL,
		CreatedAt:  p.CreatedAt.UTC(),
		Repository: repo,
		Draft:      p.Draft,
	}
	for _, l := range p.Labels {
		pr.Labels = append(pr.Labels, l.Name)
	}
	for _, r := range p.RequestedReviewers {
		pr.Reviewers = append(pr.Reviewers, r.Login)
	}
	return pr
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
