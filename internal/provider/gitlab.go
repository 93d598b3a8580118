package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
)

const (
	DefaultGitLabURL = "https://gitlab.com"
	gitlabPerPage    = 100
	gitlabMaxPages   = 10
)

type GitLabClient struct {
	baseURL string
	http    *httpDoer
}

func NewGitLabClient(baseURL string, timeout time.Duration, rateLimit float64) *GitLabClient {
	if baseURL == "" {
		baseURL = DefaultGitLabURL
	}
	return &GitLabClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPDoer("gitlab", timeout, rateLimit),
	}
}

type gitlabUser struct {
	Username string `json:"username"`
}

type gitlabMergeRequest struct {
	ID                  int64        `json:"id"`
	IID                 int          `json:"iid"`
	Title               string       `json:"title"`
	WebURL              string       `json:"web_url"`
	CreatedAt           time.Time    `json:"created_at"`
	Draft               bool         `json:"draft"`
	Author              gitlabUser   `json:"author"`
	Reviewers           []gitlabUser `json:"reviewers"`
	Labels              []string     `json:"labels"`
	DetailedMergeStatus string       `json:"detailed_merge_status"`
}

type gitlabApprovals struct {
	Approved   bool `json:"approved"`
	ApprovedBy []struct {
		User gitlabUser `json:"user"`
	} `json:"approved_by"`
}

func (c *GitLabClient) base(creds Credentials) string {
	if creds.BaseURL != "" {
		return strings.TrimRight(creds.BaseURL, "/")
	}
	return c.baseURL
}

// FetchPullRequests lists the opened merge requests of every project path in repos.
func (c *GitLabClient) FetchPullRequests(ctx context.Context, creds Credentials, repos []string, hints FilterHints) ([]types.PullRequest, error) {
	base := c.base(creds)
	headers := map[string]string{"Authorization": "Bearer " + creds.Token}

	var result []types.PullRequest
	for _, repo := range repos {
		project := url.PathEscape(repo)
		mrs, err := c.listMergeRequests(ctx, base, project, headers)
		if err != nil {
			return nil, fmt.Errorf("list merge requests of %s: %w", repo, err)
		}
		for _, mr := range mrs {
			if mr.Draft && !hints.IncludeDrafts {
				continue
			}
			pr := mr.toPullRequest(repo)

			var approvals gitlabApprovals
			approvalsURL := fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d/approvals", base, project, mr.IID)
			if _, err := c.http.do(ctx, http.MethodGet, approvalsURL, headers, nil, &approvals); err != nil {
				return nil, fmt.Errorf("approvals of %s!%d: %w", repo, mr.IID, err)
			}
			pr.Approved = approvals.Approved || len(approvals.ApprovedBy) > 0
			for _, a := range approvals.ApprovedBy {
				if !contains(pr.Reviewers, a.User.Username) {
					pr.Reviewers = append(pr.Reviewers, a.User.Username)
				}
			}
			result = append(result, pr)
		}
	}
	return result, nil
}

func (c *GitLabClient) listMergeRequests(ctx context.Context, base, project string, headers map[string]string) ([]gitlabMergeRequest, error) {
	var all []gitlabMergeRequest
	for page := 1; page <= gitlabMaxPages; page++ {
		u := fmt.Sprintf("%s/api/v4/projects/%s/merge_requests?state=opened&per_page=%d&page=%d", base, project, gitlabPerPage, page)
		var batch []gitlabMergeRequest
		header, err := c.http.do(ctx, http.MethodGet, u, headers, nil, &batch)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		// GitLab leaves X-Next-Page empty on the last page.
		if header.Get("X-Next-Page") == "" {
			break
		}
	}
	return all, nil
}

func (mr gitlabMergeRequest) toPullRequest(repo string) types.PullRequest {
	pr := types.PullRequest{
		ID:               strconv.FormatInt(mr.ID, 10),
		Number:           mr.IID,
		Title:            mr.Title,
		Author:           mr.Author.Username,
		URL:              mr.WebURL,
		CreatedAt:        mr.CreatedAt.UTC(),
		Repository:       repo,
		Labels:           mr.Labels,
		Draft:            mr.Draft,
		ChangesRequested: mr.DetailedMergeStatus == "requested_changes",
	}
	for _, r := range mr.Reviewers {
		pr.Reviewers = append(pr.Reviewers, r.Username)
	}
	return pr
}

// GitLabRefresher exchanges a refresh token at the instance's OAuth endpoint.
type GitLabRefresher struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *httpDoer
	now          func() time.Time
}

func NewGitLabRefresher(baseURL, clientID, clientSecret string, timeout time.Duration) *GitLabRefresher {
	if baseURL == "" {
		baseURL = DefaultGitLabURL
	}
	return &GitLabRefresher{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         newHTTPDoer("gitlab", timeout, DefaultRateLimit),
		now:          time.Now,
	}
}

type gitlabTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (r *GitLabRefresher) Refresh(ctx context.Context, conn types.ProviderConnection) (*types.Tokens, error) {
	if conn.RefreshToken == nil || *conn.RefreshToken == "" {
		return nil, fmt.Errorf("gitlab connection %s has no refresh token", conn.ID)
	}
	if r.clientID == "" {
		return nil, fmt.Errorf("gitlab oauth client is not configured")
	}

	base := r.baseURL
	if conn.BaseURL != nil && *conn.BaseURL != "" {
		base = strings.TrimRight(*conn.BaseURL, "/")
	}
	body := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": *conn.RefreshToken,
		"client_id":     r.clientID,
		"client_secret": r.clientSecret,
	}

	var resp gitlabTokenResponse
	if _, err := r.http.do(ctx, http.MethodPost, base+"/oauth/token", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("refresh gitlab token: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("refresh gitlab token: empty access token")
	}

	tokens := &types.Tokens{AccessToken: resp.AccessToken}
	if resp.RefreshToken != "" {
		tokens.RefreshToken = &resp.RefreshToken
	}
	if resp.ExpiresIn > 0 {
		expires := r.now().UTC().Add(time.Duration(resp.ExpiresIn) * time.Second)
		tokens.ExpiresAt = &expires
	}
	return tokens, nil
}
