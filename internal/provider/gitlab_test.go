package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitLabClient_FetchPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gl-token", r.Header.Get("Authorization"))
		switch r.URL.EscapedPath() {
		case "/api/v4/projects/group%2Fsvc/merge_requests":
			assert.Equal(t, "opened", r.URL.Query().Get("state"))
			fmt.Fprint(w, `[
				{"id": 9001, "iid": 12, "title": "Tune pool", "web_url": "https://gitlab.example.com/group/svc/-/merge_requests/12",
				 "created_at": "2024-03-05T08:00:00Z", "draft": false, "author": {"username": "frank"},
				 "reviewers": [{"username": "gina"}], "labels": ["perf"], "detailed_merge_status": "requested_changes"}
			]`)
		case "/api/v4/projects/group%2Fsvc/merge_requests/12/approvals":
			fmt.Fprint(w, `{"approved": false, "approved_by": [{"user": {"username": "hank"}}]}`)
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewGitLabClient("https://unused.example.com", time.Second, 100)
	prs, err := client.FetchPullRequests(context.Background(),
		Credentials{Token: "gl-token", BaseURL: srv.URL}, []string{"group/svc"}, FilterHints{})
	require.NoError(t, err)
	require.Len(t, prs, 1)

	pr := prs[0]
	assert.Equal(t, "9001", pr.ID)
	assert.Equal(t, 12, pr.Number)
	assert.Equal(t, "frank", pr.Author)
	assert.Equal(t, []string{"perf"}, pr.Labels)
	assert.Equal(t, []string{"gina", "hank"}, pr.Reviewers)
	assert.True(t, pr.Approved)
	assert.True(t, pr.ChangesRequested)
}

func TestGitLabClient_FetchPullRequests_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewGitLabClient(srv.URL, time.Second, 100)
	_, err := client.FetchPullRequests(context.Background(), Credentials{Token: "expired"}, []string{"group/svc"}, FilterHints{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Unauthorized())
	assert.False(t, apiErr.Temporary())
}

func TestGitLabRefresher_Refresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/token", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh_token", body["grant_type"])
		assert.Equal(t, "old-refresh", body["refresh_token"])
		assert.Equal(t, "client", body["client_id"])
		fmt.Fprint(w, `{"access_token": "new-access", "refresh_token": "new-refresh", "expires_in": 7200}`)
	}))
	defer srv.Close()

	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	refresher := NewGitLabRefresher(srv.URL, "client", "secret", time.Second)
	refresher.now = func() time.Time { return fixed }

	refresh := "old-refresh"
	tokens, err := refresher.Refresh(context.Background(), types.ProviderConnection{ID: "g1", Kind: types.ProviderGitLab, RefreshToken: &refresh})
	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.Equal(t, "new-access", tokens.AccessToken)
	require.NotNil(t, tokens.RefreshToken)
	assert.Equal(t, "new-refresh", *tokens.RefreshToken)
	require.NotNil(t, tokens.ExpiresAt)
	assert.Equal(t, fixed.Add(2*time.Hour), *tokens.ExpiresAt)
}

func TestGitLabRefresher_RequiresRefreshToken(t *testing.T) {
	refresher := NewGitLabRefresher("", "client", "secret", time.Second)
	_, err := refresher.Refresh(context.Background(), types.ProviderConnection{ID: "g1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no refresh token")
}
