package provider

import (
	"fmt"
	"time"

	"github.com/RezaEskandarii/prnotifier/custom_errors"
	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/RezaEskandarii/prnotifier/types/config"
)

// Registry resolves the implementation of a persisted provider kind.
type Registry struct {
	git        map[types.ProviderKind]GitClient
	chat       map[types.ProviderKind]ChatClient
	refreshers map[types.ProviderKind]TokenRefresher
}

func NewRegistry() *Registry {
	return &Registry{
		git:        make(map[types.ProviderKind]GitClient),
		chat:       make(map[types.ProviderKind]ChatClient),
		refreshers: make(map[types.ProviderKind]TokenRefresher),
	}
}

// NewDefaultRegistry wires the built-in providers. Discord tokens cannot be refreshed yet,
// so no refresher is registered for it.
func NewDefaultRegistry(cfg config.ProvidersConfig, timeout time.Duration, rateLimit float64) *Registry {
	r := NewRegistry()

	r.RegisterGit(types.ProviderGitHub, NewGitHubClient(cfg.GitHubAPIURL, timeout, rateLimit))
	r.RegisterGit(types.ProviderGitLab, NewGitLabClient(cfg.GitLabURL, timeout, rateLimit))

	r.RegisterChat(types.ProviderSlack, NewSlackClient(cfg.SlackAPIURL, timeout, rateLimit))
	r.RegisterChat(types.ProviderDiscord, NewDiscordClient(timeout, rateLimit))

	r.RegisterRefresher(types.ProviderGitHub, NoopRefresher{})
	r.RegisterRefresher(types.ProviderSlack, NoopRefresher{})
	r.RegisterRefresher(types.ProviderGitLab, NewGitLabRefresher(cfg.GitLabURL, cfg.GitLabClientID, cfg.GitLabClientSecret, timeout))

	return r
}

func (r *Registry) RegisterGit(kind types.ProviderKind, c GitClient) {
	r.git[kind] = c
}

func (r *Registry) RegisterChat(kind types.ProviderKind, c ChatClient) {
	r.chat[kind] = c
}

func (r *Registry) RegisterRefresher(kind types.ProviderKind, t TokenRefresher) {
	r.refreshers[kind] = t
}

func (r *Registry) Git(kind types.ProviderKind) (GitClient, error) {
	if c, ok := r.git[kind]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: git provider %q", custom_errors.ErrUnsupportedProvider, kind)
}

func (r *Registry) Chat(kind types.ProviderKind) (ChatClient, error) {
	if c, ok := r.chat[kind]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: messaging provider %q", custom_errors.ErrUnsupportedProvider, kind)
}

func (r *Registry) Refresher(kind types.ProviderKind) (TokenRefresher, error) {
	if t, ok := r.refreshers[kind]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: token refresh for %q", custom_errors.ErrUnsupportedProvider, kind)
}
