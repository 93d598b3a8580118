// Package tokenrefresh renews provider tokens that are about to expire.
package tokenrefresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/constants"
	"github.com/RezaEskandarii/prnotifier/internal/lock"
	"github.com/RezaEskandarii/prnotifier/internal/metrics"
	"github.com/RezaEskandarii/prnotifier/internal/provider"
	"github.com/RezaEskandarii/prnotifier/internal/store"
	"github.com/RezaEskandarii/prnotifier/types"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// Result is the outcome of one sweep.
type Result struct {
	GitProvidersRefreshed       int      `json:"gitProvidersRefreshed"`
	MessagingProvidersRefreshed int      `json:"messagingProvidersRefreshed"`
	Errors                      []string `json:"errors"`
}

type Sweeper struct {
	providers    store.ProviderStore
	registry     *provider.Registry
	lock         lock.DistributedLockManager
	lookahead    time.Duration
	storeTimeout time.Duration
	concurrency  int
	logger       *slog.Logger
	now          func() time.Time
}

type Option func(*Sweeper)

// WithLock serializes sweeps across instances under the token refresh advisory lock.
func WithLock(l lock.DistributedLockManager) Option {
	return func(s *Sweeper) { s.lock = l }
}

func WithLookahead(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.lookahead = d
		}
	}
}

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewSweeper(providers store.ProviderStore, registry *provider.Registry, opts ...Option) *Sweeper {
	s := &Sweeper{
		providers:    providers,
		registry:     registry,
		lookahead:    constants.DefaultTokenLookahead,
		storeTimeout: 5 * time.Second,
		concurrency:  defaultConcurrency,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// category binds a provider table to its store calls.
type category struct {
	name   types.ProviderCategory
	list   func(ctx context.Context, before time.Time) ([]types.ProviderConnection, error)
	update func(ctx context.Context, id string, tokens types.Tokens) error
}

// Run refreshes every git and messaging connection whose token expires within the
// lookahead window. A failing record is reported in Errors and never stops the others.
func (s *Sweeper) Run(ctx context.Context) Result {
	result := Result{Errors: []string{}}

	if s.lock != nil {
		if err := s.lock.Acquire(ctx, constants.TokenRefreshLock); err != nil {
			result.Errors = append(result.Errors, err.Error())
			return result
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), constants.TokenRefreshLock); err != nil {
				s.logger.Warn("failed to release token refresh lock", "err", err)
			}
		}()
	}

	before := s.now().UTC().Add(s.lookahead)
	categories := []category{
		{types.CategoryGit, s.providers.ListExpiringGitProviders, s.providers.UpdateGitProviderTokens},
		{types.CategoryMessaging, s.providers.ListExpiringMessagingProviders, s.providers.UpdateMessagingProviderTokens},
	}

	for _, c := range categories {
		refreshed, errs := s.sweep(ctx, c, before)
		switch c.name {
		case types.CategoryGit:
			result.GitProvidersRefreshed = refreshed
		case types.CategoryMessaging:
			result.MessagingProvidersRefreshed = refreshed
		}
		result.Errors = append(result.Errors, errs...)
	}

	s.logger.Info("token refresh sweep finished",
		"git_refreshed", result.GitProvidersRefreshed,
		"messaging_refreshed", result.MessagingProvidersRefreshed,
		"errors", len(result.Errors),
	)
	return result
}

func (s *Sweeper) sweep(ctx context.Context, c category, before time.Time) (int, []string) {
	listCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	conns, err := c.list(listCtx, before)
	cancel()
	if err != nil {
		return 0, []string{fmt.Sprintf("list expiring %s providers: %v", c.name, err)}
	}

	var (
		mu        sync.Mutex
		refreshed int
		errs      []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, conn := range conns {
		g.Go(func() error {
			ok, err := s.refresh(gctx, c, conn)
			result := metrics.ResultSuccess
			switch {
			case err != nil:
				result = metrics.ResultFailure
			case !ok:
				result = metrics.ResultNoop
			}
			metrics.TokenRefresh.WithLabelValues(string(c.name), result).Inc()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("token refresh failed", "category", c.name, "provider_id", conn.ID, "kind", conn.Kind, "err", err)
				errs = append(errs, fmt.Sprintf("%s provider %s: %v", c.name, conn.ID, err))
			} else if ok {
				refreshed++
			}
			// Per record errors are collected, never returned, so one record cannot cancel the rest.
			return nil
		})
	}
	_ = g.Wait()

	return refreshed, errs
}

// refresh reports whether new tokens were stored for conn.
func (s *Sweeper) refresh(ctx context.Context, c category, conn types.ProviderConnection) (bool, error) {
	refresher, err := s.registry.Refresher(conn.Kind)
	if err != nil {
		return false, err
	}

	tokens, err := refresher.Refresh(ctx, conn)
	if err != nil {
		return false, err
	}
	if tokens == nil {
		return false, nil
	}

	updateCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	if err := c.update(updateCtx, conn.ID, *tokens); err != nil {
		return false, fmt.Errorf("store refreshed tokens: %w", err)
	}
	return true, nil
}
