// Package executor runs one due schedule end to end and records the outcome.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/RezaEskandarii/prnotifier/custom_errors"
	"github.com/RezaEskandarii/prnotifier/internal/escalation"
	"github.com/RezaEskandarii/prnotifier/internal/filter"
	"github.com/RezaEskandarii/prnotifier/internal/format"
	"github.com/RezaEskandarii/prnotifier/internal/message_broker"
	"github.com/RezaEskandarii/prnotifier/internal/metrics"
	"github.com/RezaEskandarii/prnotifier/internal/provider"
	"github.com/RezaEskandarii/prnotifier/internal/state"
	"github.com/RezaEskandarii/prnotifier/internal/store"
	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("prnotifier.executor")

const (
	DefaultProviderTimeout  = 15 * time.Second
	DefaultStoreTimeout     = 5 * time.Second
	DefaultExecutionTimeout = 2 * time.Minute
)

type Executor struct {
	schedules store.ScheduleStore
	providers store.ProviderStore
	tracker   *escalation.Tracker
	registry  *provider.Registry
	broker    message_broker.MessageBroker

	instance         string
	providerTimeout  time.Duration
	storeTimeout     time.Duration
	executionTimeout time.Duration

	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Executor)

func WithBroker(b message_broker.MessageBroker) Option {
	return func(e *Executor) { e.broker = b }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithInstance(instance string) Option {
	return func(e *Executor) { e.instance = instance }
}

func WithTimeouts(providerTimeout, storeTimeout, executionTimeout time.Duration) Option {
	return func(e *Executor) {
		if providerTimeout > 0 {
			e.providerTimeout = providerTimeout
		}
		if storeTimeout > 0 {
			e.storeTimeout = storeTimeout
		}
		if executionTimeout > 0 {
			e.executionTimeout = executionTimeout
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

func New(
	schedules store.ScheduleStore,
	escalations store.EscalationStore,
	providers store.ProviderStore,
	registry *provider.Registry,
	opts ...Option,
) *Executor {
	e := &Executor{
		schedules:        schedules,
		providers:        providers,
		registry:         registry,
		providerTimeout:  DefaultProviderTimeout,
		storeTimeout:     DefaultStoreTimeout,
		executionTimeout: DefaultExecutionTimeout,
		logger:           slog.Default(),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.tracker = escalation.NewTracker(escalations, e.logger)
	return e
}

// outcome accumulates the result of the delivery steps of one run.
type outcome struct {
	succeeded int
	failures  []string
}

func (o *outcome) fail(step string, err error) {
	o.failures = append(o.failures, fmt.Sprintf("%s: %v", step, err))
}

func (o *outcome) status() state.ExecutionStatus {
	return state.FromOutcome(o.succeeded, len(o.failures))
}

func (o *outcome) errorMessage() *string {
	if len(o.failures) == 0 {
		return nil
	}
	msg := strings.Join(o.failures, "; ")
	return &msg
}

// Run executes schedule once. It always returns the execution log it wrote, whatever
// happened during the run, and never panics.
func (e *Executor) Run(ctx context.Context, schedule types.Schedule) (entry types.ExecutionLog) {
	started := e.now().UTC()
	entry = types.ExecutionLog{
		ID:         uuid.NewString(),
		ScheduleID: schedule.ID,
		ExecutedAt: started,
	}

	ctx, span := tracer.Start(ctx, "executor.Run",
		trace.WithAttributes(
			attribute.String("schedule.id", schedule.ID),
			attribute.String("schedule.name", schedule.Name),
			attribute.Int("schedule.repositories", len(schedule.Repositories)),
		),
	)
	runCtx, cancel := context.WithTimeout(ctx, e.executionTimeout)

	var out outcome
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("schedule run panicked",
				"schedule_id", schedule.ID,
				"panic", p,
				"stack", string(debug.Stack()),
			)
			out.fail("panic", fmt.Errorf("%v", p))
		}
		cancel()

		e.finish(ctx, schedule, &entry, &out, started)

		span.SetAttributes(
			attribute.String("execution.status", entry.Status.String()),
			attribute.Int("execution.pull_requests", entry.PullRequestsFound),
			attribute.Int("execution.messages_sent", entry.MessagesSent),
		)
		if entry.Status == state.StatusSuccess {
			span.SetStatus(codes.Ok, "")
		} else {
			span.SetStatus(codes.Error, *entry.ErrorMessage)
		}
		span.End()
	}()

	e.execute(runCtx, schedule, &entry, &out, started)
	return entry
}

// execute performs the fetch, filter, notify and escalate steps.
func (e *Executor) execute(ctx context.Context, schedule types.Schedule, entry *types.ExecutionLog, out *outcome, now time.Time) {
	gitClient, chatClient, gitConn, chatConn, err := e.resolveClients(ctx, schedule)
	if err != nil {
		if custom_errors.IsConfigurationError(err) {
			e.logger.Error("schedule is misconfigured", "schedule_id", schedule.ID, "err", err)
		}
		out.fail("resolve providers", err)
		return
	}

	// A fetch is one request per page plus one per pull request, all waiting on the
	// provider's rate limiter, so it is bounded by the run deadline. Each request is
	// still bounded by the client timeout.
	raw, err := gitClient.FetchPullRequests(ctx, provider.CredentialsFor(*gitConn), schedule.Repositories, provider.FilterHints{IncludeDrafts: true})
	if err != nil {
		out.fail("fetch pull requests", err)
		return
	}

	filtered := filter.Apply(filter.WithoutDrafts(raw), schedule.Filters, now)
	entry.PullRequestsFound = len(filtered)

	if len(filtered) > 0 || schedule.SendWhenEmpty {
		msg := format.Render(chatConn.Kind, schedule.Name, filtered, now)
		if err := e.send(ctx, chatClient, provider.TargetFor(*chatConn, schedule.ChannelID), msg); err != nil {
			out.fail("send notification", err)
		} else {
			out.succeeded++
			entry.MessagesSent++
			metrics.MessagesSent.WithLabelValues(metrics.KindRegular).Inc()
			if msg.Truncated {
				e.logger.Info("notification truncated", "schedule_id", schedule.ID, "pull_requests", len(filtered))
			}
		}
	}

	if schedule.EscalationEnabled() {
		e.escalate(ctx, schedule, entry, out, filtered, raw, now)
	}
}

func (e *Executor) escalate(ctx context.Context, schedule types.Schedule, entry *types.ExecutionLog, out *outcome, filtered, raw []types.PullRequest, now time.Time) {
	days := *schedule.EscalationDays

	planCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	plan, err := e.tracker.Plan(planCtx, schedule.ID, days, filtered, raw, now)
	cancel()
	if err != nil {
		out.fail("plan escalation", err)
		return
	}

	if len(plan.Escalated) > 0 {
		if err := e.sendEscalation(ctx, schedule, plan, days, now); err != nil {
			// Tracking stays untouched so the escalation is attempted again.
			out.fail("send escalation", err)
		} else {
			out.succeeded++
			entry.MessagesSent++
			entry.EscalationsTriggered += len(plan.Escalated)
			metrics.MessagesSent.WithLabelValues(metrics.KindEscalation).Inc()
			metrics.Escalations.Add(float64(len(plan.Escalated)))

			commitCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
			defer cancel()
			if _, err := plan.Commit(commitCtx); err != nil {
				out.fail("commit escalation tracking", err)
			}
			return
		}
	}

	cleanupCtx, cleanupCancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cleanupCancel()
	if _, err := plan.Cleanup(cleanupCtx); err != nil {
		out.fail("clean escalation tracking", err)
	}
}

func (e *Executor) sendEscalation(ctx context.Context, schedule types.Schedule, plan *escalation.Plan, days int, now time.Time) error {
	conn, err := e.messagingConnection(ctx, *schedule.EscalationProviderID)
	if err != nil {
		return err
	}
	client, err := e.registry.Chat(conn.Kind)
	if err != nil {
		return err
	}
	msg := format.RenderEscalation(conn.Kind, schedule.Name, days, plan.Escalated, now)
	return e.send(ctx, client, provider.TargetFor(*conn, *schedule.EscalationChannelID), msg)
}

func (e *Executor) send(ctx context.Context, client provider.ChatClient, target provider.Target, msg format.Message) error {
	sendCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
	defer cancel()
	return client.SendMessage(sendCtx, target, msg)
}

// resolveClients loads the schedule's connections and picks their implementations.
func (e *Executor) resolveClients(ctx context.Context, schedule types.Schedule) (provider.GitClient, provider.ChatClient, *types.ProviderConnection, *types.ProviderConnection, error) {
	gitConn, chatConn, err := e.resolveConnections(ctx, schedule)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	gitClient, err := e.registry.Git(gitConn.Kind)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	chatClient, err := e.registry.Chat(chatConn.Kind)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return gitClient, chatClient, gitConn, chatConn, nil
}

func (e *Executor) resolveConnections(ctx context.Context, schedule types.Schedule) (*types.ProviderConnection, *types.ProviderConnection, error) {
	storeCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	gitConn, err := e.providers.GetGitProvider(storeCtx, schedule.GitProviderID)
	if err != nil {
		return nil, nil, fmt.Errorf("load git provider %s: %w", schedule.GitProviderID, err)
	}
	if gitConn == nil {
		return nil, nil, fmt.Errorf("%w: git provider %s", custom_errors.ErrProviderNotFound, schedule.GitProviderID)
	}

	chatConn, err := e.providers.GetMessagingProvider(storeCtx, schedule.MessagingProviderID)
	if err != nil {
		return nil, nil, fmt.Errorf("load messaging provider %s: %w", schedule.MessagingProviderID, err)
	}
	if chatConn == nil {
		return nil, nil, fmt.Errorf("%w: messaging provider %s", custom_errors.ErrProviderNotFound, schedule.MessagingProviderID)
	}
	return gitConn, chatConn, nil
}

func (e *Executor) messagingConnection(ctx context.Context, id string) (*types.ProviderConnection, error) {
	storeCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	conn, err := e.providers.GetMessagingProvider(storeCtx, id)
	if err != nil {
		return nil, fmt.Errorf("load messaging provider %s: %w", id, err)
	}
	if conn == nil {
		return nil, fmt.Errorf("%w: messaging provider %s", custom_errors.ErrProviderNotFound, id)
	}
	return conn, nil
}

// finish advances the schedule, writes the execution log and publishes the event. It runs
// on a context detached from the run's cancellation so the log survives a timed out run.
func (e *Executor) finish(ctx context.Context, schedule types.Schedule, entry *types.ExecutionLog, out *outcome, started time.Time) {
	ctx = context.WithoutCancel(ctx)

	if out.status().Advances() {
		markCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
		if err := e.schedules.MarkExecuted(markCtx, schedule.ID, started); err != nil {
			out.fail("mark executed", err)
		}
		cancel()
	}

	entry.Status = out.status()
	entry.ErrorMessage = out.errorMessage()
	entry.Duration = e.now().Sub(started)

	logCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	if err := e.schedules.CreateExecutionLog(logCtx, *entry); err != nil {
		e.logger.Error("failed to write execution log", "schedule_id", schedule.ID, "err", err)
	}

	metrics.ScheduleRuns.WithLabelValues(entry.Status.String()).Inc()
	metrics.ExecutionDuration.Observe(entry.Duration.Seconds())

	attrs := []any{
		"schedule_id", schedule.ID,
		"status", entry.Status,
		"pull_requests", entry.PullRequestsFound,
		"messages_sent", entry.MessagesSent,
		"escalations", entry.EscalationsTriggered,
		"duration_ms", entry.ExecutionTimeMs(),
	}
	if entry.ErrorMessage != nil {
		e.logger.Warn("schedule run finished with errors", append(attrs, "err", *entry.ErrorMessage)...)
	} else {
		e.logger.Info("schedule run finished", attrs...)
	}

	if e.broker != nil {
		if err := message_broker.PublishEvent(logCtx, e.broker, message_broker.NewExecutionEvent(e.instance, schedule.Name, *entry)); err != nil {
			e.logger.Warn("failed to publish execution event", "schedule_id", schedule.ID, "err", err)
		}
	}
}
