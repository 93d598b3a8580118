// Package escalation decides which overdue pull requests need an escalation notice and
// keeps the per (schedule, pull request) tracking rows in step with the provider.
package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/constants"
	"github.com/RezaEskandarii/prnotifier/internal/store"
	"github.com/RezaEskandarii/prnotifier/types"
)

type Tracker struct {
	store  store.EscalationStore
	logger *slog.Logger
}

func NewTracker(escalationStore store.EscalationStore, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{store: escalationStore, logger: logger}
}

// Plan is the outcome of one tracker pass. Nothing is written until Commit or Cleanup.
type Plan struct {
	ScheduleID string

	// Escalated lists the pull requests that escalate this run, in input order.
	Escalated []types.PullRequest

	updates   []types.EscalationTracking
	activeIDs []string
	store     store.EscalationStore
	logger    *slog.Logger
}

// Plan evaluates filtered against the escalation threshold of escalationDays.
// active is the full list the provider returned for this run; tracking rows for pull
// requests missing from it are garbage collected on Commit or Cleanup.
func (t *Tracker) Plan(ctx context.Context, scheduleID string, escalationDays int, filtered, active []types.PullRequest, now time.Time) (*Plan, error) {
	if escalationDays <= 0 {
		return nil, fmt.Errorf("escalation days must be positive, got %d", escalationDays)
	}
	threshold := time.Duration(escalationDays) * 24 * time.Hour

	plan := &Plan{
		ScheduleID: scheduleID,
		activeIDs:  types.PullRequestIDs(active),
		store:      t.store,
		logger:     t.logger,
	}

	seen := make(map[string]struct{}, len(filtered))
	for _, pr := range filtered {
		if _, dup := seen[pr.ID]; dup {
			continue
		}
		seen[pr.ID] = struct{}{}

		if pr.Age(now) < threshold {
			continue
		}

		tracking, err := t.store.GetTracking(ctx, scheduleID, pr.ID)
		if err != nil {
			return nil, fmt.Errorf("load tracking for %s: %w", pr.ID, err)
		}

		next, escalate := nextTracking(tracking, scheduleID, pr.ID, now)
		if !escalate {
			t.logger.Debug("escalation in cooldown",
				"schedule_id", scheduleID,
				"pull_request_id", pr.ID,
				"last_escalated_at", tracking.LastEscalatedAt,
			)
			continue
		}
		plan.Escalated = append(plan.Escalated, pr)
		plan.updates = append(plan.updates, next)
	}

	return plan, nil
}

// nextTracking returns the row to persist when the pull request escalates at now.
func nextTracking(current *types.EscalationTracking, scheduleID, pullRequestID string, now time.Time) (types.EscalationTracking, bool) {
	if current == nil {
		return types.EscalationTracking{
			ScheduleID:       scheduleID,
			PullRequestID:    pullRequestID,
			FirstEscalatedAt: now,
			LastEscalatedAt:  now,
			EscalationCount:  1,
		}, true
	}
	if now.Sub(current.LastEscalatedAt) < constants.ReEscalationCooldown {
		return types.EscalationTracking{}, false
	}
	next := *current
	next.LastEscalatedAt = now
	next.EscalationCount++
	return next, true
}

// Updates returns the tracking rows Commit will write.
func (p *Plan) Updates() []types.EscalationTracking {
	return p.updates
}

// Commit persists the tracking rows of the escalated pull requests and then removes
// stale rows. Call it only once the escalation message was delivered.
func (p *Plan) Commit(ctx context.Context) (int64, error) {
	for _, u := range p.updates {
		if err := p.store.UpsertTracking(ctx, u); err != nil {
			return 0, fmt.Errorf("upsert tracking for %s: %w", u.PullRequestID, err)
		}
	}
	return p.Cleanup(ctx)
}

// Cleanup removes tracking rows whose pull request is no longer active.
func (p *Plan) Cleanup(ctx context.Context) (int64, error) {
	removed, err := p.store.DeleteStaleTracking(ctx, p.ScheduleID, p.activeIDs)
	if err != nil {
		return 0, fmt.Errorf("delete stale tracking: %w", err)
	}
	if removed > 0 {
		p.logger.Info("removed stale escalation tracking", "schedule_id", p.ScheduleID, "removed", removed)
	}
	return removed, nil
}
