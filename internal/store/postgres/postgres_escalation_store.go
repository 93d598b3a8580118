package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/lib/pq"
)

type PostgresEscalationStore struct {
	db *sql.DB
}

func NewPostgresEscalationStore(db *sql.DB) *PostgresEscalationStore {
	return &PostgresEscalationStore{db: db}
}

func (r *PostgresEscalationStore) GetTracking(ctx context.Context, scheduleID, pullRequestID string) (*types.EscalationTracking, error) {
	var t types.EscalationTracking
	err := r.db.QueryRowContext(ctx, `
		SELECT schedule_id, pull_request_id, first_escalated_at, last_escalated_at, escalation_count
		FROM prnotifier_schema.escalation_tracking
		WHERE schedule_id = $1 AND pull_request_id = $2
	`, scheduleID, pullRequestID).Scan(
		&t.ScheduleID, &t.PullRequestID, &t.FirstEscalatedAt, &t.LastEscalatedAt, &t.EscalationCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tracking %s/%s: %w", scheduleID, pullRequestID, err)
	}
	return &t, nil
}

func (r *PostgresEscalationStore) UpsertTracking(ctx context.Context, entry types.EscalationTracking) error {
	query := `
		INSERT INTO prnotifier_schema.escalation_tracking (
			schedule_id, pull_request_id, first_escalated_at, last_escalated_at, escalation_count
		)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (schedule_id, pull_request_id) DO UPDATE SET
			last_escalated_at = EXCLUDED.last_escalated_at,
			escalation_count = EXCLUDED.escalation_count
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ScheduleID,
		entry.PullRequestID,
		entry.FirstEscalatedAt,
		entry.LastEscalatedAt,
		entry.EscalationCount,
	)
	if err != nil {
		return fmt.Errorf("upsert tracking %s/%s: %w", entry.ScheduleID, entry.PullRequestID, err)
	}
	return nil
}

func (r *PostgresEscalationStore) DeleteStaleTracking(ctx context.Context, scheduleID string, activePullRequestIDs []string) (int64, error) {
	// A nil array binds as NULL and NOT (x = ANY(NULL)) never matches.
	if activePullRequestIDs == nil {
		activePullRequestIDs = []string{}
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM prnotifier_schema.escalation_tracking
		WHERE schedule_id = $1 AND NOT (pull_request_id = ANY($2))
	`, scheduleID, pq.Array(activePullRequestIDs))
	if err != nil {
		return 0, fmt.Errorf("delete stale tracking for %s: %w", scheduleID, err)
	}
	return res.RowsAffected()
}
