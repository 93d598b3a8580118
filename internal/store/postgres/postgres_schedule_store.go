package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/lib/pq"
)

type PostgresScheduleStore struct {
	db *sql.DB
}

func NewPostgresScheduleStore(db *sql.DB) *PostgresScheduleStore {
	return &PostgresScheduleStore{db: db}
}

func (r *PostgresScheduleStore) ListActiveSchedules(ctx context.Context) ([]types.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, cron_expression, git_provider_id, repositories,
		       messaging_provider_id, channel_id, escalation_provider_id,
		       escalation_channel_id, escalation_days, filters, send_when_empty,
		       is_active, last_executed_at
		FROM prnotifier_schema.schedules
		WHERE is_active = TRUE
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list active schedules: %w", err)
	}
	defer rows.Close()

	var schedules []types.Schedule
	for rows.Next() {
		var s types.Schedule
		var filters []byte
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Name, &s.CronExpression, &s.GitProviderID, pq.Array(&s.Repositories),
			&s.MessagingProviderID, &s.ChannelID, &s.EscalationProviderID,
			&s.EscalationChannelID, &s.EscalationDays, &filters, &s.SendWhenEmpty,
			&s.IsActive, &s.LastExecutedAt,
		); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		if len(filters) > 0 {
			if err := json.Unmarshal(filters, &s.Filters); err != nil {
				return nil, fmt.Errorf("schedule %s: decode filters: %w", s.ID, err)
			}
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *PostgresScheduleStore) MarkExecuted(ctx context.Context, scheduleID string, at time.Time) error {
	query := `
	UPDATE prnotifier_schema.schedules
	SET last_executed_at = $1, updated_at = now()
	WHERE id = $2 AND (last_executed_at IS NULL OR last_executed_at < $1);
	`
	if _, err := r.db.ExecContext(ctx, query, at, scheduleID); err != nil {
		return fmt.Errorf("mark schedule %s executed: %w", scheduleID, err)
	}
	return nil
}

func (r *PostgresScheduleStore) CreateExecutionLog(ctx context.Context, entry types.ExecutionLog) error {
	query := `
		INSERT INTO prnotifier_schema.execution_logs (
			id, schedule_id, executed_at, status, pull_requests_found,
			messages_sent, escalations_triggered, error_message, execution_time_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ScheduleID,
		entry.ExecutedAt,
		entry.Status,
		entry.PullRequestsFound,
		entry.MessagesSent,
		entry.EscalationsTriggered,
		entry.ErrorMessage,
		entry.ExecutionTimeMs(),
	)
	if err != nil {
		return fmt.Errorf("insert execution log: %w", err)
	}
	return nil
}

func (r *PostgresScheduleStore) ListExecutionLogs(ctx context.Context, scheduleID string, page, pageSize int) (*types.PaginationResult[types.ExecutionLog], error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	var totalItems int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM prnotifier_schema.execution_logs WHERE schedule_id = $1`,
		scheduleID,
	).Scan(&totalItems)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, schedule_id, executed_at, status, pull_requests_found,
		       messages_sent, escalations_triggered, error_message, execution_time_ms
		FROM prnotifier_schema.execution_logs
		WHERE schedule_id = $1
		ORDER BY executed_at DESC
		LIMIT $2 OFFSET $3`, scheduleID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []types.ExecutionLog
	for rows.Next() {
		var l types.ExecutionLog
		var durationMs int64
		if err := rows.Scan(
			&l.ID, &l.ScheduleID, &l.ExecutedAt, &l.Status, &l.PullRequestsFound,
			&l.MessagesSent, &l.EscalationsTriggered, &l.ErrorMessage, &durationMs,
		); err != nil {
			return nil, err
		}
		l.Duration = time.Duration(durationMs) * time.Millisecond
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return types.NewPaginationResult(logs, totalItems, page, pageSize), nil
}

func (r *PostgresScheduleStore) Close() error {
	return r.db.Close()
}
