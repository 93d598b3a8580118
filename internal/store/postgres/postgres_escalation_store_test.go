package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresEscalationStore_GetTracking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresEscalationStore(db)
	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM prnotifier_schema.escalation_tracking").
		WithArgs("s1", "pr-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"schedule_id", "pull_request_id", "first_escalated_at", "last_escalated_at", "escalation_count",
		}).AddRow("s1", "pr-1", first, last, 2))

	tracking, err := store.GetTracking(context.Background(), "s1", "pr-1")
	require.NoError(t, err)
	require.NotNil(t, tracking)
	assert.Equal(t, 2, tracking.EscalationCount)
	assert.True(t, last.Equal(tracking.LastEscalatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEscalationStore_GetTracking_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresEscalationStore(db)
	mock.ExpectQuery("SELECT (.+) FROM prnotifier_schema.escalation_tracking").
		WithArgs("s1", "pr-404").
		WillReturnError(sql.ErrNoRows)

	tracking, err := store.GetTracking(context.Background(), "s1", "pr-404")
	require.NoError(t, err)
	assert.Nil(t, tracking)
}

func TestPostgresEscalationStore_UpsertTracking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresEscalationStore(db)
	now := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	entry := types.EscalationTracking{
		ScheduleID:       "s1",
		PullRequestID:    "pr-1",
		FirstEscalatedAt: now,
		LastEscalatedAt:  now,
		EscalationCount:  1,
	}

	mock.ExpectExec("INSERT INTO prnotifier_schema.escalation_tracking").
		WithArgs("s1", "pr-1", now, now, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.UpsertTracking(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEscalationStore_DeleteStaleTracking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresEscalationStore(db)
	mock.ExpectExec("DELETE FROM prnotifier_schema.escalation_tracking").
		WithArgs("s1", pq.Array([]string{"pr-1", "pr-2"})).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := store.DeleteStaleTracking(context.Background(), "s1", []string{"pr-1", "pr-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEscalationStore_DeleteStaleTracking_NilListBindsEmptyArray(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresEscalationStore(db)
	mock.ExpectExec("DELETE FROM prnotifier_schema.escalation_tracking").
		WithArgs("s1", "{}").
		WillReturnResult(sqlmock.NewResult(0, 5))

	removed, err := store.DeleteStaleTracking(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
