package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/state"
	"github.com/RezaEskandarii/prnotifier/internal/tick"
	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"tick", "refresh-tokens", "serve", "migrate", "history", "events"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestHistoryCommand_RequiresScheduleID(t *testing.T) {
	assert.Error(t, historyCmd.Args(historyCmd, nil))
	assert.NoError(t, historyCmd.Args(historyCmd, []string{"sched-1"}))
}

func TestPrintJSON_TickSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, tick.Summary{Success: true, SchedulesProcessed: 3, SchedulesFailed: 1, ExecutionTimeMs: 120}))

	assert.JSONEq(t, `{"success":true,"schedulesProcessed":3,"schedulesFailed":1,"executionTimeMs":120}`, buf.String())
}

func TestWriteHistory(t *testing.T) {
	msg := "fetch pull requests: context deadline exceeded"
	logs := []types.ExecutionLog{
		{
			ExecutedAt:        time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC),
			Status:            state.StatusSuccess,
			PullRequestsFound: 3,
			MessagesSent:      1,
			Duration:          250 * time.Millisecond,
		},
		{
			ExecutedAt:   time.Date(2024, 3, 9, 16, 0, 0, 0, time.UTC),
			Status:       state.StatusError,
			ErrorMessage: &msg,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeHistory(&buf, types.NewPaginationResult(logs, 12, 1, 2)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "2024-03-10T16:00:00Z")
	assert.Contains(t, lines[1], "250ms")
	assert.Contains(t, lines[2], "error")
	assert.Contains(t, lines[2], msg)
	assert.Equal(t, "page 1 of 6 (12 executions)", lines[3])
}
