package tick

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/mocks"
	"github.com/RezaEskandarii/prnotifier/internal/state"
	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tickTime = time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC)

type runnerFunc func(ctx context.Context, s types.Schedule) types.ExecutionLog

func (f runnerFunc) Run(ctx context.Context, s types.Schedule) types.ExecutionLog {
	return f(ctx, s)
}

func schedule(id, expr string, last *time.Time) types.Schedule {
	return types.Schedule{ID: id, Name: id, CronExpression: expr, IsActive: true, LastExecutedAt: last}
}

func newOrchestrator(store *mocks.MockScheduleStore, runner Runner, workers int) *Orchestrator {
	o := NewOrchestrator(store, runner, workers, time.Second, nil)
	o.now = func() time.Time { return tickTime }
	return o
}

func TestRun_ExecutesOnlyDueSchedules(t *testing.T) {
	yesterday := tickTime.Add(-24 * time.Hour)
	thisMinute := tickTime
	store := &mocks.MockScheduleStore{
		ListActiveSchedulesFunc: func(ctx context.Context) ([]types.Schedule, error) {
			return []types.Schedule{
				schedule("daily", "0 16 * * *", nil),
				schedule("ran-yesterday", "0 16 * * *", &yesterday),
				schedule("already-ran", "0 16 * * *", &thisMinute),
				schedule("morning", "0 9 * * *", nil),
				schedule("broken", "not a cron", nil),
			}, nil
		},
	}

	var mu sync.Mutex
	var ran []string
	runner := runnerFunc(func(ctx context.Context, s types.Schedule) types.ExecutionLog {
		mu.Lock()
		ran = append(ran, s.ID)
		mu.Unlock()
		return types.ExecutionLog{ScheduleID: s.ID, Status: state.StatusSuccess}
	})

	summary := newOrchestrator(store, runner, 4).Run(context.Background())

	sort.Strings(ran)
	assert.Equal(t, []string{"daily", "ran-yesterday"}, ran)
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.SchedulesProcessed)
	assert.Equal(t, 0, summary.SchedulesFailed)
}

func TestRun_CountsOnlyErrorsAsFailed(t *testing.T) {
	store := &mocks.MockScheduleStore{
		ListActiveSchedulesFunc: func(ctx context.Context) ([]types.Schedule, error) {
			return []types.Schedule{
				schedule("ok", "* * * * *", nil),
				schedule("partial", "* * * * *", nil),
				schedule("error", "* * * * *", nil),
			}, nil
		},
	}
	runner := runnerFunc(func(ctx context.Context, s types.Schedule) types.ExecutionLog {
		switch s.ID {
		case "partial":
			return types.ExecutionLog{Status: state.StatusPartial}
		case "error":
			return types.ExecutionLog{Status: state.StatusError}
		}
		return types.ExecutionLog{Status: state.StatusSuccess}
	})

	summary := newOrchestrator(store, runner, 1).Run(context.Background())

	assert.True(t, summary.Success)
	assert.Equal(t, 3, summary.SchedulesProcessed)
	assert.Equal(t, 1, summary.SchedulesFailed)
}

func TestRun_LoadFailureFailsTick(t *testing.T) {
	store := &mocks.MockScheduleStore{
		ListActiveSchedulesFunc: func(ctx context.Context) ([]types.Schedule, error) {
			return nil, errors.New("connection refused")
		},
	}
	called := false
	runner := runnerFunc(func(ctx context.Context, s types.Schedule) types.ExecutionLog {
		called = true
		return types.ExecutionLog{}
	})

	summary := newOrchestrator(store, runner, 1).Run(context.Background())

	assert.False(t, summary.Success)
	assert.Zero(t, summary.SchedulesProcessed)
	assert.False(t, called)
}

func TestRun_NoDueSchedules(t *testing.T) {
	summary := newOrchestrator(&mocks.MockScheduleStore{}, runnerFunc(func(ctx context.Context, s types.Schedule) types.ExecutionLog {
		t.Fatal("runner must not be called")
		return types.ExecutionLog{}
	}), 2).Run(context.Background())

	assert.True(t, summary.Success)
	assert.Zero(t, summary.SchedulesProcessed)
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var list []types.Schedule
	for i := 0; i < 10; i++ {
		list = append(list, schedule(string(rune('a'+i)), "* * * * *", nil))
	}
	store := &mocks.MockScheduleStore{
		ListActiveSchedulesFunc: func(ctx context.Context) ([]types.Schedule, error) {
			return list, nil
		},
	}

	var inFlight, peak int32
	runner := runnerFunc(func(ctx context.Context, s types.Schedule) types.ExecutionLog {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return types.ExecutionLog{Status: state.StatusSuccess}
	})

	summary := newOrchestrator(store, runner, 3).Run(context.Background())

	assert.Equal(t, 10, summary.SchedulesProcessed)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestStart_StopsOnCancel(t *testing.T) {
	var ticks int32
	store := &mocks.MockScheduleStore{
		ListActiveSchedulesFunc: func(ctx context.Context) ([]types.Schedule, error) {
			atomic.AddInt32(&ticks, 1)
			return nil, nil
		},
	}
	o := newOrchestrator(store, runnerFunc(func(ctx context.Context, s types.Schedule) types.ExecutionLog {
		return types.ExecutionLog{}
	}), 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Start(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&ticks) >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestSummary_JSONFieldNames(t *testing.T) {
	s := Summary{Success: true, SchedulesProcessed: 2, SchedulesFailed: 1, ExecutionTimeMs: 40}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"schedulesProcessed":2,"schedulesFailed":1,"executionTimeMs":40}`, string(b))
}
