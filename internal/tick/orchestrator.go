// Package tick runs one notification pass over every active schedule.
package tick

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/RezaEskandarii/prnotifier/internal/due"
	"github.com/RezaEskandarii/prnotifier/internal/metrics"
	"github.com/RezaEskandarii/prnotifier/internal/state"
	"github.com/RezaEskandarii/prnotifier/internal/store"
	"github.com/RezaEskandarii/prnotifier/types"
	"golang.org/x/sync/semaphore"
)

// Runner executes one schedule and reports the log it wrote.
type Runner interface {
	Run(ctx context.Context, schedule types.Schedule) types.ExecutionLog
}

// Summary is the outcome of one tick.
type Summary struct {
	Success            bool  `json:"success"`
	SchedulesProcessed int   `json:"schedulesProcessed"`
	SchedulesFailed    int   `json:"schedulesFailed"`
	ExecutionTimeMs    int64 `json:"executionTimeMs"`
}

type Orchestrator struct {
	schedules    store.ScheduleStore
	runner       Runner
	selector     *due.Selector
	workerCount  int
	storeTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

func NewOrchestrator(schedules store.ScheduleStore, runner Runner, workerCount int, storeTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if workerCount < 1 {
		workerCount = 1
	}
	return &Orchestrator{
		schedules:    schedules,
		runner:       runner,
		selector:     due.NewSelector(logger),
		workerCount:  workerCount,
		storeTimeout: storeTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// Run selects the due schedules and executes each of them. A failing schedule never
// stops the others; only failing to load the schedule list fails the tick.
func (o *Orchestrator) Run(ctx context.Context) Summary {
	started := o.now()
	defer func() {
		metrics.TickDuration.Observe(time.Since(started).Seconds())
	}()

	loadCtx, cancel := context.WithTimeout(ctx, o.storeTimeout)
	schedules, err := o.schedules.ListActiveSchedules(loadCtx)
	cancel()
	if err != nil {
		o.logger.Error("failed to load active schedules", "err", err)
		return Summary{Success: false, ExecutionTimeMs: o.now().Sub(started).Milliseconds()}
	}

	dueSchedules := o.selector.SelectDue(schedules, started.UTC())
	o.logger.Debug("selected due schedules", "active", len(schedules), "due", len(dueSchedules))

	logs := o.runAll(ctx, dueSchedules)

	summary := Summary{Success: true, SchedulesProcessed: len(logs)}
	for _, l := range logs {
		result := metrics.ResultSuccess
		if l.Status == state.StatusError {
			summary.SchedulesFailed++
			result = metrics.ResultFailure
		}
		metrics.TickSchedules.WithLabelValues(result).Inc()
	}
	summary.ExecutionTimeMs = o.now().Sub(started).Milliseconds()

	o.logger.Info("tick finished",
		"processed", summary.SchedulesProcessed,
		"failed", summary.SchedulesFailed,
		"duration_ms", summary.ExecutionTimeMs,
	)
	return summary
}

func (o *Orchestrator) runAll(ctx context.Context, schedules []types.Schedule) []types.ExecutionLog {
	sem := semaphore.NewWeighted(int64(o.workerCount))
	var wg sync.WaitGroup

	logs := make([]types.ExecutionLog, 0, len(schedules))
	var mu sync.Mutex

	for _, s := range schedules {
		if err := sem.Acquire(ctx, 1); err != nil {
			o.logger.Warn("tick cancelled before all schedules started", "schedule_id", s.ID, "err", err)
			break
		}
		wg.Add(1)

		go func(s types.Schedule) {
			defer sem.Release(1)
			defer wg.Done()

			entry := o.runner.Run(ctx, s)

			mu.Lock()
			logs = append(logs, entry)
			mu.Unlock()
		}(s)
	}

	wg.Wait()
	return logs
}

// Start runs a tick every interval until ctx is cancelled. Ticks never overlap.
func (o *Orchestrator) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("tick loop stopped")
			return
		case <-ticker.C:
			o.Run(ctx)
		}
	}
}
