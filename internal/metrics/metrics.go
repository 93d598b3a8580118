// Package metrics holds the Prometheus collectors of the notifier.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScheduleRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prnotifier_schedule_runs_total",
		Help: "Schedule executions by final status",
	}, []string{"status"})

	TickSchedules = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prnotifier_tick_schedules_total",
		Help: "Schedules processed by the tick orchestrator by result",
	}, []string{"result"})

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prnotifier_tick_duration_seconds",
		Help:    "Wall time of one tick",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prnotifier_execution_duration_seconds",
		Help:    "Wall time of one schedule execution",
		Buckets: prometheus.DefBuckets,
	})

	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prnotifier_messages_sent_total",
		Help: "Chat messages delivered by kind (regular or escalation)",
	}, []string{"kind"})

	Escalations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prnotifier_escalations_total",
		Help: "Pull requests escalated",
	})

	TokenRefresh = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prnotifier_token_refresh_total",
		Help: "Token refresh attempts by provider category and result",
	}, []string{"category", "result"})
)

// Label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultNoop    = "noop"

	KindRegular    = "regular"
	KindEscalation = "escalation"
)
