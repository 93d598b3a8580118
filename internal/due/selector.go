// Package due decides which schedules fire in the current minute.
package due

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RezaEskandarii/prnotifier/types"
	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// searchWindows bound the backward search for the previous fire time.
var searchWindows = []time.Duration{
	time.Hour,
	24 * time.Hour,
	32 * 24 * time.Hour,
	366 * 24 * time.Hour,
	5 * 366 * 24 * time.Hour,
}

var ErrNeverFires = errors.New("cron expression never fires")

// Parse parses a five field cron expression. Expressions are always evaluated in UTC,
// so time zone prefixes are rejected.
func Parse(expr string) (cron.Schedule, error) {
	trimmed := strings.TrimSpace(expr)
	if strings.HasPrefix(trimmed, "TZ=") || strings.HasPrefix(trimmed, "CRON_TZ=") {
		return nil, fmt.Errorf("cron expression %q: time zones are not supported", expr)
	}
	schedule, err := parser.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// PrevFire returns the most recent fire time of expr at or before now, truncated to the minute.
func PrevFire(expr string, now time.Time) (time.Time, error) {
	schedule, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return prevFire(schedule, now)
}

func prevFire(schedule cron.Schedule, now time.Time) (time.Time, error) {
	target := now.UTC().Truncate(time.Minute)

	// Next returns the first fire strictly after its argument.
	if schedule.Next(target.Add(-time.Second)).Equal(target) {
		return target, nil
	}

	for _, window := range searchWindows {
		var last time.Time
		for t := schedule.Next(target.Add(-window)); !t.IsZero() && !t.After(target); t = schedule.Next(t) {
			last = t
		}
		if !last.IsZero() {
			return last, nil
		}
	}
	return time.Time{}, ErrNeverFires
}

// Selector picks the due schedules of a tick.
type Selector struct {
	logger *slog.Logger
}

func NewSelector(logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{logger: logger}
}

// IsDue reports whether schedule fires in the minute of now and has not run for that fire yet.
func (s *Selector) IsDue(schedule types.Schedule, now time.Time) (bool, error) {
	parsed, err := Parse(schedule.CronExpression)
	if err != nil {
		return false, err
	}
	prev, err := prevFire(parsed, now)
	if errors.Is(err, ErrNeverFires) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !prev.Equal(now.UTC().Truncate(time.Minute)) {
		return false, nil
	}
	return schedule.LastExecutedAt == nil || schedule.LastExecutedAt.Before(prev), nil
}

// SelectDue returns the due schedules in input order. Schedules with an invalid cron
// expression are logged and skipped.
func (s *Selector) SelectDue(schedules []types.Schedule, now time.Time) []types.Schedule {
	var due []types.Schedule
	for _, schedule := range schedules {
		ok, err := s.IsDue(schedule, now)
		if err != nil {
			s.logger.Warn("skipping schedule with invalid cron expression",
				"schedule_id", schedule.ID,
				"cron_expression", schedule.CronExpression,
				"err", err,
			)
			continue
		}
		if ok {
			due = append(due, schedule)
		}
	}
	return due
}
