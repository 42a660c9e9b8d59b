package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Clock tells the time and waits.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// DefaultHour and DefaultMinute are the default daily run time.
const (
	DefaultHour   = 8
	DefaultMinute = 0
)

// NextRun returns the next hour:minute in now's location that is strictly
// after now.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return next
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// Sweeps is anything that can run one notification pass.
type Sweeps interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

// Scheduler runs a sweep once a day at a fixed local time.
type Scheduler struct {
	Sweeper Sweeps
	Clock   Clock
	Hour    int
	Minute  int
}

// NewScheduler returns a Scheduler running sweeper daily at hour:minute.
func NewScheduler(sweeper Sweeps, hour, minute int) *Scheduler {
	return &Scheduler{Sweeper: sweeper, Clock: SystemClock{}, Hour: hour, Minute: minute}
}

// Run sleeps until each scheduled time and sweeps, until ctx is cancelled.
// Sweep errors are logged and never stop the loop. Run returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := s.Clock.Now()
		next := NextRun(now, s.Hour, s.Minute)
		slog.Info("next notification run", "at", next.Format(time.DateTime))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Clock.After(next.Sub(now)):
		}

		result, err := s.Sweeper.Sweep(ctx)
		if err != nil {
			slog.Error("notification sweep failed", "error", err)
			continue
		}
		slog.Info("sweep finished",
			"checked", result.Checked, "sent", result.Sent, "previewed", result.Previewed,
			"skipped", result.Skipped, "failed", result.Failed)
	}
}
