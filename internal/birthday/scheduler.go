package birthday

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Runner is the daily job
type Runner interface {
	SendAll(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs the birthday job once at start, then daily at a fixed local hour.
// Last-run time is not persisted, so every restart runs the job again.
type Scheduler struct {
	runner Runner
	hour   int
	now    func() time.Time                       // Swapped in tests
	after  func(d time.Duration) <-chan time.Time // Swapped in tests
}

// NewScheduler creates a scheduler firing at hour (0-23) local time
func NewScheduler(runner Runner, hour int) *Scheduler {
	if hour < 0 || hour > 23 {
		hour = 9 // Morning default
	}
	return &Scheduler{runner: runner, hour: hour, now: time.Now, after: time.After}
}

// NextRun returns the first time at hour:00 strictly after now
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1) // Already past today's slot
	}
	return next
}

// Run blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	s.runOnce(ctx) // Catch up on start
	for {
		wait := NextRun(s.now(), s.hour).Sub(s.now())
		select {
		case <-ctx.Done():
			logrus.Info("Birthday scheduler stopped")
			return
		case <-s.after(wait):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	sent, err := s.runner.SendAll(ctx, s.now())
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Birthday run failed")
		return
	}
	logrus.WithField("sent", sent).Info("Birthday run completed")
}
