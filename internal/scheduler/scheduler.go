// Package scheduler runs the scraper on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job is the unit of scheduled work; the scraper's Run satisfies it.
type Job func(ctx context.Context) (int, error)

// Scheduler invokes a job on a fixed interval until its context is
// cancelled. Failures are logged and the next tick proceeds normally.
type Scheduler struct {
	interval time.Duration
	job      Job
}

// New creates a Scheduler. Intervals below one minute are clamped to
// one minute to protect the upstream feed.
func New(interval time.Duration, job Job) *Scheduler {
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Scheduler{interval: interval, job: job}
}

// Start runs the job immediately and then on every tick. Blocks until
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	zap.L().Info("scheduler: starting", zap.Duration("interval", s.interval))

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("scheduler: stopping")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	stored, err := s.job(ctx)
	if err != nil {
		zap.L().Error("scheduler: scrape failed", zap.Error(err))
		return
	}
	zap.L().Info("scheduler: scrape complete",
		zap.Int("stored", stored),
		zap.Duration("took", time.Since(start)),
	)
}
