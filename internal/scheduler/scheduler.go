package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler fires a job once per week at a fixed weekday and minute (UTC).
// A single loop polls the wall clock; the job runs synchronously, so
// concurrent runs are impossible by construction.
type Scheduler struct {
	log      *zap.Logger
	weekday  time.Weekday
	triggerM int // minutes since midnight, UTC
	interval time.Duration
	now      func() time.Time
	job      func(ctx context.Context)

	lastFired time.Time // the matched calendar minute, guards double-firing
}

// New creates a scheduler polling every 30 seconds, which is comfortably
// inside the one-minute trigger granularity.
func New(log *zap.Logger, weekday time.Weekday, triggerM int, job func(ctx context.Context)) *Scheduler {
	return &Scheduler{
		log:      log,
		weekday:  weekday,
		triggerM: triggerM,
		interval: 30 * time.Second,
		now:      time.Now,
		job:      job,
	}
}

// Run polls until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx, s.now().UTC())
		}
	}
}

// tick fires the job when now falls inside the trigger minute and that
// calendar minute has not fired yet. The job blocks the loop for its
// duration; ticks that would have landed during a run are simply skipped.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	if now.Weekday() != s.weekday {
		return
	}
	if now.Hour()*60+now.Minute() != s.triggerM {
		return
	}
	minute := now.Truncate(time.Minute)
	if minute.Equal(s.lastFired) {
		return
	}
	s.lastFired = minute

	s.log.Info("scheduled trigger fired", zap.Time("at", minute))
	s.job(ctx)
}
