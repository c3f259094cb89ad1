package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job represents a scheduled task
type Job func(ctx context.Context) error

// Scheduler re-runs extraction batches on a cron schedule. Jobs never
// overlap: a run still in progress makes the next tick a no-op, since the
// browsing session cannot be shared between concurrent traversals.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	timeout time.Duration
	running chan struct{}
}

// New creates a scheduler. timeout bounds each job execution.
func New(timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		jobs:    make(map[string]cron.EntryID),
		timeout: timeout,
		running: make(chan struct{}, 1),
	}
}

// AddJob adds a job with a cron schedule
// schedule format: "0 7 * * *" (at 7:00 AM daily)
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		select {
		case s.running <- struct{}{}:
			defer func() { <-s.running }()
		default:
			slog.Warn("previous run still in progress, skipping tick", "job", name)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		slog.Info("starting scheduled run", "job", name)
		start := time.Now()

		if err := job(ctx); err != nil {
			slog.Error("scheduled run failed", "job", name, "err", err)
		} else {
			slog.Info("scheduled run completed", "job", name, "took", time.Since(start))
		}
	})

	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	slog.Info("scheduled job", "job", name, "schedule", schedule)

	return nil
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and returns a context that is done once running
// jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
