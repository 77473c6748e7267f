// Package scheduler triggers non-forced runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"ratesync/internal/pipeline"
)

// Runner is the run entry point shared with the manual trigger.
type Runner interface {
	RunOnce(ctx context.Context, force bool) (pipeline.RunStatus, error)
}

// Scheduler calls RunOnce(false) on every tick of a cron expression.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *slog.Logger
}

// New parses spec (standard 5-field cron) and registers the run job.
// Ticks that overlap a run in progress are skipped.
func New(ctx context.Context, spec string, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		runner: runner,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Tick(ctx) }); err != nil {
		return nil, fmt.Errorf("scheduler: parse %q: %w", spec, err)
	}
	return s, nil
}

// Tick performs one scheduled run and logs its outcome.
func (s *Scheduler) Tick(ctx context.Context) {
	status, err := s.runner.RunOnce(ctx, false)
	if err != nil {
		s.logger.Error("scheduler: run failed", "error", err)
		return
	}
	s.logger.Info("scheduler: run finished", "ok", status.OK, "rows", status.RowCount)
}

// Start begins firing the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running tick to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
