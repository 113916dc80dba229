// Package scheduler runs the background ingestion loop on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/collie/pkg/observability"
)

// Job is one unit of scheduled work. FetchAll of pkg/fetcher satisfies it.
type Job interface {
	FetchAll(ctx context.Context) (int, error)
}

// Scheduler triggers the ingestion job on a fixed interval. A tick that
// fires while the previous run is still in flight is skipped, so slow
// fetch sweeps never pile up. Job errors are logged and absorbed; the
// loop keeps running.
type Scheduler struct {
	cron     *cron.Cron
	job      Job
	logger   *observability.Logger
	interval time.Duration
}

// New creates a scheduler that runs the job every interval. Each run is
// bounded by twice the interval so a hung fetch cannot block the loop
// forever.
func New(job Job, logger *observability.Logger, interval time.Duration) (*Scheduler, error) {
	if interval < time.Second {
		return nil, fmt.Errorf("interval must be at least one second")
	}

	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
			cron.Recover(cron.DiscardLogger),
		)),
		job:      job,
		logger:   logger,
		interval: interval,
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.run); err != nil {
		return nil, fmt.Errorf("schedule ingestion: %w", err)
	}
	return s, nil
}

// Start launches the loop and runs one sweep immediately.
func (s *Scheduler) Start() {
	s.logger.WithField("interval", s.interval.String()).Info("starting ingestion scheduler")
	go s.run()
	s.cron.Start()
}

// Stop halts the loop and waits for any running sweep to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("ingestion scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*s.interval)
	defer cancel()

	if _, err := s.job.FetchAll(ctx); err != nil {
		s.logger.WithError(err).Warn("ingestion sweep failed")
	}
}
