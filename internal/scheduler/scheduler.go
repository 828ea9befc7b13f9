// Package scheduler runs the search pipeline on a fixed interval for
// watch mode.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunFunc is one full search cycle.
type RunFunc func(ctx context.Context) error

// Scheduler wraps robfig/cron and manages the periodic search loop.
type Scheduler struct {
	cron   *cron.Cron
	run    RunFunc
	spec   string
	logger *zap.Logger
}

// New creates a Scheduler that fires every intervalHours hours.
func New(run RunFunc, intervalHours int, logger *zap.Logger) (*Scheduler, error) {
	if intervalHours <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", intervalHours)
	}

	return &Scheduler{
		cron:   cron.New(),
		run:    run,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
		logger: logger,
	}, nil
}

// Start registers the job and starts the scheduler. One cycle runs
// immediately so the first results do not wait for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("watch scheduler started", zap.String("spec", s.spec))

	go s.runCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("watch scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.logger.Info("search cycle started")
	if err := s.run(ctx); err != nil {
		s.logger.Error("search cycle failed", zap.Error(err))
		return
	}
	s.logger.Info("search cycle complete")
}
