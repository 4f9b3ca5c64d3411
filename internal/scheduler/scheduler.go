// Package scheduler drives periodic re-analysis runs for watch mode.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/iamcos/haaslab/internal/models"
	"github.com/iamcos/haaslab/internal/pipeline"
)

// RunFunc executes one pipeline run.
type RunFunc func(ctx context.Context, opts pipeline.Options) (*models.RunSummary, error)

// Scheduler re-runs lab analysis on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	run        RunFunc
	opts       pipeline.Options
	logger     *logrus.Logger
	mu         sync.RWMutex
	isRunning  bool
	jobTimeout time.Duration
}

// NewScheduler creates a new scheduler around a run function.
func NewScheduler(run RunFunc, opts pipeline.Options, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		run:        run,
		opts:       opts,
		logger:     logger,
		jobTimeout: 2 * time.Hour,
	}
}

// Schedule registers the analysis job under a cron expression.
func (s *Scheduler) Schedule(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	_, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		summary, err := s.run(ctx, s.opts)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled analysis run failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"run_id": summary.RunID,
			"labs":   len(summary.Labs),
			"failed": summary.Failed(),
		}).Info("Scheduled analysis run finished")
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpression, err)
	}
	return nil
}

// Start begins executing scheduled runs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.Info("Scheduler started")
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}
