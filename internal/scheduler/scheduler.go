// Package scheduler runs the daily universe refresh on a cron spec.
package scheduler

import (
	"context"
	"fmt"

	"CoinScope/internal/usecase"
	xlogger "CoinScope/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the cron runner and the jobs registered on it.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *usecase.Reconciler
	logger     *xlogger.Logger
	spec       string
}

// New builds a scheduler that refreshes the whole universe on the given spec.
func New(reconciler *usecase.Reconciler, logger *xlogger.Logger, spec string) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		reconciler: reconciler,
		logger:     logger,
		spec:       spec,
	}
}

// Start registers the refresh job and launches the cron loop. The first
// refresh only happens at the next cron tick; startup does not block on a
// full universe computation.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refresh); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", xlogger.String("spec", s.spec))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) refresh() {
	s.reconciler.RefreshAll(context.Background())
}
