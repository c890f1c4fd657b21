package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Runner triggers one ingestion run
type Runner interface {
	TriggerIngestion(ctx context.Context) (pipeline.RunSummary, error)
}

// Scheduler runs the nightly refresh of the draft board
type Scheduler struct {
	runner   Runner
	schedule string
	cron     *cron.Cron
}

// NewScheduler creates a new scheduler instance. schedule is a standard five-field cron spec.
func NewScheduler(runner Runner, schedule string) *Scheduler {
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start starts the scheduler. Runs inherit ctx, so cancelling it aborts an in-flight refresh.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.schedule, func() {
		log.Info().Msg("Running nightly refresh...")
		s.run(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.schedule).
		Msg("Nightly refresh scheduled")

	return nil
}

// RunNow triggers a refresh outside the schedule and blocks until it finishes
func (s *Scheduler) RunNow(ctx context.Context) {
	log.Info().Msg("Running on-demand refresh...")
	s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	summary, err := s.runner.TriggerIngestion(ctx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		log.Warn().Msg("Skipping refresh, a run is already in progress")
	case err != nil:
		log.Error().Err(err).Msg("Refresh failed")
	default:
		log.Info().
			Str("run_id", summary.RunID.String()).
			Int("players", summary.Players).
			Msg("Refresh complete")
	}
}

// Stop stops the scheduler and waits up to timeout for a running refresh to return
func (s *Scheduler) Stop(timeout time.Duration) {
	log.Info().Msg("Stopping scheduler...")

	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(timeout):
		log.Warn().Dur("timeout", timeout).Msg("Refresh still running at shutdown")
	}

	log.Info().Msg("Scheduler stopped")
}
