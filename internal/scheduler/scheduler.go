// Package scheduler drives recurring incremental runs. One cron entry fires
// the nightly ingestion over the configured lookback window; everything else
// about a run is the pipeline's business.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"ncaam_stats/pipeline/internal/config"
	"ncaam_stats/pipeline/internal/pipeline"
)

// Scheduler manages the recurring nightly ingestion run.
type Scheduler struct {
	cfg    *config.Config
	runner *pipeline.Runner
	cron   *cron.Cron
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg *config.Config, runner *pipeline.Runner) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		cron:   cron.New(),
	}
}

// Start registers the nightly run and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.NightlyRunCron, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly run: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRunCron).
		Int("lookback_days", s.cfg.LookbackDays).
		Msg("Nightly ingestion scheduled")

	return nil
}

// Stop stops the cron loop, waiting for a running job to finish.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

// RunOnce executes one incremental run over the lookback window ending today.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := time.Now().UTC()
	seasonYear := s.cfg.ResolveSeason(now)
	to := now.Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -s.cfg.LookbackDays)

	log.Info().
		Int("season", seasonYear).
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("Starting incremental run")

	report, err := s.runner.Run(ctx, seasonYear, from, to, false)
	if err != nil {
		log.Error().Err(err).Msg("Incremental run failed")
		return
	}

	log.Info().
		Int("games_found", report.GamesFound).
		Int("games_parsed", report.GamesParsed).
		Int("games_failed", report.GamesFailed).
		Int("days_failed", report.DaysFailed).
		Msg("Incremental run finished")
}
