package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ncaam_stats/pipeline/internal/cache"
	"ncaam_stats/pipeline/internal/client"
	"ncaam_stats/pipeline/internal/config"
	"ncaam_stats/pipeline/internal/pipeline"
	"ncaam_stats/pipeline/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Full-season rebuild: rescans every scoreboard day from the season opener,
// re-aggregates from a clean state, and replaces the stored season wholesale.
// Used after upstream corrections or extractor fixes, when incremental
// accumulation would carry the old mistakes forward.
func main() {
	setupLogger()

	var through string
	flag.StringVar(&through, "through", "", "last day to scan (YYYY-MM-DD, default today)")
	flag.Parse()

	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, aborting rebuild...")
		cancel()
	}()

	now := time.Now().UTC()
	seasonYear := cfg.ResolveSeason(now)
	from := seasonOpener(seasonYear)
	to := now.Truncate(24 * time.Hour)
	if through != "" {
		parsed, err := time.Parse("2006-01-02", through)
		if err != nil {
			log.Fatal().Str("through", through).Err(err).Msg("Invalid -through date")
		}
		to = parsed
	}

	log.Info().
		Int("season", seasonYear).
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("Starting full season rebuild")

	feed := client.NewClient(cfg.FeedBaseURL, cfg.FeedTimeout, client.RetryPolicy{
		MaxAttempts: cfg.FeedMaxAttempts,
		Backoff:     cfg.FeedRetryBackoff,
		Retryable:   client.DefaultRetryPolicy().Retryable,
	})

	db, err := repository.NewDatabase(ctx, cfg.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	var fast pipeline.FastCache
	gameCache, err := cache.NewGameIDCache(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer gameCache.Close()
		fast = gameCache
	}

	runner := pipeline.NewRunner(cfg, feed, db, fast)

	report, err := runner.Run(ctx, seasonYear, from, to, true)
	if err != nil {
		if errors.Is(err, pipeline.ErrGuardRejected) {
			log.Error().Err(err).Msg("Rebuild output discarded by guard, prior data left intact")
		} else {
			log.Error().Err(err).Msg("Rebuild failed")
		}
		os.Exit(1)
	}

	log.Info().
		Int("days_scanned", report.DaysScanned).
		Int("days_failed", report.DaysFailed).
		Int("games_parsed", report.GamesParsed).
		Int("games_failed", report.GamesFailed).
		Int("teams", report.TeamsTotal).
		Int("players", report.PlayersTotal).
		Msg("Rebuild complete")
}

// seasonOpener returns the first scannable day of a season. Games tip off in
// early November of the calendar year before the season's naming year.
func seasonOpener(seasonYear int) time.Time {
	return time.Date(seasonYear-1, time.November, 1, 0, 0, 0, 0, time.UTC)
}

// setupLogger configures the zerolog logger
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}
