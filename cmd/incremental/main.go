package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ncaam_stats/pipeline/internal/cache"
	"ncaam_stats/pipeline/internal/client"
	"ncaam_stats/pipeline/internal/config"
	"ncaam_stats/pipeline/internal/pipeline"
	"ncaam_stats/pipeline/internal/repository"
	"ncaam_stats/pipeline/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting NCAAM stats ingestion worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	feed := client.NewClient(cfg.FeedBaseURL, cfg.FeedTimeout, client.RetryPolicy{
		MaxAttempts: cfg.FeedMaxAttempts,
		Backoff:     cfg.FeedRetryBackoff,
		Retryable:   client.DefaultRetryPolicy().Retryable,
	})
	log.Info().Str("base_url", cfg.FeedBaseURL).Msg("Feed client initialized")

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
		log.Info().Msg("Redis game-id cache connected")
	}

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	runner := pipeline.NewRunner(cfg, feed, db, fast)

	if !cfg.EnableScheduler {
		// One-shot mode for cron wrappers: exit status reflects the run.
		if err := runIncremental(ctx, cfg, runner); err != nil {
			if errors.Is(err, pipeline.ErrGuardRejected) {
				log.Error().Err(err).Msg("Run output discarded by guard")
			} else {
				log.Error().Err(err).Msg("Run failed")
			}
			os.Exit(1)
		}
		log.Info().Msg("One-shot run complete")
		return
	}

	sched := scheduler.NewScheduler(cfg, runner)

	// One immediate run on startup; the cron loop keeps it fresh afterwards.
	sched.RunOnce(ctx)

	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	<-ctx.Done()

	sched.Stop()
	log.Info().Msg("Worker shutdown complete")
}

// runIncremental executes one incremental run over the lookback window.
func runIncremental(ctx context.Context, cfg *config.Config, runner *pipeline.Runner) error {
	now := time.Now().UTC()
	seasonYear := cfg.ResolveSeason(now)
	to := now.Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -cfg.LookbackDays)

	report, err := runner.Run(ctx, seasonYear, from, to, false)
	if err != nil {
		return err
	}

	log.Info().
		Int("season", seasonYear).
		Int("games_found", report.GamesFound).
		Int("games_parsed", report.GamesParsed).
		Int("games_failed", report.GamesFailed).
		Int("days_failed", report.DaysFailed).
		Msg("Incremental run finished")
	return nil
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

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics endpoint
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Str("addr", addr).Msg("Metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server stopped")
	}
}
