package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Upstream feed
	FeedBaseURL      string        `envconfig:"FEED_BASE_URL" default:"https://data.ncaa.com/casablanca"`
	FeedSport        string        `envconfig:"FEED_SPORT" default:"basketball-men"`
	FeedDivision     string        `envconfig:"FEED_DIVISION" default:"d1"`
	FeedTimeout      time.Duration `envconfig:"FEED_TIMEOUT" default:"30s"`
	FeedMaxAttempts  int           `envconfig:"FEED_MAX_ATTEMPTS" default:"4"`
	FeedRetryBackoff time.Duration `envconfig:"FEED_RETRY_BACKOFF" default:"1s"`

	// Fetch worker pool
	FetchWorkers int           `envconfig:"FETCH_WORKERS" default:"4"`
	FetchDelay   time.Duration `envconfig:"FETCH_DELAY" default:"500ms"`

	// Pipeline
	Season        int    `envconfig:"SEASON" default:"0"` // 0 = current season
	LookbackDays  int    `envconfig:"LOOKBACK_DAYS" default:"2"`
	MinTeamCount  int    `envconfig:"MIN_TEAM_COUNT" default:"200"`
	ConferenceSet string `envconfig:"CONFERENCE_SET" default:""` // comma-separated; empty = no division filter

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ncaam_stats"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"ncaam_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (fast-path game-id cache; optional)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler (incremental worker only)
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"false"`
	NightlyRunCron  string `envconfig:"NIGHTLY_RUN_CRON" default:"0 9 * * *"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}
	if c.FetchWorkers < 1 {
		return fmt.Errorf("FETCH_WORKERS must be at least 1")
	}
	if c.FeedMaxAttempts < 1 {
		return fmt.Errorf("FEED_MAX_ATTEMPTS must be at least 1")
	}
	if c.MinTeamCount < 0 {
		return fmt.Errorf("MIN_TEAM_COUNT must not be negative")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Conferences returns the configured division conference set, normalized to
// lower case. An empty map means no conference filtering.
func (c *Config) Conferences() map[string]bool {
	set := make(map[string]bool)
	for _, conf := range strings.Split(c.ConferenceSet, ",") {
		conf = strings.ToLower(strings.TrimSpace(conf))
		if conf != "" {
			set[conf] = true
		}
	}
	return set
}

// ResolveSeason returns the configured season, or the current NCAA season
// when unset. The season is named for its spring year: November 2025 games
// belong to the 2026 season.
func (c *Config) ResolveSeason(now time.Time) int {
	if c.Season != 0 {
		return c.Season
	}
	if now.Month() >= time.May {
		return now.Year() + 1
	}
	return now.Year()
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
