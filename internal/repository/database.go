package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"ncaam_stats/pipeline/internal/models"
)

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Totals  *TotalsRepository
	Games   *GameRepository
	Ratings *RatingsRepository
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, dsn string) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to database")

	db := &Database{Pool: pool}
	db.Totals = &TotalsRepository{db: db}
	db.Games = &GameRepository{db: db}
	db.Ratings = &RatingsRepository{db: db}

	return db, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// SeenGameIDs returns every processed gameId for a season.
func (db *Database) SeenGameIDs(ctx context.Context, season int) ([]string, error) {
	return db.Games.ListSeenIDs(ctx, season)
}

// LatestGameDate returns the most recent processed game date for a season,
// zero when none exist.
func (db *Database) LatestGameDate(ctx context.Context, season int) (time.Time, error) {
	return db.Games.LatestDate(ctx, season)
}

// LoadTeams returns every stored team season-totals row for a season.
func (db *Database) LoadTeams(ctx context.Context, season int) ([]*models.TeamSeasonTotals, error) {
	return db.Totals.ListTeams(ctx, season)
}

// LoadPlayers returns every stored player season-totals row for a season.
func (db *Database) LoadPlayers(ctx context.Context, season int) ([]*models.PlayerSeasonTotals, error) {
	return db.Totals.ListPlayers(ctx, season)
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}
