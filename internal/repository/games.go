package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ncaam_stats/pipeline/internal/models"
)

// GameRepository handles processed-game database operations. The
// processed_games table doubles as the authoritative gameId dedup cache: a
// gameId present there has already been merged into season totals and must
// never be merged again. Each row also carries the full extracted box-score
// lines as JSONB, so the serving layer can show per-game detail without
// re-fetching the feed.
type GameRepository struct {
	db *Database
}

// ListSeenIDs returns every gameId already processed for a season.
func (r *GameRepository) ListSeenIDs(ctx context.Context, season int) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT game_id FROM processed_games WHERE season = $1`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list processed games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating processed games: %w", err)
	}

	return ids, nil
}

// Insert records one processed game within tx, including its embedded home,
// away, and player stat lines. Inserting an already-known gameId is a no-op
// rather than an error, so replayed runs stay idempotent.
func (r *GameRepository) Insert(ctx context.Context, tx pgx.Tx, season int, rec *models.GameRecord) error {
	homeBox, err := json.Marshal(rec.HomeBox)
	if err != nil {
		return fmt.Errorf("failed to encode home box line: %w", err)
	}
	awayBox, err := json.Marshal(rec.AwayBox)
	if err != nil {
		return fmt.Errorf("failed to encode away box line: %w", err)
	}
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return fmt.Errorf("failed to encode player lines: %w", err)
	}

	query := `
		INSERT INTO processed_games (
			season, game_id, game_date, home_team_id, away_team_id,
			home_points, away_points, conference_game,
			home_box, away_box, players
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (season, game_id) DO NOTHING
	`

	_, err = tx.Exec(
		ctx, query,
		season, rec.GameID, rec.Date, rec.HomeTeam.TeamID, rec.AwayTeam.TeamID,
		rec.HomeBox.Points, rec.AwayBox.Points, rec.ConferenceGame,
		homeBox, awayBox, players,
	)
	if err != nil {
		return fmt.Errorf("failed to insert processed game: %w", err)
	}

	return nil
}

// Get retrieves one processed game with its embedded stat lines.
func (r *GameRepository) Get(ctx context.Context, season int, gameID string) (*models.GameRecord, error) {
	query := `
		SELECT game_id, game_date, home_team_id, away_team_id, conference_game,
		       home_box, away_box, players
		FROM processed_games
		WHERE season = $1 AND game_id = $2
	`

	var (
		rec     models.GameRecord
		homeBox []byte
		awayBox []byte
		players []byte
	)
	err := r.db.Pool.QueryRow(ctx, query, season, gameID).Scan(
		&rec.GameID, &rec.Date, &rec.HomeTeam.TeamID, &rec.AwayTeam.TeamID, &rec.ConferenceGame,
		&homeBox, &awayBox, &players,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("processed game not found: season=%d game_id=%s", season, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get processed game: %w", err)
	}

	if err := json.Unmarshal(homeBox, &rec.HomeBox); err != nil {
		return nil, fmt.Errorf("failed to decode home box line: %w", err)
	}
	if err := json.Unmarshal(awayBox, &rec.AwayBox); err != nil {
		return nil, fmt.Errorf("failed to decode away box line: %w", err)
	}
	if len(players) > 0 {
		if err := json.Unmarshal(players, &rec.Players); err != nil {
			return nil, fmt.Errorf("failed to decode player lines: %w", err)
		}
	}

	return &rec, nil
}

// Count returns the number of processed games for a season.
func (r *GameRepository) Count(ctx context.Context, season int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM processed_games WHERE season = $1`, season).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count processed games: %w", err)
	}
	return count, nil
}

// LatestDate returns the date of the most recently processed game for a
// season, or the zero time when none exist.
func (r *GameRepository) LatestDate(ctx context.Context, season int) (time.Time, error) {
	var latest *time.Time
	err := r.db.Pool.QueryRow(ctx, `SELECT MAX(game_date) FROM processed_games WHERE season = $1`, season).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest game date: %w", err)
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

// DeleteSeason removes the processed-game history for a season, used by full
// rebuilds.
func (r *GameRepository) DeleteSeason(ctx context.Context, tx pgx.Tx, season int) error {
	if _, err := tx.Exec(ctx, `DELETE FROM processed_games WHERE season = $1`, season); err != nil {
		return fmt.Errorf("failed to delete processed games: %w", err)
	}
	return nil
}
