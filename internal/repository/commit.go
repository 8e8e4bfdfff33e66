package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"ncaam_stats/pipeline/internal/models"
)

// RunOutput is everything a successful run writes. The season totals and
// derived ratings land together with the processed-game history in a single
// transaction: either the whole run commits or none of it does, so the store
// can never hold totals whose games are missing from the dedup cache.
type RunOutput struct {
	Season        int
	FullRebuild   bool
	Teams         []*models.TeamSeasonTotals
	Players       []*models.PlayerSeasonTotals
	NewGames      []*models.GameRecord
	TeamRatings   []models.RatingsRow
	PlayerRatings []models.PlayerRating
}

// CommitRun persists a run's output atomically.
func (db *Database) CommitRun(ctx context.Context, out *RunOutput) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin run transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if out.FullRebuild {
		if err := db.Totals.DeleteSeason(ctx, tx, out.Season); err != nil {
			return err
		}
		if err := db.Games.DeleteSeason(ctx, tx, out.Season); err != nil {
			return err
		}
	}

	for _, team := range out.Teams {
		if err := db.Totals.UpsertTeam(ctx, tx, out.Season, team); err != nil {
			return err
		}
	}
	for _, player := range out.Players {
		if err := db.Totals.UpsertPlayer(ctx, tx, out.Season, player); err != nil {
			return err
		}
	}
	for _, rec := range out.NewGames {
		if err := db.Games.Insert(ctx, tx, out.Season, rec); err != nil {
			return err
		}
	}

	if err := db.Ratings.ReplaceTeamRows(ctx, tx, out.Season, out.TeamRatings); err != nil {
		return err
	}
	if err := db.Ratings.ReplacePlayerRows(ctx, tx, out.Season, out.PlayerRatings); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run transaction: %w", err)
	}

	log.Info().
		Int("season", out.Season).
		Int("teams", len(out.Teams)).
		Int("players", len(out.Players)).
		Int("new_games", len(out.NewGames)).
		Bool("full_rebuild", out.FullRebuild).
		Msg("Run output committed")

	return nil
}
