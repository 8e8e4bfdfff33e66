package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ncaam_stats/pipeline/internal/models"
)

// RatingsRepository handles derived-ratings database operations. Ratings are
// recomputed in full every run, so writes replace the season wholesale
// instead of patching rows.
type RatingsRepository struct {
	db *Database
}

// ReplaceTeamRows replaces every team ratings row for a season within tx.
func (r *RatingsRepository) ReplaceTeamRows(ctx context.Context, tx pgx.Tx, season int, rows []models.RatingsRow) error {
	if _, err := tx.Exec(ctx, `DELETE FROM team_ratings WHERE season = $1`, season); err != nil {
		return fmt.Errorf("failed to clear team ratings: %w", err)
	}

	query := `
		INSERT INTO team_ratings (
			season, team_id, name, conference, games, wins, losses,
			adj_o, adj_d, adj_em, adj_t,
			off_efg_pct, off_tov_pct, off_orb_pct, off_ft_rate,
			off_two_pct, off_three_pct, off_ft_pct, off_three_pa_rate,
			off_assist_rate, off_steal_rate, off_block_rate,
			def_efg_pct, def_tov_pct, def_orb_pct, def_ft_rate,
			def_two_pct, def_three_pct, def_ft_pct, def_three_pa_rate,
			def_assist_rate, def_steal_rate, def_block_rate
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22,
			$23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33
		)
	`

	for i := range rows {
		row := &rows[i]
		_, err := tx.Exec(
			ctx, query,
			season, row.TeamID, row.Name, row.Conference, row.Games, row.Wins, row.Losses,
			row.AdjO, row.AdjD, row.AdjEM, row.AdjT,
			row.Offense.EFGPct, row.Offense.TOVPct, row.Offense.ORBPct, row.Offense.FTRate,
			row.Offense.TwoPct, row.Offense.ThreePct, row.Offense.FTPct, row.Offense.ThreePARate,
			row.Offense.AssistRate, row.Offense.StealRate, row.Offense.BlockRate,
			row.Defense.EFGPct, row.Defense.TOVPct, row.Defense.ORBPct, row.Defense.FTRate,
			row.Defense.TwoPct, row.Defense.ThreePct, row.Defense.FTPct, row.Defense.ThreePARate,
			row.Defense.AssistRate, row.Defense.StealRate, row.Defense.BlockRate,
		)
		if err != nil {
			return fmt.Errorf("failed to insert team ratings for %s: %w", row.TeamID, err)
		}
	}

	return nil
}

// ReplacePlayerRows replaces every player ratings row for a season within tx.
// Unavailable ratings are stored with a false available flag rather than
// omitted, so the serving layer can distinguish "no rating" from "missing".
func (r *RatingsRepository) ReplacePlayerRows(ctx context.Context, tx pgx.Tx, season int, rows []models.PlayerRating) error {
	if _, err := tx.Exec(ctx, `DELETE FROM player_ratings WHERE season = $1`, season); err != nil {
		return fmt.Errorf("failed to clear player ratings: %w", err)
	}

	query := `
		INSERT INTO player_ratings (
			season, player_id, team_id, name, ortg, poss_used, pts_produced, available
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for i := range rows {
		row := &rows[i]
		_, err := tx.Exec(
			ctx, query,
			season, row.PlayerID, row.TeamID, row.Name,
			row.ORtg, row.PossUsed, row.PtsProd, row.Available,
		)
		if err != nil {
			return fmt.Errorf("failed to insert player ratings for %s: %w", row.PlayerID, err)
		}
	}

	return nil
}

// ListTeamRows retrieves the stored team ratings for a season.
func (r *RatingsRepository) ListTeamRows(ctx context.Context, season int) ([]models.RatingsRow, error) {
	query := `
		SELECT team_id, name, conference, games, wins, losses,
		       adj_o, adj_d, adj_em, adj_t,
		       off_efg_pct, off_tov_pct, off_orb_pct, off_ft_rate,
		       off_two_pct, off_three_pct, off_ft_pct, off_three_pa_rate,
		       off_assist_rate, off_steal_rate, off_block_rate,
		       def_efg_pct, def_tov_pct, def_orb_pct, def_ft_rate,
		       def_two_pct, def_three_pct, def_ft_pct, def_three_pa_rate,
		       def_assist_rate, def_steal_rate, def_block_rate
		FROM team_ratings
		WHERE season = $1
		ORDER BY adj_em DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list team ratings: %w", err)
	}
	defer rows.Close()

	var out []models.RatingsRow
	for rows.Next() {
		var row models.RatingsRow
		err := rows.Scan(
			&row.TeamID, &row.Name, &row.Conference, &row.Games, &row.Wins, &row.Losses,
			&row.AdjO, &row.AdjD, &row.AdjEM, &row.AdjT,
			&row.Offense.EFGPct, &row.Offense.TOVPct, &row.Offense.ORBPct, &row.Offense.FTRate,
			&row.Offense.TwoPct, &row.Offense.ThreePct, &row.Offense.FTPct, &row.Offense.ThreePARate,
			&row.Offense.AssistRate, &row.Offense.StealRate, &row.Offense.BlockRate,
			&row.Defense.EFGPct, &row.Defense.TOVPct, &row.Defense.ORBPct, &row.Defense.FTRate,
			&row.Defense.TwoPct, &row.Defense.ThreePct, &row.Defense.FTPct, &row.Defense.ThreePARate,
			&row.Defense.AssistRate, &row.Defense.StealRate, &row.Defense.BlockRate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team ratings: %w", err)
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team ratings: %w", err)
	}

	return out, nil
}
