package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ncaam_stats/pipeline/internal/models"
)

// TotalsRepository handles team and player season-total database operations
type TotalsRepository struct {
	db *Database
}

// UpsertTeam inserts or updates one team's season totals within tx.
func (r *TotalsRepository) UpsertTeam(ctx context.Context, tx pgx.Tx, season int, t *models.TeamSeasonTotals) error {
	query := `
		INSERT INTO team_season_totals (
			season, team_id, name, conference, games, wins, losses,
			own_points, own_fgm, own_fga, own_three_pm, own_three_pa,
			own_ftm, own_fta, own_orb, own_trb, own_ast, own_stl, own_blk, own_tov, own_pf, own_minutes,
			opp_points, opp_fgm, opp_fga, opp_three_pm, opp_three_pa,
			opp_ftm, opp_fta, opp_orb, opp_trb, opp_ast, opp_stl, opp_blk, opp_tov, opp_pf, opp_minutes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22,
			$23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37
		)
		ON CONFLICT (season, team_id) DO UPDATE SET
			name = EXCLUDED.name,
			conference = EXCLUDED.conference,
			games = EXCLUDED.games,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			own_points = EXCLUDED.own_points,
			own_fgm = EXCLUDED.own_fgm,
			own_fga = EXCLUDED.own_fga,
			own_three_pm = EXCLUDED.own_three_pm,
			own_three_pa = EXCLUDED.own_three_pa,
			own_ftm = EXCLUDED.own_ftm,
			own_fta = EXCLUDED.own_fta,
			own_orb = EXCLUDED.own_orb,
			own_trb = EXCLUDED.own_trb,
			own_ast = EXCLUDED.own_ast,
			own_stl = EXCLUDED.own_stl,
			own_blk = EXCLUDED.own_blk,
			own_tov = EXCLUDED.own_tov,
			own_pf = EXCLUDED.own_pf,
			own_minutes = EXCLUDED.own_minutes,
			opp_points = EXCLUDED.opp_points,
			opp_fgm = EXCLUDED.opp_fgm,
			opp_fga = EXCLUDED.opp_fga,
			opp_three_pm = EXCLUDED.opp_three_pm,
			opp_three_pa = EXCLUDED.opp_three_pa,
			opp_ftm = EXCLUDED.opp_ftm,
			opp_fta = EXCLUDED.opp_fta,
			opp_orb = EXCLUDED.opp_orb,
			opp_trb = EXCLUDED.opp_trb,
			opp_ast = EXCLUDED.opp_ast,
			opp_stl = EXCLUDED.opp_stl,
			opp_blk = EXCLUDED.opp_blk,
			opp_tov = EXCLUDED.opp_tov,
			opp_pf = EXCLUDED.opp_pf,
			opp_minutes = EXCLUDED.opp_minutes,
			updated_at = NOW()
	`

	_, err := tx.Exec(
		ctx, query,
		season, t.TeamID, t.Name, t.Conference, t.Games, t.Wins, t.Losses,
		t.Own.Points, t.Own.FGM, t.Own.FGA, t.Own.ThreePM, t.Own.ThreePA,
		t.Own.FTM, t.Own.FTA, t.Own.ORB, t.Own.TRB, t.Own.AST, t.Own.STL, t.Own.BLK, t.Own.TOV, t.Own.PF, t.Own.Minutes,
		t.Opp.Points, t.Opp.FGM, t.Opp.FGA, t.Opp.ThreePM, t.Opp.ThreePA,
		t.Opp.FTM, t.Opp.FTA, t.Opp.ORB, t.Opp.TRB, t.Opp.AST, t.Opp.STL, t.Opp.BLK, t.Opp.TOV, t.Opp.PF, t.Opp.Minutes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team season totals: %w", err)
	}

	return nil
}

// UpsertPlayer inserts or updates one player's season totals within tx.
func (r *TotalsRepository) UpsertPlayer(ctx context.Context, tx pgx.Tx, season int, p *models.PlayerSeasonTotals) error {
	query := `
		INSERT INTO player_season_totals (
			season, player_id, team_id, name, games, starts,
			points, fgm, fga, three_pm, three_pa, ftm, fta,
			orb, trb, ast, stl, blk, tov, pf, minutes
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21
		)
		ON CONFLICT (season, player_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			name = EXCLUDED.name,
			games = EXCLUDED.games,
			starts = EXCLUDED.starts,
			points = EXCLUDED.points,
			fgm = EXCLUDED.fgm,
			fga = EXCLUDED.fga,
			three_pm = EXCLUDED.three_pm,
			three_pa = EXCLUDED.three_pa,
			ftm = EXCLUDED.ftm,
			fta = EXCLUDED.fta,
			orb = EXCLUDED.orb,
			trb = EXCLUDED.trb,
			ast = EXCLUDED.ast,
			stl = EXCLUDED.stl,
			blk = EXCLUDED.blk,
			tov = EXCLUDED.tov,
			pf = EXCLUDED.pf,
			minutes = EXCLUDED.minutes,
			updated_at = NOW()
	`

	_, err := tx.Exec(
		ctx, query,
		season, p.PlayerID, p.TeamID, p.Name, p.Games, p.Starts,
		p.Line.Points, p.Line.FGM, p.Line.FGA, p.Line.ThreePM, p.Line.ThreePA, p.Line.FTM, p.Line.FTA,
		p.Line.ORB, p.Line.TRB, p.Line.AST, p.Line.STL, p.Line.BLK, p.Line.TOV, p.Line.PF, p.Line.Minutes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player season totals: %w", err)
	}

	return nil
}

// GetTeam retrieves one team's season totals.
func (r *TotalsRepository) GetTeam(ctx context.Context, season int, teamID string) (*models.TeamSeasonTotals, error) {
	query := `
		SELECT team_id, name, conference, games, wins, losses,
		       own_points, own_fgm, own_fga, own_three_pm, own_three_pa,
		       own_ftm, own_fta, own_orb, own_trb, own_ast, own_stl, own_blk, own_tov, own_pf, own_minutes,
		       opp_points, opp_fgm, opp_fga, opp_three_pm, opp_three_pa,
		       opp_ftm, opp_fta, opp_orb, opp_trb, opp_ast, opp_stl, opp_blk, opp_tov, opp_pf, opp_minutes
		FROM team_season_totals
		WHERE season = $1 AND team_id = $2
	`

	var t models.TeamSeasonTotals
	err := r.db.Pool.QueryRow(ctx, query, season, teamID).Scan(
		&t.TeamID, &t.Name, &t.Conference, &t.Games, &t.Wins, &t.Losses,
		&t.Own.Points, &t.Own.FGM, &t.Own.FGA, &t.Own.ThreePM, &t.Own.ThreePA,
		&t.Own.FTM, &t.Own.FTA, &t.Own.ORB, &t.Own.TRB, &t.Own.AST, &t.Own.STL, &t.Own.BLK, &t.Own.TOV, &t.Own.PF, &t.Own.Minutes,
		&t.Opp.Points, &t.Opp.FGM, &t.Opp.FGA, &t.Opp.ThreePM, &t.Opp.ThreePA,
		&t.Opp.FTM, &t.Opp.FTA, &t.Opp.ORB, &t.Opp.TRB, &t.Opp.AST, &t.Opp.STL, &t.Opp.BLK, &t.Opp.TOV, &t.Opp.PF, &t.Opp.Minutes,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team totals not found: season=%d team_id=%s", season, teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team totals: %w", err)
	}

	return &t, nil
}

// ListTeams retrieves every team's season totals for a season.
func (r *TotalsRepository) ListTeams(ctx context.Context, season int) ([]*models.TeamSeasonTotals, error) {
	query := `
		SELECT team_id, name, conference, games, wins, losses,
		       own_points, own_fgm, own_fga, own_three_pm, own_three_pa,
		       own_ftm, own_fta, own_orb, own_trb, own_ast, own_stl, own_blk, own_tov, own_pf, own_minutes,
		       opp_points, opp_fgm, opp_fga, opp_three_pm, opp_three_pa,
		       opp_ftm, opp_fta, opp_orb, opp_trb, opp_ast, opp_stl, opp_blk, opp_tov, opp_pf, opp_minutes
		FROM team_season_totals
		WHERE season = $1
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list team totals: %w", err)
	}
	defer rows.Close()

	var teams []*models.TeamSeasonTotals
	for rows.Next() {
		var t models.TeamSeasonTotals
		err := rows.Scan(
			&t.TeamID, &t.Name, &t.Conference, &t.Games, &t.Wins, &t.Losses,
			&t.Own.Points, &t.Own.FGM, &t.Own.FGA, &t.Own.ThreePM, &t.Own.ThreePA,
			&t.Own.FTM, &t.Own.FTA, &t.Own.ORB, &t.Own.TRB, &t.Own.AST, &t.Own.STL, &t.Own.BLK, &t.Own.TOV, &t.Own.PF, &t.Own.Minutes,
			&t.Opp.Points, &t.Opp.FGM, &t.Opp.FGA, &t.Opp.ThreePM, &t.Opp.ThreePA,
			&t.Opp.FTM, &t.Opp.FTA, &t.Opp.ORB, &t.Opp.TRB, &t.Opp.AST, &t.Opp.STL, &t.Opp.BLK, &t.Opp.TOV, &t.Opp.PF, &t.Opp.Minutes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team totals: %w", err)
		}
		teams = append(teams, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team totals: %w", err)
	}

	return teams, nil
}

// ListPlayers retrieves every player's season totals for a season.
func (r *TotalsRepository) ListPlayers(ctx context.Context, season int) ([]*models.PlayerSeasonTotals, error) {
	query := `
		SELECT player_id, team_id, name, games, starts,
		       points, fgm, fga, three_pm, three_pa, ftm, fta,
		       orb, trb, ast, stl, blk, tov, pf, minutes
		FROM player_season_totals
		WHERE season = $1
		ORDER BY name
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list player totals: %w", err)
	}
	defer rows.Close()

	var players []*models.PlayerSeasonTotals
	for rows.Next() {
		var p models.PlayerSeasonTotals
		err := rows.Scan(
			&p.PlayerID, &p.TeamID, &p.Name, &p.Games, &p.Starts,
			&p.Line.Points, &p.Line.FGM, &p.Line.FGA, &p.Line.ThreePM, &p.Line.ThreePA, &p.Line.FTM, &p.Line.FTA,
			&p.Line.ORB, &p.Line.TRB, &p.Line.AST, &p.Line.STL, &p.Line.BLK, &p.Line.TOV, &p.Line.PF, &p.Line.Minutes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player totals: %w", err)
		}
		players = append(players, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player totals: %w", err)
	}

	return players, nil
}

// CountTeams returns the number of team rows stored for a season.
func (r *TotalsRepository) CountTeams(ctx context.Context, season int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM team_season_totals WHERE season = $1`, season).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count team totals: %w", err)
	}
	return count, nil
}

// DeleteSeason removes every team and player totals row for a season, used by
// full rebuilds before re-aggregating from day one.
func (r *TotalsRepository) DeleteSeason(ctx context.Context, tx pgx.Tx, season int) error {
	if _, err := tx.Exec(ctx, `DELETE FROM player_season_totals WHERE season = $1`, season); err != nil {
		return fmt.Errorf("failed to delete player totals: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM team_season_totals WHERE season = $1`, season); err != nil {
		return fmt.Errorf("failed to delete team totals: %w", err)
	}
	return nil
}
