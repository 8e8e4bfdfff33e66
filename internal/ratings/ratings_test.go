package ratings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam_stats/pipeline/internal/models"
)

func TestPossessionsEstimate(t *testing.T) {
	line := models.BoxScoreLine{FGA: 60, ORB: 10, TOV: 12, FTA: 20}
	assert.InDelta(t, 71.5, Possessions(line), 0.0001)
}

func TestPossessionsFlooredAtOne(t *testing.T) {
	assert.Equal(t, 1.0, Possessions(models.BoxScoreLine{}))
	assert.Equal(t, 1.0, Possessions(models.BoxScoreLine{FGA: 2, ORB: 10}))
}

func TestTeamRowWorkedExample(t *testing.T) {
	// Single game: home scores 70 on 25/60 FG (5/15 3P), 15/20 FT, 10 ORB,
	// 12 TOV; away scores 65 on 24/58 FG (6/18 3P), 11/15 FT, 8 ORB, 14 TOV.
	team := &models.TeamSeasonTotals{
		TeamID: "A", Games: 1, Wins: 1,
		Own: models.BoxScoreLine{Points: 70, FGM: 25, FGA: 60, ThreePM: 5, ThreePA: 15,
			FTM: 15, FTA: 20, ORB: 10, TRB: 34, TOV: 12},
		Opp: models.BoxScoreLine{Points: 65, FGM: 24, FGA: 58, ThreePM: 6, ThreePA: 18,
			FTM: 11, FTA: 15, ORB: 8, TRB: 30, TOV: 14},
	}

	row := TeamRow(team)
	assert.InDelta(t, 97.9, row.AdjO, 0.05)
	assert.InDelta(t, 45.8, row.Offense.EFGPct, 0.05)
	assert.InDelta(t, 71.5, row.AdjT, 0.0001)
	assert.InDelta(t, row.AdjO-row.AdjD, row.AdjEM, 0.0001)
}

func TestFourFactorsDefensiveMirror(t *testing.T) {
	team := &models.TeamSeasonTotals{
		TeamID: "A", Games: 1,
		Own: models.BoxScoreLine{Points: 70, FGM: 25, FGA: 60, ThreePM: 5, ThreePA: 15,
			FTM: 15, FTA: 20, ORB: 10, TRB: 34, TOV: 12, AST: 14, STL: 6, BLK: 3},
		Opp: models.BoxScoreLine{Points: 65, FGM: 24, FGA: 58, ThreePM: 6, ThreePA: 18,
			FTM: 11, FTA: 15, ORB: 8, TRB: 30, TOV: 14, AST: 12, STL: 5, BLK: 2},
	}
	opponent := &models.TeamSeasonTotals{TeamID: "B", Games: 1, Own: team.Opp, Opp: team.Own}

	// A's defensive factors are exactly B's offensive factors.
	a, b := TeamRow(team), TeamRow(opponent)
	assert.Equal(t, b.Offense, a.Defense)
	assert.Equal(t, b.Defense, a.Offense)
}

func TestFourFactorsZeroDenominators(t *testing.T) {
	row := TeamRow(&models.TeamSeasonTotals{TeamID: "A"})

	assert.Equal(t, 0.0, row.Offense.EFGPct)
	assert.Equal(t, 0.0, row.Offense.ORBPct)
	assert.Equal(t, 0.0, row.Offense.FTRate)
	assert.Equal(t, 0.0, row.Offense.AssistRate)
	assert.Equal(t, 0.0, row.AdjT)
	assert.False(t, math.IsNaN(row.AdjO))
	assert.False(t, math.IsInf(row.AdjO, 0))
}

func teamTotalsForOliver() *models.TeamSeasonTotals {
	return &models.TeamSeasonTotals{
		TeamID: "A", Games: 30,
		Own: models.BoxScoreLine{Points: 2250, FGM: 810, FGA: 1800, ThreePM: 210, ThreePA: 630,
			FTM: 420, FTA: 600, ORB: 330, TRB: 1080, AST: 450, TOV: 390, Minutes: 6000},
		Opp: models.BoxScoreLine{Points: 2100, FGM: 780, FGA: 1760, ThreePM: 180, ThreePA: 560,
			FTM: 360, FTA: 520, ORB: 300, TRB: 1020, AST: 400, TOV: 420, Minutes: 6000},
	}
}

func TestPlayerOffensiveRatingPlausibleRange(t *testing.T) {
	player := &models.PlayerSeasonTotals{
		PlayerID: "A:p1", TeamID: "A", Name: "Alia Carter", Games: 30,
		Line: models.BoxScoreLine{Points: 450, FGM: 160, FGA: 360, ThreePM: 40, ThreePA: 120,
			FTM: 90, FTA: 120, ORB: 60, TRB: 180, AST: 90, TOV: 70, Minutes: 900},
	}

	r := PlayerOffensiveRating(player, teamTotalsForOliver())
	require.True(t, r.Available)
	assert.Greater(t, r.ORtg, 60.0)
	assert.Less(t, r.ORtg, 160.0)
	assert.Greater(t, r.PossUsed, 0.0)
	assert.Greater(t, r.PtsProd, 0.0)
	assert.False(t, math.IsNaN(r.ORtg))
}

func TestPlayerOffensiveRatingUnavailableWithoutAttempts(t *testing.T) {
	player := &models.PlayerSeasonTotals{
		PlayerID: "A:p2", TeamID: "A", Name: "Bench Only", Games: 4,
		Line: models.BoxScoreLine{TRB: 3, STL: 1, Minutes: 12},
	}

	r := PlayerOffensiveRating(player, teamTotalsForOliver())
	assert.False(t, r.Available)
	assert.Equal(t, 0.0, r.ORtg)
}

func TestPlayerOffensiveRatingGuardsZeroTeamTotals(t *testing.T) {
	// First run of a season can see a player with attempts while the rest of
	// the team totals are still tiny. Must never emit NaN or Inf.
	player := &models.PlayerSeasonTotals{
		PlayerID: "A:p3", TeamID: "A", Name: "Solo", Games: 1,
		Line: models.BoxScoreLine{Points: 8, FGM: 3, FGA: 9, FTM: 2, FTA: 2, Minutes: 20},
	}
	team := &models.TeamSeasonTotals{
		TeamID: "A", Games: 1,
		Own: models.BoxScoreLine{Points: 8, FGM: 3, FGA: 9, FTM: 2, FTA: 2, Minutes: 200},
	}

	r := PlayerOffensiveRating(player, team)
	assert.False(t, math.IsNaN(r.ORtg))
	assert.False(t, math.IsInf(r.ORtg, 0))
	assert.False(t, math.IsNaN(r.PossUsed))
}

func TestRankDescendingWithTies(t *testing.T) {
	values := []float64{110.5, 98.2, 110.5004, 103.7}

	// 110.5 and 110.5004 are within tolerance and share rank 1.
	assert.Equal(t, []int{1, 4, 1, 3}, Rank(values, true))
}

func TestRankAscending(t *testing.T) {
	values := []float64{15.2, 22.1, 18.0}
	assert.Equal(t, []int{1, 3, 2}, Rank(values, false))
}

func TestValidateRowFlagsImplausibleValues(t *testing.T) {
	good := TeamRow(&models.TeamSeasonTotals{
		TeamID: "A", Games: 10, Wins: 6, Losses: 4,
		Own: models.BoxScoreLine{Points: 700, FGM: 250, FGA: 600, ThreePM: 50, ThreePA: 150,
			FTM: 150, FTA: 200, ORB: 100, TRB: 340, TOV: 120},
		Opp: models.BoxScoreLine{Points: 650, FGM: 240, FGA: 580, ThreePM: 60, ThreePA: 180,
			FTM: 110, FTA: 150, ORB: 80, TRB: 300, TOV: 140},
	})
	assert.Empty(t, ValidateRow(good))

	bad := good
	bad.AdjO = 400
	bad.Wins = 20
	problems := ValidateRow(bad)
	assert.Len(t, problems, 2)
}
