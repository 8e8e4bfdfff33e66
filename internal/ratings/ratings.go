// Package ratings derives per-100-possession efficiency metrics from season
// totals. Everything here is recomputed in full from TeamSeasonTotals on each
// run; nothing is incrementally patched. All ratios are raw, not opponent
// adjusted.
package ratings

import (
	"ncaam_stats/pipeline/internal/models"
)

// Possessions estimates offensive possessions from a box-score line using the
// standard approximation, floored at 1 so incomplete data can never produce a
// zero denominator downstream.
func Possessions(l models.BoxScoreLine) float64 {
	poss := float64(l.FGA) - float64(l.ORB) + float64(l.TOV) + 0.475*float64(l.FTA)
	if poss < 1 {
		return 1
	}
	return poss
}

// TeamRow computes a team's full derived ratings row from its season totals.
func TeamRow(t *models.TeamSeasonTotals) models.RatingsRow {
	offPoss := Possessions(t.Own)
	defPoss := Possessions(t.Opp)

	row := models.RatingsRow{
		TeamID:     t.TeamID,
		Name:       t.Name,
		Conference: t.Conference,
		Games:      t.Games,
		Wins:       t.Wins,
		Losses:     t.Losses,
		AdjO:       100 * float64(t.Own.Points) / offPoss,
		AdjD:       100 * float64(t.Opp.Points) / defPoss,
		Offense:    factors(t.Own, t.Opp),
		Defense:    factors(t.Opp, t.Own),
	}
	row.AdjEM = row.AdjO - row.AdjD
	if t.Games > 0 {
		row.AdjT = offPoss / float64(t.Games)
	}
	return row
}

// factors computes the four-factor breakdown for the side holding the ball
// (own); the same function with the arguments swapped yields the defensive
// mirror.
func factors(own, opp models.BoxScoreLine) models.FourFactors {
	return models.FourFactors{
		EFGPct:      pct(float64(own.FGM)+0.5*float64(own.ThreePM), float64(own.FGA)),
		TOVPct:      pct(float64(own.TOV), Possessions(own)),
		ORBPct:      pct(float64(own.ORB), float64(own.ORB+opp.DRB())),
		FTRate:      pct(float64(own.FTA), float64(own.FGA)),
		TwoPct:      pct(float64(own.TwoPM()), float64(own.TwoPA())),
		ThreePct:    pct(float64(own.ThreePM), float64(own.ThreePA)),
		FTPct:       pct(float64(own.FTM), float64(own.FTA)),
		ThreePARate: pct(float64(own.ThreePA), float64(own.FGA)),
		AssistRate:  pct(float64(own.AST), float64(own.FGM)),
		StealRate:   pct(float64(opp.STL), Possessions(own)),
		BlockRate:   pct(float64(opp.BLK), float64(own.TwoPA())),
	}
}

// pct is num/den scaled to 0-100, or 0 when the denominator is 0.
func pct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return 100 * num / den
}

// safeDiv is num/den, or 0 when the denominator is 0.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
