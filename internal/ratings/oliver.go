package ratings

import (
	"ncaam_stats/pipeline/internal/models"
)

// PlayerOffensiveRating computes a player's individual offensive rating from
// the player's and their team's season totals, following Dean Oliver's
// possession model: scoring possessions built from field-goal, assist,
// free-throw, and offensive-rebound credit, missed-shot and missed-free-throw
// possessions, and points produced, combined as 100 x points produced per
// possession used.
//
// The formula divides by many quantities that are legitimately zero early in
// a season (a player's FTA, the rest of the team's field goals, total team
// minutes), so every sub-term is guarded and collapses to zero instead of
// propagating NaN. A player with no field-goal and no free-throw attempts has
// no meaningful rating at all and is reported as unavailable.
func PlayerOffensiveRating(p *models.PlayerSeasonTotals, team *models.TeamSeasonTotals) models.PlayerRating {
	rating := models.PlayerRating{
		PlayerID: p.PlayerID,
		TeamID:   p.TeamID,
		Name:     p.Name,
	}
	if p.Line.FGA == 0 && p.Line.FTA == 0 {
		return rating
	}

	var (
		mp   = p.Line.Minutes
		pts  = float64(p.Line.Points)
		fgm  = float64(p.Line.FGM)
		fga  = float64(p.Line.FGA)
		tpm  = float64(p.Line.ThreePM)
		ftm  = float64(p.Line.FTM)
		fta  = float64(p.Line.FTA)
		orb  = float64(p.Line.ORB)
		ast  = float64(p.Line.AST)
		tov  = float64(p.Line.TOV)
		tMP  = team.Own.Minutes
		tPts = float64(team.Own.Points)
		tFGM = float64(team.Own.FGM)
		tFGA = float64(team.Own.FGA)
		tTPM = float64(team.Own.ThreePM)
		tFTM = float64(team.Own.FTM)
		tFTA = float64(team.Own.FTA)
		tORB = float64(team.Own.ORB)
		tAST = float64(team.Own.AST)
		tTOV = float64(team.Own.TOV)
		oDRB = float64(team.Opp.DRB())
	)

	// Share of teammate field goals the player is on the floor for, used to
	// estimate how many of the player's makes were assisted.
	floorShare := safeDiv(mp, tMP/5)
	qAST := floorShare*(1.14*safeDiv(tAST-ast, tFGM)) +
		(1-floorShare)*safeDiv(safeDiv(tAST, tMP)*mp*5-ast, safeDiv(tFGM, tMP)*mp*5-fgm)

	fgPart := fgm * (1 - 0.5*safeDiv(pts-ftm, 2*fga)*qAST)
	astPart := 0.5 * safeDiv((tPts-tFTM)-(pts-ftm), 2*(tFGA-fga)) * ast
	ftPart := (1 - sq(1-safeDiv(ftm, fta))) * 0.4 * fta

	teamScPoss := tFGM + (1-sq(1-safeDiv(tFTM, tFTA)))*tFTA*0.4
	teamORBPct := safeDiv(tORB, tORB+oDRB)
	teamPlayPct := safeDiv(teamScPoss, tFGA+tFTA*0.4+tTOV)
	orbWeight := safeDiv((1-teamORBPct)*teamPlayPct,
		(1-teamORBPct)*teamPlayPct+teamORBPct*(1-teamPlayPct))
	orbPart := orb * orbWeight * teamPlayPct

	scPossShared := 1 - safeDiv(tORB, teamScPoss)*orbWeight*teamPlayPct
	scPoss := (fgPart+astPart+ftPart)*scPossShared + orbPart

	fgxPoss := (fga - fgm) * (1 - 1.07*teamORBPct)
	ftxPoss := sq(1-safeDiv(ftm, fta)) * 0.4 * fta
	totPoss := scPoss + fgxPoss + ftxPoss + tov

	pProdFG := 2 * (fgm + 0.5*tpm) * (1 - 0.5*safeDiv(pts-ftm, 2*fga)*qAST)
	pProdAST := 2 * safeDiv(tFGM-fgm+0.5*(tTPM-tpm), tFGM-fgm) *
		0.5 * safeDiv((tPts-tFTM)-(pts-ftm), 2*(tFGA-fga)) * ast
	pProdORB := orb * orbWeight * teamPlayPct *
		safeDiv(tPts, tFGM+(1-sq(1-safeDiv(tFTM, tFTA)))*0.4*tFTA)
	pProd := (pProdFG+pProdAST+ftm)*scPossShared + pProdORB

	if totPoss <= 0 {
		return rating
	}

	rating.Available = true
	rating.PossUsed = totPoss
	rating.PtsProd = pProd
	rating.ORtg = 100 * pProd / totPoss
	return rating
}

func sq(x float64) float64 { return x * x }
