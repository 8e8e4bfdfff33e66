// Package extract turns a raw per-game feed payload into a canonical
// GameRecord, or nil when the payload is unparseable. The feed nests the real
// team totals at an unpredictable depth and scatters partial duplicates
// elsewhere in the document, so extraction collects every plausible stat
// object and picks the best candidate per team instead of trusting any fixed
// location.
package extract

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam_stats/pipeline/internal/jsontree"
	"ncaam_stats/pipeline/internal/models"
)

// Ordered alias tables for every numeric field. The upstream has used
// several spellings historically; first present key wins.
var (
	teamIDKeys  = []string{"teamId", "teamID", "id", "ncaaOrgId", "orgId"}
	pointsKeys  = []string{"points", "pts", "totalPoints", "score"}
	fgmKeys     = []string{"fieldGoalsMade", "fgm", "fgMade"}
	fgaKeys     = []string{"fieldGoalsAttempted", "fga", "fgAttempted"}
	threePMKeys = []string{"threePointsMade", "threePointFieldGoalsMade", "threesMade", "tpm"}
	threePAKeys = []string{"threePointsAttempted", "threePointFieldGoalsAttempted", "threesAttempted", "tpa"}
	ftmKeys     = []string{"freeThrowsMade", "ftm"}
	ftaKeys     = []string{"freeThrowsAttempted", "fta"}
	orbKeys     = []string{"offensiveRebounds", "offReb", "oreb", "orb"}
	trbKeys     = []string{"totalRebounds", "rebounds", "reb", "trb"}
	astKeys     = []string{"assists", "ast"}
	stlKeys     = []string{"steals", "stl"}
	blkKeys     = []string{"blockedShots", "blocks", "blk"}
	tovKeys     = []string{"turnovers", "tov", "to"}
	pfKeys      = []string{"personalFouls", "fouls", "pf"}
	minutesKeys = []string{"minutesPlayed", "minutes", "min", "mp"}

	playerListKeys = []string{"playerStats", "players", "playerTotals"}
	playerIDKeys   = []string{"playerId", "playerID", "personId", "id"}
)

// Game extracts one GameRecord from a raw box-score payload. Returns nil when
// either side's statistics cannot be located; a malformed game fails
// extraction wholesale rather than being partially merged.
func Game(payload any, gameID string, date time.Time) *models.GameRecord {
	home, away, ok := locateTeams(payload)
	if !ok {
		log.Debug().Str("game_id", gameID).Msg("Could not locate two team entries in payload")
		return nil
	}

	homeBox, ok := selectTeamLine(payload, home.TeamID)
	if !ok {
		log.Debug().Str("game_id", gameID).Str("team_id", home.TeamID).Msg("No plausible stat candidate for home side")
		return nil
	}
	awayBox, ok := selectTeamLine(payload, away.TeamID)
	if !ok {
		log.Debug().Str("game_id", gameID).Str("team_id", away.TeamID).Msg("No plausible stat candidate for away side")
		return nil
	}

	rec := &models.GameRecord{
		GameID:   gameID,
		Date:     date,
		HomeTeam: home,
		AwayTeam: away,
		HomeBox:  homeBox,
		AwayBox:  awayBox,
		Players:  extractPlayers(payload, home.TeamID, away.TeamID),
	}
	if home.Conference != "" && home.Conference == away.Conference {
		rec.ConferenceGame = true
	}
	return rec
}

// locateTeams finds the home and away team-metadata entries. Known container
// paths are scanned first; failing that, any array of at least two objects
// that each carry a team identifier is accepted.
func locateTeams(payload any) (home, away models.TeamMeta, ok bool) {
	entries := teamEntriesFromKnownPaths(payload)
	if len(entries) < 2 {
		entries = teamEntriesFromWalk(payload)
	}
	if len(entries) < 2 {
		return home, away, false
	}

	var haveHome, haveAway bool
	for _, obj := range entries {
		meta := teamMeta(obj)
		if isHomeEntry(obj) {
			if !haveHome {
				home, haveHome = meta, true
			}
		} else if !haveAway {
			away, haveAway = meta, true
		}
	}

	// Feeds without a home/away marker: positional fallback, first listed is
	// home.
	if !haveHome {
		home, haveHome = teamMeta(entries[0]), true
		away, haveAway = teamMeta(entries[1]), true
	}
	if !haveAway {
		for _, obj := range entries {
			if meta := teamMeta(obj); meta.TeamID != home.TeamID {
				away, haveAway = meta, true
				break
			}
		}
	}

	ok = haveHome && haveAway && home.TeamID != "" && away.TeamID != "" && home.TeamID != away.TeamID
	return home, away, ok
}

func teamEntriesFromKnownPaths(payload any) []map[string]any {
	root, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	for _, container := range []any{root["meta"], root} {
		obj, ok := container.(map[string]any)
		if !ok {
			continue
		}
		if teams, ok := obj["teams"].([]any); ok {
			var out []map[string]any
			for _, t := range teams {
				if entry, ok := t.(map[string]any); ok && jsontree.String(entry, teamIDKeys...) != "" {
					out = append(out, entry)
				}
			}
			if len(out) >= 2 {
				return out
			}
		}
	}
	return nil
}

func teamEntriesFromWalk(payload any) []map[string]any {
	var found []map[string]any
	jsontree.WalkOrdered(payload, func(node any) {
		if found != nil {
			return
		}
		arr, ok := node.([]any)
		if !ok || len(arr) < 2 {
			return
		}
		// Metadata entries carry a name or home/away marker; this keeps a
		// stats array whose rows also carry team ids from shadowing them.
		named := false
		var entries []map[string]any
		for _, item := range arr {
			obj, ok := item.(map[string]any)
			if !ok || jsontree.String(obj, teamIDKeys...) == "" {
				return
			}
			if jsontree.String(obj, "shortName", "nameShort", "name", "seoName") != "" ||
				jsontree.Has(obj, "homeTeam", "isHome", "homeAway", "side") {
				named = true
			}
			entries = append(entries, obj)
		}
		if named {
			found = entries
		}
	})
	return found
}

func teamMeta(obj map[string]any) models.TeamMeta {
	meta := models.TeamMeta{
		TeamID: jsontree.String(obj, teamIDKeys...),
		Name:   jsontree.String(obj, "shortName", "nameShort", "name", "sixCharAbbr", "seoName"),
	}
	if names, ok := obj["names"].(map[string]any); ok && meta.Name == "" {
		meta.Name = jsontree.String(names, "short", "full", "seo")
	}
	if conf := jsontree.String(obj, "conference", "conferenceName", "conf"); conf != "" {
		meta.Conference = strings.ToLower(conf)
	} else if confs, ok := obj["conferences"].([]any); ok && len(confs) > 0 {
		if first, ok := confs[0].(map[string]any); ok {
			meta.Conference = strings.ToLower(jsontree.String(first, "conferenceName", "name"))
		}
	}
	return meta
}

func isHomeEntry(obj map[string]any) bool {
	if jsontree.Has(obj, "homeTeam", "isHome") {
		return jsontree.Bool(obj, "homeTeam", "isHome")
	}
	return strings.EqualFold(jsontree.String(obj, "homeAway", "side"), "home")
}

// selectTeamLine collects every object in the payload that looks like team
// statistics for teamID and returns the best candidate's parsed line.
func selectTeamLine(payload any, teamID string) (models.BoxScoreLine, bool) {
	candidates := jsontree.CollectObjects(payload, func(obj map[string]any) bool {
		if jsontree.String(obj, teamIDKeys...) != teamID {
			return false
		}
		return jsontree.Has(obj, pointsKeys...) || jsontree.Has(obj, fgaKeys...) || jsontree.Has(obj, ftaKeys...)
	})
	if len(candidates) == 0 {
		return models.BoxScoreLine{}, false
	}

	// Weighted plausibility score. The common decoy is a partial fragment
	// with points filled in and everything else zero, so presence of the
	// peripheral counting stats (steals, blocks, assists, rebounds) carries
	// far more weight than raw numeric presence; collection order breaks
	// ties deterministically.
	best := candidates[0]
	bestScore := plausibility(best)
	for _, cand := range candidates[1:] {
		if score := plausibility(cand); score > bestScore {
			best, bestScore = cand, score
		}
	}

	return parseLine(best), true
}

func plausibility(obj map[string]any) int {
	score := 0
	weighted := []struct {
		keys   []string
		weight int
	}{
		{stlKeys, 4},
		{blkKeys, 4},
		{astKeys, 3},
		{trbKeys, 3},
		{orbKeys, 2},
		{tovKeys, 2},
		{fgaKeys, 1},
		{ftaKeys, 1},
		{pointsKeys, 1},
	}
	for _, f := range weighted {
		if jsontree.Has(obj, f.keys...) {
			score++
			if jsontree.Int(obj, f.keys...) > 0 {
				score += f.weight
			}
		}
	}
	return score
}

// parseLine reads one stat object into a BoxScoreLine. Malformed individual
// fields coerce to zero; negatives (seen when the feed emits correction
// deltas) are clamped.
func parseLine(obj map[string]any) models.BoxScoreLine {
	line := models.BoxScoreLine{
		Points:  clamp(jsontree.Int(obj, pointsKeys...)),
		FGM:     clamp(jsontree.Int(obj, fgmKeys...)),
		FGA:     clamp(jsontree.Int(obj, fgaKeys...)),
		ThreePM: clamp(jsontree.Int(obj, threePMKeys...)),
		ThreePA: clamp(jsontree.Int(obj, threePAKeys...)),
		FTM:     clamp(jsontree.Int(obj, ftmKeys...)),
		FTA:     clamp(jsontree.Int(obj, ftaKeys...)),
		ORB:     clamp(jsontree.Int(obj, orbKeys...)),
		TRB:     clamp(jsontree.Int(obj, trbKeys...)),
		AST:     clamp(jsontree.Int(obj, astKeys...)),
		STL:     clamp(jsontree.Int(obj, stlKeys...)),
		BLK:     clamp(jsontree.Int(obj, blkKeys...)),
		TOV:     clamp(jsontree.Int(obj, tovKeys...)),
		PF:      clamp(jsontree.Int(obj, pfKeys...)),
		Minutes: jsontree.Minutes(obj, minutesKeys...),
	}
	if line.Minutes < 0 {
		line.Minutes = 0
	}

	// One historical shape reports shooting as combined "made-attempted"
	// strings.
	if line.FGA == 0 {
		line.FGM, line.FGA = splitPair(jsontree.String(obj, "fieldGoals", "fg"))
	}
	if line.ThreePA == 0 {
		line.ThreePM, line.ThreePA = splitPair(jsontree.String(obj, "threePointFieldGoals", "threeFg", "3fg"))
	}
	if line.FTA == 0 {
		line.FTM, line.FTA = splitPair(jsontree.String(obj, "freeThrows", "ft"))
	}
	return line
}

func splitPair(s string) (made, attempted int) {
	left, right, found := strings.Cut(s, "-")
	if !found {
		return 0, 0
	}
	return clamp(jsontree.Int(map[string]any{"v": left}, "v")),
		clamp(jsontree.Int(map[string]any{"v": right}, "v"))
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// extractPlayers pulls per-player lines, preferring a structured team to
// players container and falling back to a tree walk for any object exposing
// a non-empty player-stats array.
func extractPlayers(payload any, homeID, awayID string) []models.PlayerLine {
	var players []models.PlayerLine
	seen := make(map[string]bool)

	addFrom := func(container map[string]any, teamID string) {
		for _, listKey := range playerListKeys {
			list, ok := container[listKey].([]any)
			if !ok {
				continue
			}
			for _, item := range list {
				obj, ok := item.(map[string]any)
				if !ok {
					continue
				}
				p, ok := parsePlayer(obj, teamID)
				if !ok {
					continue
				}
				key := p.TeamID + "|" + p.UpstreamID + "|" + p.Name
				if seen[key] {
					continue
				}
				seen[key] = true
				players = append(players, p)
			}
		}
	}

	for _, container := range jsontree.CollectObjects(payload, func(obj map[string]any) bool {
		if !jsontree.Has(obj, playerListKeys...) {
			return false
		}
		id := jsontree.String(obj, teamIDKeys...)
		return id == homeID || id == awayID
	}) {
		addFrom(container, jsontree.String(container, teamIDKeys...))
	}

	if len(players) > 0 {
		return players
	}

	// Fallback: player lists without a team identifier on the container.
	// Attribution order follows document order: first list home, second away.
	containers := jsontree.CollectObjects(payload, func(obj map[string]any) bool {
		for _, listKey := range playerListKeys {
			if list, ok := obj[listKey].([]any); ok && len(list) > 0 {
				return true
			}
		}
		return false
	})
	for i, container := range containers {
		teamID := homeID
		if i%2 == 1 {
			teamID = awayID
		}
		addFrom(container, teamID)
	}
	return players
}

func parsePlayer(obj map[string]any, teamID string) (models.PlayerLine, bool) {
	name := jsontree.String(obj, "name", "fullName", "playerName")
	if name == "" {
		first := jsontree.String(obj, "firstName", "first")
		last := jsontree.String(obj, "lastName", "last")
		name = strings.TrimSpace(first + " " + last)
	}
	if name == "" {
		return models.PlayerLine{}, false
	}

	return models.PlayerLine{
		TeamID:     teamID,
		UpstreamID: jsontree.String(obj, playerIDKeys...),
		Name:       name,
		Starter:    jsontree.Bool(obj, "starter", "isStarter", "gs"),
		Line:       parseLine(obj),
	}, true
}
