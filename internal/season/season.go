// Package season folds extracted games into running season totals. Folding is
// strictly sequential and idempotent per game: a gameId merges exactly once no
// matter how many runs rediscover it.
package season

import (
	"strings"

	"github.com/rs/zerolog/log"

	"ncaam_stats/pipeline/internal/models"
)

// State is the mutable aggregation state for one season. Seen carries every
// gameId already merged, including those loaded from previous runs; NewGames
// lists only the gameIds this State merged itself, in merge order.
type State struct {
	Teams    map[string]*models.TeamSeasonTotals
	Players  map[string]*models.PlayerSeasonTotals
	Seen     map[string]bool
	NewGames []string

	// conferences, when non-empty, restricts which teams are tracked as
	// first-class rows. Games against out-of-set opponents still count
	// toward the tracked side's totals.
	conferences map[string]bool
}

// NewState builds an empty aggregation state. seenGames seeds the dedup set
// from persisted history; conferences may be nil to track every team.
func NewState(seenGames []string, conferences map[string]bool) *State {
	seen := make(map[string]bool, len(seenGames))
	for _, id := range seenGames {
		seen[id] = true
	}
	return &State{
		Teams:       make(map[string]*models.TeamSeasonTotals),
		Players:     make(map[string]*models.PlayerSeasonTotals),
		Seen:        seen,
		conferences: conferences,
	}
}

// MergeGame folds one game into the season totals. Returns false without
// touching any state when the gameId was already merged.
func (s *State) MergeGame(rec *models.GameRecord) bool {
	if s.Seen[rec.GameID] {
		return false
	}
	s.Seen[rec.GameID] = true
	s.NewGames = append(s.NewGames, rec.GameID)

	s.mergeSide(rec.HomeTeam, rec.HomeBox, rec.AwayBox)
	s.mergeSide(rec.AwayTeam, rec.AwayBox, rec.HomeBox)

	for _, p := range rec.Players {
		s.mergePlayer(p)
	}
	return true
}

func (s *State) mergeSide(meta models.TeamMeta, own, opp models.BoxScoreLine) {
	if !s.tracked(meta) {
		return
	}

	team, ok := s.Teams[meta.TeamID]
	if !ok {
		team = &models.TeamSeasonTotals{
			TeamID:     meta.TeamID,
			Name:       meta.Name,
			Conference: meta.Conference,
		}
		s.Teams[meta.TeamID] = team
	}
	// Later games may carry metadata an earlier scoreboard omitted.
	if team.Name == "" {
		team.Name = meta.Name
	}
	if team.Conference == "" {
		team.Conference = meta.Conference
	}

	team.Games++
	switch {
	case own.Points > opp.Points:
		team.Wins++
	case own.Points < opp.Points:
		team.Losses++
	default:
		log.Warn().Str("team_id", meta.TeamID).Msg("Game merged with tied score, recording neither win nor loss")
	}
	team.Own.Add(own)
	team.Opp.Add(opp)
}

func (s *State) mergePlayer(p models.PlayerLine) {
	if _, ok := s.Teams[p.TeamID]; !ok {
		return
	}
	// A listed player who never entered the game carries no line worth a
	// games-played increment, listed starter or not.
	if p.Line.IsEmpty() {
		return
	}

	id := PlayerID(p.TeamID, p.UpstreamID, p.Name)
	player, ok := s.Players[id]
	if !ok {
		player = &models.PlayerSeasonTotals{
			PlayerID: id,
			TeamID:   p.TeamID,
			Name:     p.Name,
		}
		s.Players[id] = player
	}

	player.Games++
	if p.Starter {
		player.Starts++
	}
	player.Line.Add(p.Line)
}

func (s *State) tracked(meta models.TeamMeta) bool {
	if meta.TeamID == "" {
		return false
	}
	if len(s.conferences) == 0 {
		return true
	}
	return s.conferences[strings.ToLower(meta.Conference)]
}

// PlayerID derives a stable player identity. The upstream identifier is
// preferred; players without one fall back to their normalized name, scoped
// by team so common names on different rosters stay distinct.
func PlayerID(teamID, upstreamID, name string) string {
	if upstreamID != "" {
		return teamID + ":" + upstreamID
	}
	return teamID + ":" + NormalizeName(name)
}

// NormalizeName canonicalizes a player name for identity purposes: lowercase,
// punctuation stripped, interior whitespace collapsed. "J.J. Smith" and
// "JJ  smith" map to the same key.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastSpace := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == ' ' || r == '-':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}
