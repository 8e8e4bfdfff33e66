// Package schedule discovers game ids by scanning per-day scoreboard
// listings. The scoreboard document has no stable schema, so discovery walks
// the whole JSON tree and pattern-matches identifier-bearing URL fragments
// instead of decoding a fixed shape.
package schedule

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam_stats/pipeline/internal/client"
	"ncaam_stats/pipeline/internal/jsontree"
)

// Fetcher is the slice of the feed client the scanner needs.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (any, error)
}

// GameMeta is one discovered game: its id plus whatever conference metadata
// the scoreboard happened to carry. Conference fields are empty when the
// listing omitted them; such games are treated as inter-division/unknown.
type GameMeta struct {
	GameID         string
	Date           time.Time
	HomeConference string
	AwayConference string
	ConferenceGame bool
}

// Scanner enumerates candidate game ids for a date range.
type Scanner struct {
	feed     Fetcher
	sport    string
	division string
}

// NewScanner creates a scanner for one sport/division feed.
func NewScanner(feed Fetcher, sport, division string) *Scanner {
	return &Scanner{feed: feed, sport: sport, division: division}
}

// gameURLPattern matches the identifier-bearing path fragment the feed embeds
// wherever it references a game ("/game/6305049", ".../game/6305049/...").
var gameURLPattern = regexp.MustCompile(`/game/(\d+)`)

// ScanDay fetches one day's scoreboard and extracts every embedded game id.
// A day yielding zero games is not an error; empty days are normal in the
// early season and over holidays.
func (s *Scanner) ScanDay(ctx context.Context, day time.Time) ([]GameMeta, error) {
	doc, err := s.feed.Fetch(ctx, client.ScoreboardPath(s.sport, s.division, day))
	if err != nil {
		return nil, err
	}
	return extractGames(doc, day), nil
}

// ScanRange scans every day in [from, to]. A failed day is logged and
// skipped; it never aborts the run. Returns the discovered games and the
// count of failed days.
func (s *Scanner) ScanRange(ctx context.Context, from, to time.Time) ([]GameMeta, int) {
	var games []GameMeta
	failed := 0
	seen := make(map[string]bool)

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if ctx.Err() != nil {
			return games, failed
		}

		dayGames, err := s.ScanDay(ctx, day)
		if err != nil {
			failed++
			log.Warn().
				Str("day", day.Format("2006-01-02")).
				Err(err).
				Msg("Scoreboard fetch failed, skipping day")
			continue
		}

		added := 0
		for _, g := range dayGames {
			// The feed re-lists games across adjacent days; keep the first.
			if seen[g.GameID] {
				continue
			}
			seen[g.GameID] = true
			games = append(games, g)
			added++
		}

		log.Debug().
			Str("day", day.Format("2006-01-02")).
			Int("games", added).
			Msg("Scoreboard scanned")
	}

	return games, failed
}

// extractGames walks a scoreboard document collecting every game id, then
// opportunistically attaches conference metadata from whichever container
// object referenced the id.
func extractGames(doc any, day time.Time) []GameMeta {
	byID := make(map[string]*GameMeta)
	var order []string

	record := func(id string) *GameMeta {
		if g, ok := byID[id]; ok {
			return g
		}
		g := &GameMeta{GameID: id, Date: day}
		byID[id] = g
		order = append(order, id)
		return g
	}

	// Pass 1: every identifier-bearing string anywhere in the tree.
	for _, s := range jsontree.CollectStrings(doc, func(s string) bool {
		return gameURLPattern.MatchString(s)
	}) {
		record(gameURLPattern.FindStringSubmatch(s)[1])
	}

	// Pass 2: map nodes that reference a game and also carry conference
	// metadata. Absence of metadata is tolerated, not an error.
	for _, obj := range jsontree.CollectObjects(doc, func(obj map[string]any) bool {
		return containedGameID(obj) != ""
	}) {
		g := record(containedGameID(obj))

		if home, ok := obj["home"].(map[string]any); ok {
			if conf := conferenceCode(home); conf != "" {
				g.HomeConference = conf
			}
		}
		if away, ok := obj["away"].(map[string]any); ok {
			if conf := conferenceCode(away); conf != "" {
				g.AwayConference = conf
			}
		}
		if jsontree.Has(obj, "conferenceGame", "isConferenceGame", "confGame") {
			g.ConferenceGame = jsontree.Bool(obj, "conferenceGame", "isConferenceGame", "confGame")
		} else if g.HomeConference != "" && g.HomeConference == g.AwayConference {
			g.ConferenceGame = true
		}
	}

	games := make([]GameMeta, 0, len(order))
	for _, id := range order {
		games = append(games, *byID[id])
	}
	return games
}

// containedGameID returns the game id an object directly references, either
// through an id field or through an embedded game URL.
func containedGameID(obj map[string]any) string {
	if url := jsontree.String(obj, "url", "gameUrl", "gamePath"); url != "" {
		if m := gameURLPattern.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	if id := jsontree.String(obj, "gameID", "gameId", "game_id"); id != "" && isDigits(id) {
		return id
	}
	return ""
}

// conferenceCode digs a conference code out of a team container, accepting
// both the flat spelling and the nested conferences-array shape the feed has
// used.
func conferenceCode(team map[string]any) string {
	if conf := jsontree.String(team, "conference", "conferenceName", "conf"); conf != "" {
		return strings.ToLower(conf)
	}
	if confs, ok := team["conferences"].([]any); ok && len(confs) > 0 {
		if first, ok := confs[0].(map[string]any); ok {
			return strings.ToLower(jsontree.String(first, "conferenceName", "name", "conferenceSeo"))
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
