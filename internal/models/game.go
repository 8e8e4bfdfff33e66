package models

import "time"

// TeamMeta identifies one side of a game as reported by the upstream feed.
// Conference is the upstream conference code ("big-ten", "acc", ...); empty
// when the scoreboard omitted conference metadata for the game.
type TeamMeta struct {
	TeamID     string `json:"team_id"`
	Name       string `json:"name"`
	Conference string `json:"conference"`
}

// GameRecord is the canonical, immutable result of successfully extracting
// one upstream box-score payload. A GameRecord is identified uniquely by
// GameID and is only ever created by the extractor; the aggregator consumes
// it read-only.
type GameRecord struct {
	GameID         string       `json:"game_id"`
	Date           time.Time    `json:"date"`
	HomeTeam       TeamMeta     `json:"home_team"`
	AwayTeam       TeamMeta     `json:"away_team"`
	ConferenceGame bool         `json:"conference_game"`
	HomeBox        BoxScoreLine `json:"home_box"`
	AwayBox        BoxScoreLine `json:"away_box"`
	Players        []PlayerLine `json:"players"`
}

// PlayerLine is one player's stat line within a game, attributed to the team
// the player appeared for. UpstreamID may be empty; Name never is for a line
// that survived extraction.
type PlayerLine struct {
	TeamID     string       `json:"team_id"`
	UpstreamID string       `json:"upstream_id"`
	Name       string       `json:"name"`
	Starter    bool         `json:"starter"`
	Line       BoxScoreLine `json:"line"`
}
