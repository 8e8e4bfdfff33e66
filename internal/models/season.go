package models

// TeamSeasonTotals accumulates one team's season across every processed game.
// Own and Opp sum the full BoxScoreLine for the team and its opponents.
// Totals are only ever incremented, once per newly seen gameId; corrections
// require a rebuild from a clean season state.
type TeamSeasonTotals struct {
	TeamID     string       `json:"team_id"`
	Name       string       `json:"name"`
	Conference string       `json:"conference"`
	Games      int          `json:"games"`
	Wins       int          `json:"wins"`
	Losses     int          `json:"losses"`
	Own        BoxScoreLine `json:"own"`
	Opp        BoxScoreLine `json:"opp"`
}

// PlayerSeasonTotals accumulates one player's season. PlayerID is derived
// deterministically from (teamId, upstream identifier, normalized name) so
// repeated runs land on the same row.
type PlayerSeasonTotals struct {
	PlayerID string       `json:"player_id"`
	TeamID   string       `json:"team_id"`
	Name     string       `json:"name"`
	Games    int          `json:"games"`
	Starts   int          `json:"starts"`
	Line     BoxScoreLine `json:"line"`
}

// RunReport carries the run-level outcome counts. Partial success is the
// steady state of this pipeline, so failures accumulate here instead of
// being raised per item.
type RunReport struct {
	DaysScanned   int `json:"days_scanned"`
	DaysFailed    int `json:"days_failed"`
	GamesFound    int `json:"games_found"`
	GamesCached   int `json:"games_cached"`
	GamesFetched  int `json:"games_fetched"`
	GamesParsed   int `json:"games_parsed"`
	GamesFailed   int `json:"games_failed"`
	TeamsTotal    int `json:"teams_total"`
	PlayersTotal  int `json:"players_total"`
	RatingsBounds int `json:"ratings_out_of_bounds"`
}
