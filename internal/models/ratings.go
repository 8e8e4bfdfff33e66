package models

// FourFactors holds the possession-based efficiency breakdown for one side of
// the ball. Percentages are expressed 0-100; rates 0-1 style values are also
// scaled to 0-100 for consistency with how the league tables present them.
type FourFactors struct {
	EFGPct      float64 `json:"efg_pct"`
	TOVPct      float64 `json:"tov_pct"`
	ORBPct      float64 `json:"orb_pct"`
	FTRate      float64 `json:"ft_rate"`
	TwoPct      float64 `json:"two_pct"`
	ThreePct    float64 `json:"three_pct"`
	FTPct       float64 `json:"ft_pct"`
	ThreePARate float64 `json:"three_pa_rate"`
	AssistRate  float64 `json:"assist_rate"`
	StealRate   float64 `json:"steal_rate"`
	BlockRate   float64 `json:"block_rate"`
}

// RatingsRow is a team's derived efficiency profile. Rows are recomputed in
// full from TeamSeasonTotals on every run, never incrementally patched.
type RatingsRow struct {
	TeamID     string      `json:"team_id"`
	Name       string      `json:"name"`
	Conference string      `json:"conference"`
	Games      int         `json:"games"`
	Wins       int         `json:"wins"`
	Losses     int         `json:"losses"`
	AdjO       float64     `json:"adj_o"`
	AdjD       float64     `json:"adj_d"`
	AdjEM      float64     `json:"adj_em"`
	AdjT       float64     `json:"adj_t"`
	Offense    FourFactors `json:"offense"`
	Defense    FourFactors `json:"defense"`
}

// PlayerRating is a player's individual offensive rating. Available is false
// when the player has no field-goal or free-throw attempts, in which case
// ORtg is reported as unavailable rather than silently wrong.
type PlayerRating struct {
	PlayerID  string  `json:"player_id"`
	TeamID    string  `json:"team_id"`
	Name      string  `json:"name"`
	ORtg      float64 `json:"ortg"`
	PossUsed  float64 `json:"poss_used"`
	PtsProd   float64 `json:"pts_produced"`
	Available bool    `json:"available"`
}
