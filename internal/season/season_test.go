package season

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam_stats/pipeline/internal/models"
)

func sampleGame(gameID string) *models.GameRecord {
	return &models.GameRecord{
		GameID:   gameID,
		Date:     time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		HomeTeam: models.TeamMeta{TeamID: "101", Name: "Kansas", Conference: "big 12"},
		AwayTeam: models.TeamMeta{TeamID: "202", Name: "Baylor", Conference: "big 12"},
		HomeBox:  models.BoxScoreLine{Points: 78, FGA: 60, FGM: 28, TOV: 12, ORB: 11, TRB: 35},
		AwayBox:  models.BoxScoreLine{Points: 71, FGA: 58, FGM: 26, TOV: 14, ORB: 9, TRB: 31},
		Players: []models.PlayerLine{
			{TeamID: "101", UpstreamID: "p1", Name: "Alia Carter", Starter: true,
				Line: models.BoxScoreLine{Points: 21, FGA: 15, Minutes: 34}},
			{TeamID: "101", Name: "Ben Okafor",
				Line: models.BoxScoreLine{Points: 9, FGA: 7, Minutes: 18.5}},
		},
	}
}

func TestMergeGameAccumulatesBothSides(t *testing.T) {
	s := NewState(nil, nil)
	require.True(t, s.MergeGame(sampleGame("g1")))

	home := s.Teams["101"]
	require.NotNil(t, home)
	assert.Equal(t, 1, home.Games)
	assert.Equal(t, 1, home.Wins)
	assert.Equal(t, 0, home.Losses)
	assert.Equal(t, 78, home.Own.Points)
	assert.Equal(t, 71, home.Opp.Points)

	away := s.Teams["202"]
	require.NotNil(t, away)
	assert.Equal(t, 1, away.Losses)
	assert.Equal(t, 71, away.Own.Points)
	assert.Equal(t, 78, away.Opp.Points)

	assert.Equal(t, []string{"g1"}, s.NewGames)
}

func TestMergeGameIsIdempotentPerGameID(t *testing.T) {
	s := NewState(nil, nil)
	require.True(t, s.MergeGame(sampleGame("g1")))
	require.False(t, s.MergeGame(sampleGame("g1")))

	assert.Equal(t, 1, s.Teams["101"].Games)
	assert.Equal(t, 78, s.Teams["101"].Own.Points)
	assert.Len(t, s.NewGames, 1)
}

func TestMergeGameSkipsPersistedGames(t *testing.T) {
	s := NewState([]string{"g1"}, nil)
	require.False(t, s.MergeGame(sampleGame("g1")))
	assert.Empty(t, s.Teams)
	assert.Empty(t, s.NewGames)
}

func TestMergeGameConferenceFilter(t *testing.T) {
	s := NewState(nil, map[string]bool{"big 12": true})
	game := sampleGame("g1")
	game.AwayTeam.Conference = "wac"
	require.True(t, s.MergeGame(game))

	// The in-set side still counts the game; the out-of-set opponent is not
	// tracked as a row of its own.
	require.NotNil(t, s.Teams["101"])
	assert.Equal(t, 1, s.Teams["101"].Games)
	assert.Nil(t, s.Teams["202"])
}

func TestMergePlayerRules(t *testing.T) {
	s := NewState(nil, nil)
	game := sampleGame("g1")
	game.Players = append(game.Players,
		// Listed but never played: no games increment.
		models.PlayerLine{TeamID: "101", Name: "Dric Moore"},
		// Same for a listed starter whose line is completely empty.
		models.PlayerLine{TeamID: "101", Name: "Ed Vance", Starter: true},
		// Player on an untracked team id is dropped.
		models.PlayerLine{TeamID: "999", Name: "Ghost Player",
			Line: models.BoxScoreLine{Points: 5, Minutes: 10}},
	)
	require.True(t, s.MergeGame(game))

	require.Len(t, s.Players, 2)
	assert.Nil(t, s.Players[PlayerID("101", "", "Ed Vance")])
	starter := s.Players[PlayerID("101", "p1", "Alia Carter")]
	require.NotNil(t, starter)
	assert.Equal(t, 1, starter.Games)
	assert.Equal(t, 1, starter.Starts)
	assert.Equal(t, 21, starter.Line.Points)

	bench := s.Players[PlayerID("101", "", "Ben Okafor")]
	require.NotNil(t, bench)
	assert.Equal(t, 0, bench.Starts)
}

func TestMergePlayerAccumulatesAcrossGames(t *testing.T) {
	s := NewState(nil, nil)
	require.True(t, s.MergeGame(sampleGame("g1")))

	g2 := sampleGame("g2")
	g2.HomeBox, g2.AwayBox = g2.AwayBox, g2.HomeBox
	require.True(t, s.MergeGame(g2))

	p := s.Players[PlayerID("101", "p1", "Alia Carter")]
	require.NotNil(t, p)
	assert.Equal(t, 2, p.Games)
	assert.Equal(t, 42, p.Line.Points)
	assert.InDelta(t, 68.0, p.Line.Minutes, 0.001)

	assert.Equal(t, 1, s.Teams["101"].Wins)
	assert.Equal(t, 1, s.Teams["101"].Losses)
}

func TestPlayerIDFallsBackToNormalizedName(t *testing.T) {
	assert.Equal(t, "101:p9", PlayerID("101", "p9", "Anyone"))
	assert.Equal(t, PlayerID("101", "", "J.J. Smith"), PlayerID("101", "", "jj  SMITH"))
	assert.NotEqual(t, PlayerID("101", "", "Sam Hill"), PlayerID("202", "", "Sam Hill"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "jj smith", NormalizeName("J.J. Smith"))
	assert.Equal(t, "obrien ray", NormalizeName("O'Brien-Ray "))
	assert.Equal(t, "ray jones jr", NormalizeName("  Ray   Jones Jr."))
}
