package extract

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

var gameDate = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

func TestGameExtractsBothSides(t *testing.T) {
	payload := decode(t, `{
		"meta": {
			"teams": [
				{"teamId": "101", "shortName": "Kansas", "homeTeam": "true", "conference": "Big 12"},
				{"teamId": "202", "shortName": "Baylor", "homeTeam": "false", "conference": "Big 12"}
			]
		},
		"teamStats": [
			{
				"teamId": "101", "points": 78, "fieldGoalsMade": 28, "fieldGoalsAttempted": 60,
				"threePointsMade": 8, "threePointsAttempted": 22, "freeThrowsMade": 14,
				"freeThrowsAttempted": 18, "offensiveRebounds": 11, "totalRebounds": 35,
				"assists": 15, "steals": 7, "blockedShots": 4, "turnovers": 12, "personalFouls": 16
			},
			{
				"teamId": "202", "points": 71, "fieldGoalsMade": 26, "fieldGoalsAttempted": 58,
				"threePointsMade": 6, "threePointsAttempted": 19, "freeThrowsMade": 13,
				"freeThrowsAttempted": 17, "offensiveRebounds": 9, "totalRebounds": 31,
				"assists": 12, "steals": 5, "blockedShots": 2, "turnovers": 14, "personalFouls": 18
			}
		]
	}`)

	rec := Game(payload, "6100500", gameDate)
	require.NotNil(t, rec)

	assert.Equal(t, "6100500", rec.GameID)
	assert.Equal(t, "101", rec.HomeTeam.TeamID)
	assert.Equal(t, "Kansas", rec.HomeTeam.Name)
	assert.Equal(t, "big 12", rec.HomeTeam.Conference)
	assert.Equal(t, "202", rec.AwayTeam.TeamID)
	assert.True(t, rec.ConferenceGame)

	assert.Equal(t, 78, rec.HomeBox.Points)
	assert.Equal(t, 60, rec.HomeBox.FGA)
	assert.Equal(t, 7, rec.HomeBox.STL)
	assert.Equal(t, 71, rec.AwayBox.Points)
	assert.Equal(t, 14, rec.AwayBox.TOV)
}

func TestGamePrefersPlausibleCandidateOverDecoy(t *testing.T) {
	// A partial fragment for the same team appears earlier in the document
	// with points present but every peripheral stat zero. The fully
	// populated object must win.
	payload := decode(t, `{
		"teams": [
			{"teamId": "101", "name": "Kansas", "homeTeam": true},
			{"teamId": "202", "name": "Baylor", "homeTeam": false}
		],
		"aaaDecoy": {
			"teamId": "101", "points": 78, "fieldGoalsAttempted": 0,
			"steals": 0, "blockedShots": 0, "assists": 0, "totalRebounds": 0
		},
		"real": [
			{
				"teamId": "101", "points": 78, "fieldGoalsMade": 28, "fieldGoalsAttempted": 60,
				"totalRebounds": 35, "assists": 15, "steals": 7, "blockedShots": 4,
				"turnovers": 12, "offensiveRebounds": 11
			},
			{
				"teamId": "202", "points": 71, "fieldGoalsMade": 26, "fieldGoalsAttempted": 58,
				"totalRebounds": 31, "assists": 12, "steals": 5, "blockedShots": 2,
				"turnovers": 14, "offensiveRebounds": 9
			}
		]
	}`)

	rec := Game(payload, "1", gameDate)
	require.NotNil(t, rec)
	assert.Equal(t, 60, rec.HomeBox.FGA)
	assert.Equal(t, 35, rec.HomeBox.TRB)
	assert.Equal(t, 7, rec.HomeBox.STL)
}

func TestGameRejectedWhenSideMissing(t *testing.T) {
	payload := decode(t, `{
		"teams": [
			{"teamId": "101", "name": "Kansas", "homeTeam": true},
			{"teamId": "202", "name": "Baylor"}
		],
		"teamStats": [
			{"teamId": "101", "points": 78, "fieldGoalsAttempted": 60, "steals": 7}
		]
	}`)

	assert.Nil(t, Game(payload, "1", gameDate))
}

func TestGameRejectedWithoutTeamEntries(t *testing.T) {
	assert.Nil(t, Game(decode(t, `{"status": "scheduled"}`), "1", gameDate))
	assert.Nil(t, Game(decode(t, `{"teams": [{"teamId": "101"}]}`), "1", gameDate))
}

func TestLocateTeamsPositionalFallback(t *testing.T) {
	// No home marker anywhere: first listed team is treated as home.
	payload := decode(t, `{
		"teams": [
			{"teamId": "5", "name": "Duke"},
			{"teamId": "9", "name": "Wake Forest"}
		],
		"stats": [
			{"teamId": "5", "points": 80, "fieldGoalsAttempted": 61, "steals": 6, "totalRebounds": 30, "assists": 14, "blockedShots": 3, "turnovers": 10},
			{"teamId": "9", "points": 75, "fieldGoalsAttempted": 59, "steals": 4, "totalRebounds": 28, "assists": 11, "blockedShots": 1, "turnovers": 13}
		]
	}`)

	rec := Game(payload, "2", gameDate)
	require.NotNil(t, rec)
	assert.Equal(t, "5", rec.HomeTeam.TeamID)
	assert.Equal(t, "9", rec.AwayTeam.TeamID)
	assert.Equal(t, 80, rec.HomeBox.Points)
}

func TestGameFindsTeamsViaWalkFallback(t *testing.T) {
	// Team entries nested inside an unanticipated wrapper, no "teams" key.
	payload := decode(t, `{
		"contest": {"participants": [
			{"teamId": "7", "name": "UCLA", "homeAway": "home"},
			{"teamId": "8", "name": "USC", "homeAway": "away"}
		]},
		"boxscore": [
			{"teamId": "7", "points": 66, "fieldGoalsAttempted": 55, "steals": 8, "totalRebounds": 32, "assists": 13, "blockedShots": 5, "turnovers": 9},
			{"teamId": "8", "points": 64, "fieldGoalsAttempted": 57, "steals": 6, "totalRebounds": 29, "assists": 10, "blockedShots": 2, "turnovers": 11}
		]
	}`)

	rec := Game(payload, "3", gameDate)
	require.NotNil(t, rec)
	assert.Equal(t, "7", rec.HomeTeam.TeamID)
	assert.Equal(t, 66, rec.HomeBox.Points)
	assert.Equal(t, "8", rec.AwayTeam.TeamID)
}

func TestParseLineCombinedShootingStrings(t *testing.T) {
	obj := map[string]any{
		"points":     float64(54),
		"fieldGoals": "20-45",
		"freeThrows": "8-12",
		"threeFg":    "6-17",
	}

	line := parseLine(obj)
	assert.Equal(t, 20, line.FGM)
	assert.Equal(t, 45, line.FGA)
	assert.Equal(t, 8, line.FTM)
	assert.Equal(t, 12, line.FTA)
	assert.Equal(t, 6, line.ThreePM)
	assert.Equal(t, 17, line.ThreePA)
}

func TestParseLineClampsNegativesAndMalformed(t *testing.T) {
	obj := map[string]any{
		"points":        float64(-3),
		"assists":       "not-a-number",
		"steals":        "4",
		"minutesPlayed": "32:30",
	}

	line := parseLine(obj)
	assert.Equal(t, 0, line.Points)
	assert.Equal(t, 0, line.AST)
	assert.Equal(t, 4, line.STL)
	assert.InDelta(t, 32.5, line.Minutes, 0.001)
}

func TestExtractPlayersFromTeamContainers(t *testing.T) {
	payload := decode(t, `{
		"teams": [
			{"teamId": "101", "name": "Kansas", "homeTeam": true},
			{"teamId": "202", "name": "Baylor", "homeTeam": false}
		],
		"teamBoxscore": [
			{
				"teamId": "101", "points": 78, "fieldGoalsAttempted": 60,
				"steals": 7, "totalRebounds": 35, "assists": 15, "blockedShots": 4, "turnovers": 12,
				"playerStats": [
					{"firstName": "Alia", "lastName": "Carter", "playerId": "p1", "starter": "true",
					 "points": 21, "fieldGoalsMade": 8, "fieldGoalsAttempted": 15, "minutesPlayed": "34:00"},
					{"name": "Ben Okafor", "playerId": "p2",
					 "points": 9, "fieldGoalsMade": 4, "fieldGoalsAttempted": 7, "minutesPlayed": "18:30"}
				]
			},
			{
				"teamId": "202", "points": 71, "fieldGoalsAttempted": 58,
				"steals": 5, "totalRebounds": 31, "assists": 12, "blockedShots": 2, "turnovers": 14,
				"playerStats": [
					{"name": "Cole Diaz", "playerId": "p3", "isStarter": true, "points": 17}
				]
			}
		]
	}`)

	rec := Game(payload, "4", gameDate)
	require.NotNil(t, rec)
	require.Len(t, rec.Players, 3)

	assert.Equal(t, "Alia Carter", rec.Players[0].Name)
	assert.Equal(t, "101", rec.Players[0].TeamID)
	assert.True(t, rec.Players[0].Starter)
	assert.InDelta(t, 34.0, rec.Players[0].Line.Minutes, 0.001)

	assert.Equal(t, "Ben Okafor", rec.Players[1].Name)
	assert.False(t, rec.Players[1].Starter)

	assert.Equal(t, "Cole Diaz", rec.Players[2].Name)
	assert.Equal(t, "202", rec.Players[2].TeamID)
}

func TestExtractPlayersAbsentIsNotFatal(t *testing.T) {
	payload := decode(t, `{
		"teams": [
			{"teamId": "101", "name": "Kansas", "homeTeam": true},
			{"teamId": "202", "name": "Baylor"}
		],
		"teamStats": [
			{"teamId": "101", "points": 70, "fieldGoalsAttempted": 55, "steals": 6, "totalRebounds": 30, "assists": 12, "blockedShots": 3, "turnovers": 10},
			{"teamId": "202", "points": 68, "fieldGoalsAttempted": 54, "steals": 5, "totalRebounds": 29, "assists": 11, "blockedShots": 2, "turnovers": 12}
		]
	}`)

	rec := Game(payload, "5", gameDate)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Players)
}
