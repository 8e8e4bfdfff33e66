package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	payloads map[string]string
	err      error
	calls    []string
}

func (f *fakeFeed) Fetch(_ context.Context, path string) (any, error) {
	f.calls = append(f.calls, path)
	if f.err != nil {
		return nil, f.err
	}
	raw, ok := f.payloads[path]
	if !ok {
		return nil, errors.New("no payload")
	}
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

var day = time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)

const scoreboardPayload = `{
	"updated_at": "02-10-2026",
	"games": [
		{
			"game": {
				"url": "/game/6305049",
				"conferenceGame": true,
				"home": {"names": {"short": "Purdue"}, "conferences": [{"conferenceName": "Big Ten"}]},
				"away": {"names": {"short": "Indiana"}, "conferences": [{"conferenceName": "Big Ten"}]}
			}
		},
		{
			"game": {
				"url": "/game/6305050",
				"home": {"conference": "ACC"},
				"away": {"conference": "Big East"}
			}
		},
		{
			"game": {"url": "/game/6305050"}
		},
		{
			"oddball": {"deeply": {"nested": {"link": "/casablanca/game/6305051/boxscore.json"}}}
		}
	]
}`

func TestScanDayExtractsGameIDs(t *testing.T) {
	feed := &fakeFeed{payloads: map[string]string{
		"scoreboard/basketball-men/d1/2026/02/10/all-conf": scoreboardPayload,
	}}
	s := NewScanner(feed, "basketball-men", "d1")

	games, err := s.ScanDay(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, games, 3)

	byID := make(map[string]GameMeta)
	for _, g := range games {
		byID[g.GameID] = g
	}

	// Conference metadata attached where present.
	g1 := byID["6305049"]
	assert.True(t, g1.ConferenceGame)
	assert.Equal(t, "big ten", g1.HomeConference)
	assert.Equal(t, "big ten", g1.AwayConference)

	// Flat conference spelling, cross-conference game.
	g2 := byID["6305050"]
	assert.False(t, g2.ConferenceGame)
	assert.Equal(t, "acc", g2.HomeConference)
	assert.Equal(t, "big east", g2.AwayConference)

	// Discovered via bare URL fragment with no surrounding metadata.
	g3, ok := byID["6305051"]
	require.True(t, ok)
	assert.Empty(t, g3.HomeConference)
	assert.False(t, g3.ConferenceGame)
}

func TestScanDayEmptyScoreboard(t *testing.T) {
	feed := &fakeFeed{payloads: map[string]string{
		"scoreboard/basketball-men/d1/2026/02/10/all-conf": `{"games": []}`,
	}}
	s := NewScanner(feed, "basketball-men", "d1")

	games, err := s.ScanDay(context.Background(), day)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestScanRangeSkipsFailedDays(t *testing.T) {
	feed := &fakeFeed{payloads: map[string]string{
		"scoreboard/basketball-men/d1/2026/02/10/all-conf": `{"games": [{"url": "/game/1"}]}`,
		// 02/11 missing: fetch error
		"scoreboard/basketball-men/d1/2026/02/12/all-conf": `{"games": [{"url": "/game/2"}]}`,
	}}
	s := NewScanner(feed, "basketball-men", "d1")

	games, failed := s.ScanRange(context.Background(), day, day.AddDate(0, 0, 2))
	assert.Equal(t, 1, failed)
	require.Len(t, games, 2)
	assert.Equal(t, "1", games[0].GameID)
	assert.Equal(t, "2", games[1].GameID)
}

func TestScanRangeDeduplicatesAcrossDays(t *testing.T) {
	feed := &fakeFeed{payloads: map[string]string{
		"scoreboard/basketball-men/d1/2026/02/10/all-conf": `{"games": [{"url": "/game/7"}]}`,
		"scoreboard/basketball-men/d1/2026/02/11/all-conf": `{"games": [{"url": "/game/7"}, {"url": "/game/8"}]}`,
	}}
	s := NewScanner(feed, "basketball-men", "d1")

	games, failed := s.ScanRange(context.Background(), day, day.AddDate(0, 0, 1))
	assert.Zero(t, failed)
	require.Len(t, games, 2)
	assert.Equal(t, day, games[0].Date)
}
