package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DatabasePassword: "secret",
		FetchWorkers:     4,
		FeedMaxAttempts:  4,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	missing := validConfig()
	missing.DatabasePassword = ""
	assert.Error(t, missing.Validate())

	noWorkers := validConfig()
	noWorkers.FetchWorkers = 0
	assert.Error(t, noWorkers.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DatabaseHost:     "db.internal",
		DatabasePort:     5433,
		DatabaseUser:     "stats",
		DatabasePassword: "pw",
		DatabaseName:     "ncaam",
		DatabaseSSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=stats password=pw dbname=ncaam sslmode=require",
		cfg.DatabaseDSN())
}

func TestConferences(t *testing.T) {
	cfg := &Config{ConferenceSet: "Big 12, ACC ,big east"}
	set := cfg.Conferences()

	assert.True(t, set["big 12"])
	assert.True(t, set["acc"])
	assert.True(t, set["big east"])
	assert.Len(t, set, 3)

	assert.Empty(t, (&Config{}).Conferences())
}

func TestResolveSeason(t *testing.T) {
	cfg := &Config{}

	// Games in November 2025 belong to the 2026 season.
	assert.Equal(t, 2026, cfg.ResolveSeason(time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)))
	// March of the same season keeps the naming year.
	assert.Equal(t, 2026, cfg.ResolveSeason(time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)))

	pinned := &Config{Season: 2024}
	assert.Equal(t, 2024, pinned.ResolveSeason(time.Now()))
}
