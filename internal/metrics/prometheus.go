package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the stats pipeline

var (
	// Upstream feed metrics
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_upstream_calls_total",
			Help: "Total number of upstream feed requests",
		},
		[]string{"status"},
	)

	UpstreamCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ncaam_upstream_call_duration_seconds",
			Help:    "Duration of upstream feed requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Pipeline run metrics
	GamesFound = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ncaam_games_found_total",
			Help: "Game ids discovered on scoreboards",
		},
	)

	GamesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ncaam_games_fetched_total",
			Help: "Box-score payloads fetched from the feed",
		},
	)

	GamesParsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ncaam_games_parsed_total",
			Help: "Box-score payloads successfully extracted into game records",
		},
	)

	GamesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ncaam_games_failed_total",
			Help: "Games that failed fetch or extraction",
		},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaam_runs_total",
			Help: "Pipeline runs by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaam_run_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"mode"},
	)

	TeamsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_teams_tracked",
			Help: "Teams carried in the current season totals",
		},
	)

	PlayersTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_players_tracked",
			Help: "Players carried in the current season totals",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaam_last_successful_run_timestamp",
			Help: "Timestamp of the last successfully committed run",
		},
	)
)

// RecordUpstreamCall records one upstream request. The endpoint URL is kept
// out of the label set to bound cardinality; status alone is enough to watch
// the feed degrade.
func RecordUpstreamCall(_ string, status string, duration float64) {
	UpstreamCallsTotal.WithLabelValues(status).Inc()
	UpstreamCallDuration.Observe(duration)
}

// RecordRun records a completed pipeline run.
func RecordRun(mode, status string, duration float64) {
	RunsTotal.WithLabelValues(mode, status).Inc()
	RunDuration.WithLabelValues(mode).Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// UpdateSeasonStats updates the season-level gauges after a committed run.
func UpdateSeasonStats(teams, players int) {
	TeamsTracked.Set(float64(teams))
	PlayersTracked.Set(float64(players))
}
