// Package pipeline orchestrates one ingestion run: scan scoreboards for game
// ids, fetch and extract the new box scores on a worker pool, fold them into
// season totals, recompute ratings, and commit everything atomically behind
// the run guard.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"ncaam_stats/pipeline/internal/client"
	"ncaam_stats/pipeline/internal/config"
	"ncaam_stats/pipeline/internal/extract"
	"ncaam_stats/pipeline/internal/metrics"
	"ncaam_stats/pipeline/internal/models"
	"ncaam_stats/pipeline/internal/ratings"
	"ncaam_stats/pipeline/internal/repository"
	"ncaam_stats/pipeline/internal/schedule"
	"ncaam_stats/pipeline/internal/season"
)

// ErrGuardRejected is returned when a run produced implausibly few teams and
// its entire output was discarded instead of overwriting good prior data.
var ErrGuardRejected = errors.New("run guard rejected output")

// Store is the slice of the persistence layer the runner needs.
type Store interface {
	SeenGameIDs(ctx context.Context, season int) ([]string, error)
	LatestGameDate(ctx context.Context, season int) (time.Time, error)
	LoadTeams(ctx context.Context, season int) ([]*models.TeamSeasonTotals, error)
	LoadPlayers(ctx context.Context, season int) ([]*models.PlayerSeasonTotals, error)
	CommitRun(ctx context.Context, out *repository.RunOutput) error
}

// FastCache is the optional Redis mirror of the processed-game set. A nil
// FastCache disables the fast path entirely.
type FastCache interface {
	SeenIDs(ctx context.Context, season int) ([]string, error)
	AddIDs(ctx context.Context, season int, ids []string) error
	Clear(ctx context.Context, season int) error
}

// Runner executes ingestion runs.
type Runner struct {
	cfg     *config.Config
	feed    schedule.Fetcher
	scanner *schedule.Scanner
	store   Store
	fast    FastCache
}

// NewRunner wires a runner from its collaborators. fast may be nil.
func NewRunner(cfg *config.Config, feed schedule.Fetcher, store Store, fast FastCache) *Runner {
	return &Runner{
		cfg:     cfg,
		feed:    feed,
		scanner: schedule.NewScanner(feed, cfg.FeedSport, cfg.FeedDivision),
		store:   store,
		fast:    fast,
	}
}

// Run executes one ingestion run over [from, to]. Incremental runs seed the
// aggregation state from persisted totals and merge only unseen games; a full
// rebuild starts from a clean state and replaces the season's history.
// Returns the run report alongside any error; the report is meaningful even
// when the run failed.
func (r *Runner) Run(ctx context.Context, seasonYear int, from, to time.Time, fullRebuild bool) (*models.RunReport, error) {
	mode := "incremental"
	if fullRebuild {
		mode = "rebuild"
	}
	start := time.Now()
	report := &models.RunReport{}

	state, err := r.seedState(ctx, seasonYear, fullRebuild)
	if err != nil {
		metrics.RecordRun(mode, "error", time.Since(start).Seconds())
		return report, err
	}

	if !fullRebuild {
		from = r.resolveWindowStart(ctx, seasonYear, from)
	}

	games, failedDays := r.scanner.ScanRange(ctx, from, to)
	report.DaysScanned = int(to.Sub(from).Hours()/24) + 1
	report.DaysFailed = failedDays
	report.GamesFound = len(games)
	metrics.GamesFound.Add(float64(len(games)))

	var pending []schedule.GameMeta
	for _, g := range games {
		if state.Seen[g.GameID] {
			report.GamesCached++
			continue
		}
		pending = append(pending, g)
	}

	var merged []*models.GameRecord
	for _, rec := range r.fetchGames(ctx, pending, report) {
		if state.MergeGame(rec) {
			merged = append(merged, rec)
			report.GamesParsed++
			metrics.GamesParsed.Inc()
		}
	}

	if len(state.NewGames) == 0 && !fullRebuild {
		log.Info().
			Int("games_found", report.GamesFound).
			Int("games_cached", report.GamesCached).
			Msg("No new games to merge, skipping commit")
		metrics.RecordRun(mode, "success", time.Since(start).Seconds())
		return report, nil
	}

	report.TeamsTotal = len(state.Teams)
	report.PlayersTotal = len(state.Players)

	if len(state.Teams) < r.cfg.MinTeamCount {
		log.Error().
			Int("teams", len(state.Teams)).
			Int("floor", r.cfg.MinTeamCount).
			Msg("Run produced implausibly few teams, discarding output")
		metrics.RecordRun(mode, "rejected", time.Since(start).Seconds())
		return report, fmt.Errorf("%w: %d teams, floor %d", ErrGuardRejected, len(state.Teams), r.cfg.MinTeamCount)
	}

	out := r.buildOutput(seasonYear, state, merged, fullRebuild, report)

	if err := r.store.CommitRun(ctx, out); err != nil {
		metrics.RecordRun(mode, "error", time.Since(start).Seconds())
		return report, err
	}

	r.updateFastCache(ctx, seasonYear, state.NewGames, fullRebuild)

	metrics.UpdateSeasonStats(len(state.Teams), len(state.Players))
	metrics.RecordRun(mode, "success", time.Since(start).Seconds())

	log.Info().
		Str("mode", mode).
		Int("games_found", report.GamesFound).
		Int("games_parsed", report.GamesParsed).
		Int("games_failed", report.GamesFailed).
		Int("teams", report.TeamsTotal).
		Dur("elapsed", time.Since(start)).
		Msg("Run complete")

	return report, nil
}

// resolveWindowStart widens an incremental window whose start would skip days
// the pipeline never saw, as happens when downtime outlasts the configured
// lookback. The latest persisted game day is rescanned too; the processed-game
// history keeps that harmless.
func (r *Runner) resolveWindowStart(ctx context.Context, seasonYear int, from time.Time) time.Time {
	latest, err := r.store.LatestGameDate(ctx, seasonYear)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read latest processed game date, keeping requested window")
		return from
	}
	if latest.IsZero() || !latest.Before(from) {
		return from
	}
	log.Info().
		Time("latest_game", latest).
		Time("requested_from", from).
		Msg("Widening scan window to cover a processing gap")
	return latest
}

// seedState builds the aggregation state: empty for rebuilds, loaded from the
// persisted totals and processed-game history otherwise.
func (r *Runner) seedState(ctx context.Context, seasonYear int, fullRebuild bool) (*season.State, error) {
	if fullRebuild {
		return season.NewState(nil, r.cfg.Conferences()), nil
	}

	seen, err := r.store.SeenGameIDs(ctx, seasonYear)
	if err != nil {
		return nil, fmt.Errorf("failed to load processed game ids: %w", err)
	}
	state := season.NewState(seen, r.cfg.Conferences())

	if r.fast != nil {
		if ids, err := r.fast.SeenIDs(ctx, seasonYear); err != nil {
			log.Warn().Err(err).Msg("Game-id fast cache unavailable, using database history only")
		} else {
			for _, id := range ids {
				state.Seen[id] = true
			}
		}
	}

	teams, err := r.store.LoadTeams(ctx, seasonYear)
	if err != nil {
		return nil, fmt.Errorf("failed to load team totals: %w", err)
	}
	for _, t := range teams {
		state.Teams[t.TeamID] = t
	}

	players, err := r.store.LoadPlayers(ctx, seasonYear)
	if err != nil {
		return nil, fmt.Errorf("failed to load player totals: %w", err)
	}
	for _, p := range players {
		state.Players[p.PlayerID] = p
	}

	return state, nil
}

// fetchGames pulls and extracts box scores for the pending games on a fixed
// worker pool. Results arrive unordered; the caller folds them sequentially.
func (r *Runner) fetchGames(ctx context.Context, pending []schedule.GameMeta, report *models.RunReport) []*models.GameRecord {
	if len(pending) == 0 {
		return nil
	}

	pool, err := ants.NewPool(r.cfg.FetchWorkers)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create fetch worker pool")
		report.GamesFailed += len(pending)
		return nil
	}
	defer pool.Release()

	results := make(chan *models.GameRecord, len(pending))
	failures := make(chan string, len(pending))
	var fetched atomic.Int64

	var workers sync.WaitGroup
	for _, meta := range pending {
		meta := meta
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if ctx.Err() != nil {
				failures <- meta.GameID
				return
			}

			// Politeness delay so a full pool does not burst the feed.
			time.Sleep(r.cfg.FetchDelay)

			doc, err := r.feed.Fetch(ctx, client.BoxScorePath(meta.GameID))
			if err != nil {
				log.Warn().Str("game_id", meta.GameID).Err(err).Msg("Box score fetch failed")
				failures <- meta.GameID
				return
			}
			metrics.GamesFetched.Inc()
			fetched.Add(1)

			rec := extract.Game(doc, meta.GameID, meta.Date)
			if rec == nil {
				log.Warn().Str("game_id", meta.GameID).Msg("Box score extraction failed")
				failures <- meta.GameID
				return
			}
			applyScheduleMeta(rec, meta)
			results <- rec
		}); err != nil {
			workers.Done()
			failures <- meta.GameID
		}
	}

	workers.Wait()
	close(results)
	close(failures)

	report.GamesFetched = int(fetched.Load())
	for range failures {
		report.GamesFailed++
		metrics.GamesFailed.Inc()
	}

	records := make([]*models.GameRecord, 0, len(results))
	for rec := range results {
		records = append(records, rec)
	}
	return records
}

// applyScheduleMeta backfills conference metadata the box-score payload
// lacked from what the scoreboard listing carried.
func applyScheduleMeta(rec *models.GameRecord, meta schedule.GameMeta) {
	if rec.HomeTeam.Conference == "" {
		rec.HomeTeam.Conference = meta.HomeConference
	}
	if rec.AwayTeam.Conference == "" {
		rec.AwayTeam.Conference = meta.AwayConference
	}
	if meta.ConferenceGame {
		rec.ConferenceGame = true
	}
}

// buildOutput recomputes every derived rating from the folded totals and
// assembles the commit payload.
func (r *Runner) buildOutput(seasonYear int, state *season.State, merged []*models.GameRecord, fullRebuild bool, report *models.RunReport) *repository.RunOutput {
	out := &repository.RunOutput{
		Season:      seasonYear,
		FullRebuild: fullRebuild,
		NewGames:    merged,
	}

	for _, t := range state.Teams {
		out.Teams = append(out.Teams, t)
		row := ratings.TeamRow(t)
		if problems := ratings.ValidateRow(row); len(problems) > 0 {
			report.RatingsBounds++
			log.Warn().
				Str("team_id", row.TeamID).
				Strs("problems", problems).
				Msg("Implausible ratings row")
		}
		out.TeamRatings = append(out.TeamRatings, row)
	}

	for _, p := range state.Players {
		out.Players = append(out.Players, p)
		team, ok := state.Teams[p.TeamID]
		if !ok {
			continue
		}
		out.PlayerRatings = append(out.PlayerRatings, ratings.PlayerOffensiveRating(p, team))
	}

	return out
}

// updateFastCache mirrors the run's new gameIds into Redis. Failures only
// cost the fast path, never the run.
func (r *Runner) updateFastCache(ctx context.Context, seasonYear int, newIDs []string, fullRebuild bool) {
	if r.fast == nil {
		return
	}
	if fullRebuild {
		if err := r.fast.Clear(ctx, seasonYear); err != nil {
			log.Warn().Err(err).Msg("Failed to clear game-id fast cache")
			return
		}
	}
	if err := r.fast.AddIDs(ctx, seasonYear, newIDs); err != nil {
		log.Warn().Err(err).Msg("Failed to update game-id fast cache")
	}
}
