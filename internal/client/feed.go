// Package client implements the resilient HTTP client for the NCAA stats
// feed. Every upstream call goes through one consolidated retry policy; the
// feed fails often enough that ad hoc per-call retry loops would otherwise
// multiply across the codebase.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam_stats/pipeline/internal/metrics"
)

// statusNotReady is the vendor's "box score not published yet" response for
// games that have been played but not yet finalized upstream.
const statusNotReady = http.StatusTooEarly

// RetryPolicy is the single retry policy applied to every upstream request:
// how many attempts, how the backoff grows, and which HTTP statuses are
// worth retrying at all.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration // linear: attempt n waits n * Backoff
	Retryable   map[int]bool
}

// DefaultRetryPolicy returns the policy used in production: four attempts,
// linear 1s backoff, retrying rate limits, server errors, and the vendor's
// not-ready status.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 4,
		Backoff:     time.Second,
		Retryable: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
			statusNotReady:                 true,
		},
	}
}

// ErrUpstreamFatal marks a non-retryable upstream response. A request that
// fails this way will fail the same way on every retry, so callers skip the
// item instead of retrying.
var ErrUpstreamFatal = errors.New("upstream request not retryable")

// Client fetches JSON documents from the stats feed. It holds no mutable
// state between calls and is safe for concurrent use by the fetch workers.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	policy         RetryPolicy
	attemptTimeout time.Duration
}

// NewClient creates a feed client. timeout is the hard wall-clock budget for
// a single attempt; the retry policy governs how many attempts are made.
func NewClient(baseURL string, timeout time.Duration, policy RetryPolicy) *Client {
	return &Client{
		baseURL:        baseURL,
		policy:         policy,
		attemptTimeout: timeout,
		httpClient: &http.Client{
			// No client-level timeout: each attempt carries its own context
			// deadline so a timed-out attempt aborts the connection and
			// counts as exactly one retry.
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch performs a GET against path (relative to the base URL) and decodes
// the JSON response. Transient failures are retried per the policy with
// linearly increasing backoff; non-retryable statuses return a wrapped
// ErrUpstreamFatal immediately.
func (c *Client) Fetch(ctx context.Context, path string) (any, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * c.policy.Backoff
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying feed request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		doc, err := c.attempt(ctx, url)
		if err == nil {
			return doc, nil
		}
		if errors.Is(err, ErrUpstreamFatal) || ctx.Err() != nil {
			return nil, err
		}

		lastErr = err
		log.Warn().
			Str("url", url).
			Int("attempt", attempt).
			Err(err).
			Msg("Feed request failed, will retry")
	}

	return nil, fmt.Errorf("feed request exhausted %d attempts: %w", c.policy.MaxAttempts, lastErr)
}

// attempt performs a single request under a hard wall-clock timeout. The
// timeout cancels the request context, which aborts the underlying
// connection rather than leaving it running.
func (c *Client) attempt(ctx context.Context, url string) (any, error) {
	start := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrUpstreamFatal, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ncaam-stats-pipeline/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamCall(url, "network_error", time.Since(start).Seconds())
		// Timeouts and resets are transient by definition.
		var netErr net.Error
		if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("feed request timed out or reset: %w", err)
		}
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamCall(url, "read_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("reading feed response: %w", err)
	}

	metrics.RecordUpstreamCall(url, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusOK:
		var doc any
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("%w: decoding feed response: %v", ErrUpstreamFatal, err)
		}
		log.Debug().
			Str("url", url).
			Int("size", len(body)).
			Msg("Feed request successful")
		return doc, nil

	case c.policy.Retryable[resp.StatusCode]:
		return nil, fmt.Errorf("feed returned retryable status %d", resp.StatusCode)

	default:
		return nil, fmt.Errorf("%w: feed returned status %d", ErrUpstreamFatal, resp.StatusCode)
	}
}

// ScoreboardPath builds the per-day scoreboard path for a sport/division.
func ScoreboardPath(sport, division string, day time.Time) string {
	return fmt.Sprintf("scoreboard/%s/%s/%04d/%02d/%02d/all-conf",
		sport, division, day.Year(), int(day.Month()), day.Day())
}

// BoxScorePath builds the per-game box-score path.
func BoxScorePath(gameID string) string {
	return fmt.Sprintf("game/%s/boxscore", gameID)
}
