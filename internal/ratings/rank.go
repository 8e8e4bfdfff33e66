package ratings

import (
	"fmt"
	"math"
	"sort"

	"ncaam_stats/pipeline/internal/models"
)

// rankTolerance is the float comparison tolerance for tie detection when
// ranking. Factor values arrive through long accumulation chains, so exact
// equality would split teams that are statistically identical.
const rankTolerance = 0.001

// Rank assigns 1-based ranks to values, best first. Values within tolerance
// of the value ranked immediately above them share its rank. The sort is
// stable, so input order decides placement among tied values.
func Rank(values []float64, descending bool) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if descending {
			return values[order[a]] > values[order[b]]
		}
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]int, len(values))
	for pos, idx := range order {
		if pos > 0 && math.Abs(values[idx]-values[order[pos-1]]) < rankTolerance {
			ranks[idx] = ranks[order[pos-1]]
			continue
		}
		ranks[idx] = pos + 1
	}
	return ranks
}

// Plausibility bounds for a full-season team row. Values outside these land
// only when aggregation or extraction has gone wrong upstream.
const (
	minPlausibleRating = 40.0
	maxPlausibleRating = 160.0
	minPlausibleTempo  = 40.0
	maxPlausibleTempo  = 100.0
)

// ValidateRow returns a list of plausibility problems with a derived row, or
// nil when the row looks sane. Callers log and count problems; a bad row does
// not abort a run.
func ValidateRow(row models.RatingsRow) []string {
	var problems []string

	if row.Games <= 0 {
		problems = append(problems, "no games played")
	}
	if row.Wins+row.Losses > row.Games {
		problems = append(problems, fmt.Sprintf("wins %d + losses %d exceed games %d", row.Wins, row.Losses, row.Games))
	}
	if row.AdjO < minPlausibleRating || row.AdjO > maxPlausibleRating {
		problems = append(problems, fmt.Sprintf("offensive rating %.1f outside [%.0f, %.0f]", row.AdjO, minPlausibleRating, maxPlausibleRating))
	}
	if row.AdjD < minPlausibleRating || row.AdjD > maxPlausibleRating {
		problems = append(problems, fmt.Sprintf("defensive rating %.1f outside [%.0f, %.0f]", row.AdjD, minPlausibleRating, maxPlausibleRating))
	}
	if row.Games > 0 && (row.AdjT < minPlausibleTempo || row.AdjT > maxPlausibleTempo) {
		problems = append(problems, fmt.Sprintf("tempo %.1f outside [%.0f, %.0f]", row.AdjT, minPlausibleTempo, maxPlausibleTempo))
	}
	for _, side := range []struct {
		label   string
		factors models.FourFactors
	}{
		{"offense", row.Offense},
		{"defense", row.Defense},
	} {
		if f := side.factors.EFGPct; f < 0 || f > 100 {
			problems = append(problems, fmt.Sprintf("%s eFG%% %.1f outside [0, 100]", side.label, f))
		}
		if f := side.factors.FTPct; f < 0 || f > 100 {
			problems = append(problems, fmt.Sprintf("%s FT%% %.1f outside [0, 100]", side.label, f))
		}
	}
	return problems
}
