package generator

import (
	"fmt"
	"sort"

	"megasena-analyzer/models"
)

// insightsSquareThreshold is the match count from which a hit is rewarded
// quadratically instead of linearly. Four matches is the lowest prize tier
// (quadra), so runs that reached a prize weigh disproportionately.
const insightsSquareThreshold = 4

// WithInsightsFrom selects which method's persisted runs feed the insights
// strategy. Defaults to weighted.
func WithInsightsFrom(m models.Method) Option {
	return func(g *Generator) { g.insightsFrom = m }
}

// Insights scores numbers by how well prior persisted runs containing them
// performed. A number's score is the sum, over every stored run of the
// configured source method whose generated set includes it, of f(m) for each
// per-draw match count m in the run, where f(m) = m*m when m >= 4 and m
// otherwise. Falls back to the weighted strategy when no runs exist or every
// score is zero.
func (g *Generator) Insights(draws []models.Draw) (models.CandidateSet, error) {
	if g.sink == nil {
		return nil, fmt.Errorf("%w: insights requires a result sink", models.ErrInvalidArgument)
	}

	runs, err := g.sink.LoadRuns(g.insightsFrom)
	if err != nil {
		return nil, &models.SinkError{Op: "load runs for insights", Err: err}
	}

	scores := make(map[int]int, models.MaxNumber)
	for _, run := range runs {
		weight := runWeight(run)
		for _, n := range run.Generated {
			scores[n] += weight
		}
	}

	best := 0
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	if len(runs) == 0 || best == 0 {
		g.logger.Info().
			Str("source_method", string(g.insightsFrom)).
			Int("runs", len(runs)).
			Msg("No usable backtest insights, falling back to weighted")
		return g.Weighted(draws), nil
	}

	numbers := make([]int, 0, len(scores))
	for n := range scores {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool {
		if scores[numbers[i]] != scores[numbers[j]] {
			return scores[numbers[i]] > scores[numbers[j]]
		}
		return numbers[i] < numbers[j]
	})
	if len(numbers) < models.DrawSize {
		// fewer than six numbers ever generated: pad by uniform sampling
		chosen := make(map[int]struct{}, models.DrawSize)
		for _, n := range numbers {
			chosen[n] = struct{}{}
		}
		return g.uniform(chosen), nil
	}

	set := make(models.CandidateSet, models.DrawSize)
	copy(set, numbers[:models.DrawSize])
	return set.Canonical(), nil
}

// runWeight sums the insight contribution of one run across its per-draw
// match counts.
func runWeight(run models.BacktestRun) int {
	weight := 0
	for _, m := range run.Matches {
		if m >= insightsSquareThreshold {
			weight += m * m
		} else {
			weight += m
		}
	}
	return weight
}
