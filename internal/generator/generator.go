// Package generator produces candidate number sets from the historical draw
// record. Every strategy returns the canonical form: six distinct numbers in
// [1,60] sorted ascending. The one documented exception is the trailing
// window strategy, which returns nil when the window holds no draws.
package generator

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"megasena-analyzer/internal/frequency"
	"megasena-analyzer/models"
)

// DefaultWindowDays is the trailing window for the lastyear strategy.
const DefaultWindowDays = 365

// maxWeightedAttempts bounds the retry-until-distinct sampling loop. For any
// non-degenerate weight vector the loop finishes in O(k) expected picks, so
// hitting the bound means the weights are pathological and the remainder is
// filled uniformly.
const maxWeightedAttempts = 1000

// Generator runs candidate-set strategies over a draw snapshot. The clock and
// random source are injected so window cutoffs and sampling are pinnable in
// tests; the sink feeds the insights strategy and may be nil when unused.
type Generator struct {
	rng          *rand.Rand
	clock        models.Clock
	sink         models.ResultSink
	insightsFrom models.Method
	windowDays   int
	logger       zerolog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock pins the wall clock used by trailing-window strategies.
func WithClock(c models.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithRand pins the random source used by sampling strategies.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithSink provides the persisted-run store consumed by the insights
// strategy.
func WithSink(s models.ResultSink) Option {
	return func(g *Generator) { g.sink = s }
}

// WithWindowDays overrides the trailing window length.
func WithWindowDays(days int) Option {
	return func(g *Generator) { g.windowDays = days }
}

// New creates a Generator with real clock and seeded randomness unless
// options say otherwise.
func New(opts ...Option) *Generator {
	g := &Generator{
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:        models.ClockFunc(time.Now),
		insightsFrom: models.MethodWeighted,
		windowDays:   DefaultWindowDays,
		logger:       log.With().Str("component", "generator").Logger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate dispatches to the strategy for the given method.
func (g *Generator) Generate(method models.Method, draws []models.Draw) (models.CandidateSet, error) {
	switch method {
	case models.MethodAllTime:
		return g.AllTime(draws), nil
	case models.MethodLastYear:
		return g.LastYear(draws), nil
	case models.MethodWeighted:
		return g.Weighted(draws), nil
	case models.MethodPrediction:
		return g.Prediction(draws)
	case models.MethodInsights:
		return g.Insights(draws)
	default:
		return nil, fmt.Errorf("%w: unknown method %q", models.ErrInvalidArgument, method)
	}
}

// AllTime returns the six most frequent numbers across the whole history.
func (g *Generator) AllTime(draws []models.Draw) models.CandidateSet {
	if len(draws) == 0 {
		return nil
	}
	top := frequency.TopK(frequency.Count(draws), models.DrawSize)
	return models.CandidateSet(top).Canonical()
}

// LastYear returns the six most frequent numbers within the trailing window.
// An empty window yields nil: insufficient data, not a valid pick.
func (g *Generator) LastYear(draws []models.Draw) models.CandidateSet {
	windowed := frequency.FilterLastDays(draws, g.windowDays, g.clock.Now())
	if len(windowed) == 0 {
		g.logger.Warn().Int("days", g.windowDays).Msg("No draws inside trailing window")
		return nil
	}
	top := frequency.TopK(frequency.Count(windowed), models.DrawSize)
	return models.CandidateSet(top).Canonical()
}

// Weighted samples six distinct numbers with probability proportional to each
// number's historical count. All-zero weights degrade to uniform sampling.
// Weighted picks can repeat, so the loop retries until six distinct values
// accumulate, bounded by maxWeightedAttempts.
func (g *Generator) Weighted(draws []models.Draw) models.CandidateSet {
	table := frequency.Count(draws)
	total := table.Total()
	if total == 0 {
		g.logger.Warn().Msg("No frequency data to weight, sampling uniformly")
		return g.uniform(nil)
	}

	// cumulative[i] is the summed weight of numbers 1..i+1
	cumulative := make([]int, models.MaxNumber)
	running := 0
	for n := 1; n <= models.MaxNumber; n++ {
		running += table[n]
		cumulative[n-1] = running
	}

	chosen := make(map[int]struct{}, models.DrawSize)
	for attempts := 0; len(chosen) < models.DrawSize && attempts < maxWeightedAttempts; attempts++ {
		pick := sort.SearchInts(cumulative, g.rng.Intn(total)+1) + 1
		chosen[pick] = struct{}{}
	}
	if len(chosen) < models.DrawSize {
		return g.uniform(chosen)
	}

	set := make(models.CandidateSet, 0, models.DrawSize)
	for n := range chosen {
		set = append(set, n)
	}
	return set.Canonical()
}

// uniform fills the remainder of a candidate set by uniform sampling without
// replacement, starting from any already-chosen numbers.
func (g *Generator) uniform(chosen map[int]struct{}) models.CandidateSet {
	set := make(models.CandidateSet, 0, models.DrawSize)
	for n := range chosen {
		set = append(set, n)
	}
	for _, p := range g.rng.Perm(models.MaxNumber) {
		if len(set) == models.DrawSize {
			break
		}
		n := p + 1
		if _, ok := chosen[n]; ok {
			continue
		}
		set = append(set, n)
	}
	return set.Canonical()
}
