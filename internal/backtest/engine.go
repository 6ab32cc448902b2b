// Package backtest replays candidate-generation strategies against the full
// historical draw record and scores their hit rates. The engine owns no
// long-lived state beyond a call's working memory; draws come from the
// injected source and run records go to the injected sink.
package backtest

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"megasena-analyzer/internal/generator"
	"megasena-analyzer/models"
)

// State tracks where the engine is in a run, for observability.
type State int32

const (
	StateIdle State = iota
	StateGenerating
	StateScoring
	StateConsolidating
	StatePersisted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateScoring:
		return "scoring"
	case StateConsolidating:
		return "consolidating"
	case StatePersisted:
		return "persisted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressFunc receives successful/failed counts after every run of a
// session, so callers can poll long sessions instead of blocking opaquely.
type ProgressFunc func(successful, failed int)

// Engine wires a draw source, a generator and a result sink together.
type Engine struct {
	source models.DrawSource
	sink   models.ResultSink
	gen    *generator.Generator
	clock  models.Clock
	state  atomic.Int32
	logger zerolog.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(source models.DrawSource, sink models.ResultSink, gen *generator.Generator) *Engine {
	return &Engine{
		source: source,
		sink:   sink,
		gen:    gen,
		clock:  models.ClockFunc(time.Now),
		logger: log.With().Str("component", "backtest").Logger(),
	}
}

// WithClock pins run timestamps, for tests.
func (e *Engine) WithClock(c models.Clock) *Engine {
	e.clock = c
	return e
}

// State reports the engine's current phase.
func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// RunOnce generates one candidate set for the method, scores it against every
// historical draw and persists the run, replacing any prior runs for the same
// method.
func (e *Engine) RunOnce(ctx context.Context, method models.Method) (*models.BacktestRun, error) {
	run, err := e.scoreOnce(ctx, method)
	if err != nil {
		e.setState(StateFailed)
		return nil, err
	}

	if err := e.sink.SaveRuns(method, []models.BacktestRun{*run}); err != nil {
		e.setState(StateFailed)
		return nil, &models.SinkError{Op: "save run", Err: err}
	}
	e.setState(StatePersisted)
	e.setState(StateIdle)
	return run, nil
}

// scoreOnce is the generate+score half of a run, without persistence. Each
// call re-generates the candidate set, so randomized strategies differ across
// the runs of a session while deterministic ones repeat exactly.
func (e *Engine) scoreOnce(ctx context.Context, method models.Method) (*models.BacktestRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	draws, err := e.source.Load()
	if err != nil {
		return nil, fmt.Errorf("load draws: %w", err)
	}
	if len(draws) == 0 {
		return nil, fmt.Errorf("%w: draw repository is empty", models.ErrInsufficientData)
	}

	e.setState(StateGenerating)
	set, err := e.gen.Generate(method, draws)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", method, err)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: %s produced no candidate set", models.ErrInsufficientData, method)
	}

	e.setState(StateScoring)
	matches := make([]int, len(draws))
	for i, d := range draws {
		matches[i] = set.Matches(d)
	}

	run := &models.BacktestRun{
		Method:    method,
		Generated: set,
		Matches:   matches,
		Timestamp: e.clock.Now(),
	}
	e.logger.Debug().
		Str("method", string(method)).
		Ints("generated", set).
		Int("draws", len(draws)).
		Msg("Run scored")
	return run, nil
}

// RunMultiple executes the method `times` times back-to-back and consolidates
// the generated sets by cross-run frequency. Individual run failures are
// counted, not fatal; the session errors only when every run failed. All
// successful runs replace the method's persisted history in one atomic write.
func (e *Engine) RunMultiple(ctx context.Context, method models.Method, times int, onProgress ProgressFunc) (*models.BacktestSession, error) {
	if times < 1 {
		return nil, fmt.Errorf("%w: times must be >= 1, got %d", models.ErrInvalidArgument, times)
	}

	session := &models.BacktestSession{
		Method:    method,
		Requested: times,
		StartedAt: e.clock.Now(),
	}

	for i := 0; i < times; i++ {
		run, err := e.scoreOnce(ctx, method)
		if err != nil {
			if ctx.Err() != nil {
				e.setState(StateFailed)
				return nil, ctx.Err()
			}
			session.Failed++
			e.logger.Warn().Err(err).
				Str("method", string(method)).
				Int("run", i+1).
				Msg("Backtest run failed")
		} else {
			session.Successful++
			session.Runs = append(session.Runs, *run)
		}
		if onProgress != nil {
			onProgress(session.Successful, session.Failed)
		}
	}

	if session.Successful == 0 {
		e.setState(StateFailed)
		return nil, fmt.Errorf("%w: all %d runs failed", models.ErrInsufficientData, times)
	}

	if times > 1 {
		e.setState(StateConsolidating)
	}
	session.Counts, session.Consolidated = Consolidate(session.Runs)

	if err := e.sink.SaveRuns(method, session.Runs); err != nil {
		e.setState(StateFailed)
		return nil, &models.SinkError{Op: "save session runs", Err: err}
	}
	session.FinishedAt = e.clock.Now()
	e.setState(StatePersisted)
	e.setState(StateIdle)

	e.logger.Info().
		Str("method", string(method)).
		Int("requested", session.Requested).
		Int("successful", session.Successful).
		Int("failed", session.Failed).
		Ints("consolidated", session.Consolidated).
		Msg("Backtest session finished")
	return session, nil
}

// Consolidate tallies each number's appearance count across the runs'
// generated sets and derives the top-6 consolidated set, ties broken by
// ascending number so the result is reproducible.
func Consolidate(runs []models.BacktestRun) (map[int]int, models.CandidateSet) {
	counts := make(map[int]int)
	for _, run := range runs {
		for _, n := range run.Generated {
			counts[n]++
		}
	}
	if len(counts) == 0 {
		return counts, nil
	}

	numbers := make([]int, 0, len(counts))
	for n := range counts {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool {
		if counts[numbers[i]] != counts[numbers[j]] {
			return counts[numbers[i]] > counts[numbers[j]]
		}
		return numbers[i] < numbers[j]
	})

	k := models.DrawSize
	if k > len(numbers) {
		k = len(numbers)
	}
	set := make(models.CandidateSet, k)
	copy(set, numbers[:k])
	return counts, set.Canonical()
}

// Summary aggregates the persisted runs of a method: the most recent
// generated set, how many draws each run was scored against, and the match
// histogram across all stored runs.
func (e *Engine) Summary(method models.Method) (*models.Summary, error) {
	runs, err := e.sink.LoadRuns(method)
	if err != nil {
		return nil, &models.SinkError{Op: "load runs", Err: err}
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no persisted runs for %s", models.ErrInsufficientData, method)
	}

	summary := &models.Summary{
		Method:    method,
		RunCount:  len(runs),
		Histogram: make(map[int]int, models.DrawSize+1),
	}
	for m := 0; m <= models.DrawSize; m++ {
		summary.Histogram[m] = 0
	}

	var latest models.BacktestRun
	for _, run := range runs {
		for _, m := range run.Matches {
			summary.Histogram[m]++
		}
		if run.Timestamp.After(latest.Timestamp) || latest.Generated == nil {
			latest = run
		}
	}
	summary.Generated = latest.Generated
	summary.TotalDraws = len(latest.Matches)
	summary.LastRunTime = latest.Timestamp
	return summary, nil
}
