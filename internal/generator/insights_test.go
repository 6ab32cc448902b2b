package generator

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"megasena-analyzer/models"
)

func run(method models.Method, generated models.CandidateSet, matches ...int) models.BacktestRun {
	return models.BacktestRun{
		Method:    method,
		Generated: generated,
		Matches:   matches,
		Timestamp: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestInsightsRequiresSink(t *testing.T) {
	_, err := New().Insights(nil)
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestInsightsRanksByRunPerformance(t *testing.T) {
	sink := newMemorySink()
	sink.runs[models.MethodWeighted] = []models.BacktestRun{
		// weight 2+1 = 3 per number
		run(models.MethodWeighted, models.CandidateSet{1, 2, 3, 4, 5, 6}, 2, 1),
		// weight 16: a quadra counts quadratically
		run(models.MethodWeighted, models.CandidateSet{7, 8, 9, 10, 11, 12}, 4),
	}
	g := New(WithSink(sink))

	set, err := g.Insights(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.CandidateSet{7, 8, 9, 10, 11, 12}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("Insights = %v, want %v (prize run outweighs linear hits)", set, want)
	}
}

func TestInsightsReadsConfiguredSourceMethod(t *testing.T) {
	sink := newMemorySink()
	sink.runs[models.MethodAllTime] = []models.BacktestRun{
		run(models.MethodAllTime, models.CandidateSet{20, 21, 22, 23, 24, 25}, 3),
	}
	// Weighted runs exist too but must be ignored.
	sink.runs[models.MethodWeighted] = []models.BacktestRun{
		run(models.MethodWeighted, models.CandidateSet{1, 2, 3, 4, 5, 6}, 5),
	}
	g := New(WithSink(sink), WithInsightsFrom(models.MethodAllTime))

	set, err := g.Insights(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := models.CandidateSet{20, 21, 22, 23, 24, 25}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("Insights = %v, want %v from the alltime runs", set, want)
	}
}

func TestInsightsFallsBackWithoutRuns(t *testing.T) {
	start := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
	draws := drawsEvery3Days(t, start,
		[]int{1, 2, 3, 4, 5, 6},
		[]int{1, 2, 3, 4, 5, 6},
	)
	g := New(WithSink(newMemorySink()), WithRand(rand.New(rand.NewSource(5))))

	set, err := g.Insights(draws)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Falls back to weighted; only 1..6 carry weight.
	want := models.CandidateSet{1, 2, 3, 4, 5, 6}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("Insights fallback = %v, want %v", set, want)
	}
}

func TestInsightsFallsBackOnAllZeroScores(t *testing.T) {
	sink := newMemorySink()
	sink.runs[models.MethodWeighted] = []models.BacktestRun{
		run(models.MethodWeighted, models.CandidateSet{1, 2, 3, 4, 5, 6}, 0, 0, 0),
	}
	g := New(WithSink(sink), WithRand(rand.New(rand.NewSource(5))))

	set, err := g.Insights(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Valid() {
		t.Errorf("Insights fallback = %v, want a valid set", set)
	}
}

func TestInsightsPropagatesSinkError(t *testing.T) {
	sink := newMemorySink()
	sink.loadErr = errors.New("connection refused")
	g := New(WithSink(sink))

	_, err := g.Insights(nil)
	var sinkErr *models.SinkError
	if !errors.As(err, &sinkErr) {
		t.Fatalf("error = %v, want *models.SinkError", err)
	}
}

func TestRunWeight(t *testing.T) {
	tests := []struct {
		name    string
		matches []int
		want    int
	}{
		{"linear below quadra", []int{1, 2, 3}, 6},
		{"quadra squares", []int{4}, 16},
		{"sena squares", []int{6}, 36},
		{"mixed", []int{0, 3, 4}, 19},
		{"no matches", []int{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(models.MethodWeighted, models.CandidateSet{1, 2, 3, 4, 5, 6}, tt.matches...)
			if got := runWeight(r); got != tt.want {
				t.Errorf("runWeight(%v) = %d, want %d", tt.matches, got, tt.want)
			}
		})
	}
}
