package generator

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"megasena-analyzer/models"
)

func TestScoreAllWeights(t *testing.T) {
	start := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
	draws := drawsEvery3Days(t, start,
		[]int{1, 2, 3, 4, 5, 6},
		[]int{1, 7, 8, 9, 10, 11},
	)
	g := New()

	scored, err := g.ScoreAll(draws)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scored) != models.MaxNumber {
		t.Fatalf("scored %d numbers, want %d", len(scored), models.MaxNumber)
	}

	byNumber := make(map[int]float64, len(scored))
	for _, s := range scored {
		byNumber[s.Number] = s.Score
	}

	// Number 1 appears in both draws and last appeared in the final draw:
	// recent 2/2, historical 2/2, gap 0/20.
	if got, want := byNumber[1], 0.4*1.0+0.3*1.0+0.2*0.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("score(1) = %v, want %v", got, want)
	}
	// Number 2 appears only in the first draw: gap of one draw since.
	if got, want := byNumber[2], 0.4*0.5+0.3*0.5+0.2*(1.0/20.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("score(2) = %v, want %v", got, want)
	}
	// Number 60 never appeared: only the saturated gap term contributes.
	if got, want := byNumber[60], 0.2*1.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("score(60) = %v, want %v", got, want)
	}

	// Sorted by score descending.
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Fatalf("scores out of order at %d: %v after %v", i, scored[i], scored[i-1])
		}
	}
}

func TestScoreAllGapSaturation(t *testing.T) {
	start := time.Date(2020, time.January, 4, 0, 0, 0, 0, time.UTC)
	sets := make([][]int, 30)
	sets[0] = []int{1, 2, 3, 4, 5, 6}
	for i := 1; i < 30; i++ {
		sets[i] = []int{7, 8, 9, 10, 11, 12}
	}
	g := New()

	scored, err := g.ScoreAll(drawsEvery3Days(t, start, sets...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byNumber := make(map[int]float64, len(scored))
	for _, s := range scored {
		byNumber[s.Number] = s.Score
	}

	// Number 1 sat out 29 draws; its gap score caps at 1.0, same as a number
	// that never appeared.
	want := 0.4*(1.0/30.0) + 0.3*(1.0/30.0) + 0.2*1.0
	if got := byNumber[1]; math.Abs(got-want) > 1e-12 {
		t.Errorf("score(1) = %v, want %v (saturated gap)", got, want)
	}
}

func TestScoreAllEmpty(t *testing.T) {
	_, err := New().ScoreAll(nil)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}

func TestPrediction(t *testing.T) {
	start := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
	draws := drawsEvery3Days(t, start,
		[]int{1, 2, 3, 4, 5, 6},
		[]int{1, 2, 3, 4, 5, 6},
		[]int{1, 2, 3, 4, 5, 6},
	)
	g := New()

	set, err := g.Prediction(draws)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Valid() {
		t.Fatalf("Prediction = %v, want a valid set", set)
	}
	// The six ever-present numbers dominate every component but gap; their
	// combined weight 0.7 beats the 0.2 gap ceiling of absent numbers.
	want := models.CandidateSet{1, 2, 3, 4, 5, 6}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("Prediction = %v, want %v", set, want)
	}
}

func TestNumberGaps(t *testing.T) {
	start := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
	draws := drawsEvery3Days(t, start,
		[]int{1, 2, 3, 4, 5, 6},
		[]int{7, 8, 9, 10, 11, 12},
		[]int{1, 13, 14, 15, 16, 17},
		[]int{1, 20, 21, 22, 23, 24},
	)

	gaps := NumberGaps(draws)
	if len(gaps) != models.MaxNumber {
		t.Fatalf("gaps cover %d numbers, want %d", len(gaps), models.MaxNumber)
	}
	if got := gaps[1]; !reflect.DeepEqual(got, []int{2, 1}) {
		t.Errorf("gaps[1] = %v, want [2 1]", got)
	}
	if got := gaps[7]; len(got) != 0 {
		t.Errorf("gaps[7] = %v, want empty for a single appearance", got)
	}
	if got := gaps[60]; len(got) != 0 {
		t.Errorf("gaps[60] = %v, want empty for a number never drawn", got)
	}
}

func TestCycles(t *testing.T) {
	saturday := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	draws := []models.Draw{
		mustDraw(t, 1, saturday, []int{1, 2, 3, 4, 5, 6}),
		mustDraw(t, 2, wednesday, []int{7, 8, 9, 10, 11, 12}),
		mustDraw(t, 3, saturday.AddDate(0, 0, 7), []int{13, 14, 15, 16, 17, 18}),
	}

	dist := Cycles(draws)
	if got := dist.Weekday[time.Saturday]; got != 2 {
		t.Errorf("Saturday draws = %d, want 2", got)
	}
	if got := dist.Weekday[time.Wednesday]; got != 1 {
		t.Errorf("Wednesday draws = %d, want 1", got)
	}
	if got := dist.Month[time.January]; got != 3 {
		t.Errorf("January draws = %d, want 3", got)
	}
}
