package analytics

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"megasena-analyzer/models"
)

func TestCorrelation(t *testing.T) {
	// 1 and 2 always co-occur, 1 and 7 never do.
	draws := []models.Draw{
		mustDraw(t, 1, []int{1, 2, 3, 4, 5, 6}),
		mustDraw(t, 2, []int{1, 2, 30, 31, 32, 33}),
		mustDraw(t, 3, []int{7, 8, 9, 10, 11, 12}),
		mustDraw(t, 4, []int{7, 8, 40, 41, 42, 43}),
	}

	matrix, err := Correlation(draws)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matrix) != models.MaxNumber {
		t.Fatalf("matrix has %d rows, want %d", len(matrix), models.MaxNumber)
	}

	if got := matrix[0][0]; got != 1 {
		t.Errorf("self correlation = %v, want 1", got)
	}
	if got := matrix[0][1]; math.Abs(got-1) > 1e-12 {
		t.Errorf("corr(1,2) = %v, want 1", got)
	}
	if got := matrix[0][6]; math.Abs(got+1) > 1e-12 {
		t.Errorf("corr(1,7) = %v, want -1", got)
	}
	if got, want := matrix[0][6], matrix[6][0]; got != want {
		t.Errorf("matrix not symmetric: [0][6]=%v [6][0]=%v", got, want)
	}
	// 60 never appears; its column is constant.
	if got := matrix[59][0]; got != 0 {
		t.Errorf("corr with never-drawn number = %v, want 0", got)
	}
}

func TestCorrelationEmpty(t *testing.T) {
	_, err := Correlation(nil)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
}

func TestMonteCarlo(t *testing.T) {
	draws := sampleDraws(t)
	rng := rand.New(rand.NewSource(1))

	result, err := MonteCarlo(draws, 200, rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Simulated) != models.DrawSize || len(result.Real) != models.DrawSize {
		t.Fatalf("got %d simulated / %d real entries, want %d each",
			len(result.Simulated), len(result.Real), models.DrawSize)
	}
	if result.Real[0].Number != 1 {
		t.Errorf("top real number = %d, want 1", result.Real[0].Number)
	}
	for _, s := range result.Simulated {
		if s.Number < 1 || s.Number > models.MaxNumber {
			t.Errorf("simulated number %d out of range", s.Number)
		}
		if s.Score <= 0 {
			t.Errorf("simulated number %d has score %v, want > 0", s.Number, s.Score)
		}
	}
}

func TestMonteCarloInvalidSimulations(t *testing.T) {
	_, err := MonteCarlo(sampleDraws(t), 0, rand.New(rand.NewSource(1)))
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
}
