package analytics

import (
	"fmt"
	"math"
	"math/rand"

	"megasena-analyzer/internal/frequency"
	"megasena-analyzer/models"
)

// Correlation computes the Pearson correlation matrix over per-draw binary
// presence vectors: entry [i][j] correlates "number i+1 drawn" with "number
// j+1 drawn" across the history. Constant columns (never or always drawn)
// correlate as 0 with everything.
func Correlation(draws []models.Draw) ([][]float64, error) {
	if len(draws) == 0 {
		return nil, fmt.Errorf("%w: no draws to correlate", models.ErrInsufficientData)
	}

	n := len(draws)
	presence := make([][]float64, models.MaxNumber)
	means := make([]float64, models.MaxNumber)
	for num := 1; num <= models.MaxNumber; num++ {
		col := make([]float64, n)
		sum := 0.0
		for i, d := range draws {
			if d.Contains(num) {
				col[i] = 1
				sum++
			}
		}
		presence[num-1] = col
		means[num-1] = sum / float64(n)
	}

	stddev := make([]float64, models.MaxNumber)
	for i := range presence {
		var ss float64
		for _, v := range presence[i] {
			diff := v - means[i]
			ss += diff * diff
		}
		stddev[i] = math.Sqrt(ss)
	}

	matrix := make([][]float64, models.MaxNumber)
	for i := range matrix {
		matrix[i] = make([]float64, models.MaxNumber)
		for j := range matrix[i] {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			if stddev[i] == 0 || stddev[j] == 0 {
				continue
			}
			var cov float64
			for k := 0; k < n; k++ {
				cov += (presence[i][k] - means[i]) * (presence[j][k] - means[j])
			}
			matrix[i][j] = cov / (stddev[i] * stddev[j])
		}
	}
	return matrix, nil
}

// MonteCarloResult compares simulated uniform draws against the real record.
type MonteCarloResult struct {
	Simulated []models.ScoredNumber `json:"simulated"`
	Real      []models.ScoredNumber `json:"real"`
}

// MonteCarlo simulates the given number of uniform 6-of-60 draws and returns
// the top-6 frequencies from the simulation next to the top-6 from the real
// history, using the supplied random source for reproducibility.
func MonteCarlo(draws []models.Draw, simulations int, rng *rand.Rand) (*MonteCarloResult, error) {
	if simulations < 1 {
		return nil, fmt.Errorf("%w: simulations must be >= 1, got %d", models.ErrInvalidArgument, simulations)
	}

	simulated := models.NewFrequencyTable()
	for i := 0; i < simulations; i++ {
		perm := rng.Perm(models.MaxNumber)
		for _, p := range perm[:models.DrawSize] {
			simulated[p+1]++
		}
	}

	real := frequency.Count(draws)
	return &MonteCarloResult{
		Simulated: topScored(simulated, models.DrawSize),
		Real:      topScored(real, models.DrawSize),
	}, nil
}

func topScored(table models.FrequencyTable, k int) []models.ScoredNumber {
	top := frequency.TopK(table, k)
	scored := make([]models.ScoredNumber, len(top))
	for i, n := range top {
		scored[i] = models.ScoredNumber{Number: n, Score: float64(table[n])}
	}
	return scored
}
