// Package analytics holds the descriptive statistics that go beyond plain
// frequency counting: conditional probability, the chi-square uniformity
// test, presence correlation and Monte Carlo comparison. None of these claim
// predictive power; they describe the historical record.
package analytics

import (
	"fmt"

	"megasena-analyzer/internal/frequency"
	"megasena-analyzer/models"
)

// Capabilities reports which analyses this build provides. Callers check the
// flag before invoking instead of interpreting a nil result.
type Capabilities struct {
	ChiSquare   bool
	Correlation bool
	MonteCarlo  bool
}

// Capable returns the analyses available in this build. All are compiled in;
// the flags exist so front ends have a single place to query.
func Capable() Capabilities {
	return Capabilities{ChiSquare: true, Correlation: true, MonteCarlo: true}
}

// ConditionalProbability returns the fraction of draws containing given that
// also contain target. given == target is trivially 1.0; a given that never
// occurred yields 0.0 so the function stays total over valid inputs.
func ConditionalProbability(draws []models.Draw, given, target int) (float64, error) {
	if given < 1 || given > models.MaxNumber {
		return 0, fmt.Errorf("%w: given %d outside [1,%d]", models.ErrInvalidArgument, given, models.MaxNumber)
	}
	if target < 1 || target > models.MaxNumber {
		return 0, fmt.Errorf("%w: target %d outside [1,%d]", models.ErrInvalidArgument, target, models.MaxNumber)
	}
	if given == target {
		return 1.0, nil
	}

	countGiven, countBoth := 0, 0
	for _, d := range draws {
		if d.Contains(given) {
			countGiven++
			if d.Contains(target) {
				countBoth++
			}
		}
	}
	if countGiven == 0 {
		return 0.0, nil
	}
	return float64(countBoth) / float64(countGiven), nil
}

// ChiSquareUniformity tests observed per-number frequency against a uniform
// expectation over the full [1,60] domain. A low p-value says the observed
// frequencies deviate from uniform; it says nothing about future draws.
func ChiSquareUniformity(draws []models.Draw) (statistic, pValue float64, err error) {
	table := frequency.Count(draws)
	total := table.Total()
	if total == 0 {
		return 0, 0, fmt.Errorf("%w: no draws to test", models.ErrInsufficientData)
	}

	expected := float64(total) / float64(models.MaxNumber)
	for n := 1; n <= models.MaxNumber; n++ {
		diff := float64(table[n]) - expected
		statistic += diff * diff / expected
	}

	// degrees of freedom = bins - 1
	pValue = chiSquareSurvival(statistic, float64(models.MaxNumber-1))
	return statistic, pValue, nil
}
