package analytics

import (
	"math"
	"testing"
)

func TestChiSquareSurvival(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		dof  float64
		want float64
	}{
		// Reference values from standard chi-square tables.
		{"median of chi2(1)", 0.455, 1, 0.50},
		{"95th percentile of chi2(1)", 3.841, 1, 0.05},
		{"chi2(2) at its mean", 2.0, 2, math.Exp(-1)},
		{"95th percentile of chi2(10)", 18.307, 10, 0.05},
		{"95th percentile of chi2(59)", 77.93, 59, 0.05},
		{"zero statistic", 0, 59, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chiSquareSurvival(tt.x, tt.dof)
			if math.Abs(got-tt.want) > 1e-3 {
				t.Errorf("chiSquareSurvival(%v, %v) = %v, want %v", tt.x, tt.dof, got, tt.want)
			}
		})
	}
}

func TestUpperIncompleteGammaBounds(t *testing.T) {
	if got := upperIncompleteGamma(5, 0); got != 1.0 {
		t.Errorf("Q(5,0) = %v, want 1", got)
	}
	if got := upperIncompleteGamma(-1, 2); !math.IsNaN(got) {
		t.Errorf("Q(-1,2) = %v, want NaN", got)
	}
	if got := upperIncompleteGamma(5, -1); !math.IsNaN(got) {
		t.Errorf("Q(5,-1) = %v, want NaN", got)
	}

	// Q is monotonically decreasing in x.
	prev := 1.0
	for x := 1.0; x <= 100; x += 5 {
		q := upperIncompleteGamma(29.5, x)
		if q > prev {
			t.Fatalf("Q(29.5, %v) = %v exceeds Q at smaller x %v", x, q, prev)
		}
		prev = q
	}
}
