package analytics

import "math"

// chiSquareSurvival returns P(X >= x) for a chi-square variable with the
// given degrees of freedom, i.e. the regularized upper incomplete gamma
// Q(dof/2, x/2). No statistics library ships with the toolchain, so the
// series/continued-fraction evaluation lives here.
func chiSquareSurvival(x, dof float64) float64 {
	if x <= 0 {
		return 1.0
	}
	return upperIncompleteGamma(dof/2, x/2)
}

const (
	gammaEps     = 3e-14
	gammaMaxIter = 500
)

// upperIncompleteGamma computes Q(a, x) = Γ(a, x)/Γ(a). For x < a+1 the
// series for P(a, x) converges faster; otherwise the continued fraction for
// Q(a, x) does.
func upperIncompleteGamma(a, x float64) float64 {
	if x < 0 || a <= 0 {
		return math.NaN()
	}
	if x == 0 {
		return 1.0
	}
	if x < a+1 {
		return 1.0 - lowerSeries(a, x)
	}
	return upperContinuedFraction(a, x)
}

// lowerSeries evaluates P(a, x) by its power series.
func lowerSeries(a, x float64) float64 {
	lg, _ := math.Lgamma(a)
	term := 1.0 / a
	sum := term
	ap := a
	for i := 0; i < gammaMaxIter; i++ {
		ap++
		term *= x / ap
		sum += term
		if math.Abs(term) < math.Abs(sum)*gammaEps {
			break
		}
	}
	return sum * math.Exp(-x+a*math.Log(x)-lg)
}

// upperContinuedFraction evaluates Q(a, x) by its Lentz continued fraction.
func upperContinuedFraction(a, x float64) float64 {
	lg, _ := math.Lgamma(a)
	const tiny = 1e-300

	b := x + 1 - a
	c := 1 / tiny
	d := 1 / b
	h := d
	for i := 1; i <= gammaMaxIter; i++ {
		an := -float64(i) * (float64(i) - a)
		b += 2
		d = an*d + b
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = b + an/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < gammaEps {
			break
		}
	}
	return math.Exp(-x+a*math.Log(x)-lg) * h
}
