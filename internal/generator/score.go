package generator

import (
	"fmt"
	"sort"
	"time"

	"megasena-analyzer/internal/frequency"
	"megasena-analyzer/models"
)

// Composite score weights and windows. These values are calibrated for
// behavioral parity with the historical scoring and must not drift silently;
// change them only alongside the recorded heuristic.
const (
	recentWeight     = 0.4
	historicalWeight = 0.3
	gapWeight        = 0.2

	recentWindowDraws = 50
	gapNormalization  = 20.0
)

// PredictionTopN is how many scored numbers front ends display.
const PredictionTopN = 10

// ScoreAll computes the composite prediction score for every number in
// [1,60]: weighted blend of the frequency ratio over the last 50 draws (or
// all draws when fewer exist), the all-time frequency ratio, and a gap score
// that saturates at 1.0 once a number has sat out 20 draws (or never
// appeared). The result is sorted by score descending, ties by ascending
// number.
func (g *Generator) ScoreAll(draws []models.Draw) ([]models.ScoredNumber, error) {
	if len(draws) == 0 {
		return nil, fmt.Errorf("%w: no draws to score", models.ErrInsufficientData)
	}

	recentStart := 0
	if len(draws) > recentWindowDraws {
		recentStart = len(draws) - recentWindowDraws
	}
	recent := draws[recentStart:]

	historical := frequency.Count(draws)
	recentTable := frequency.Count(recent)
	lastSeen := lastAppearanceIndex(draws)

	scored := make([]models.ScoredNumber, 0, models.MaxNumber)
	for n := 1; n <= models.MaxNumber; n++ {
		recentRatio := float64(recentTable[n]) / float64(len(recent))
		historicalRatio := float64(historical[n]) / float64(len(draws))

		gapScore := 1.0
		if idx, ok := lastSeen[n]; ok {
			gap := float64(len(draws) - 1 - idx)
			gapScore = gap / gapNormalization
			if gapScore > 1.0 {
				gapScore = 1.0
			}
		}

		scored = append(scored, models.ScoredNumber{
			Number: n,
			Score:  recentWeight*recentRatio + historicalWeight*historicalRatio + gapWeight*gapScore,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Number < scored[j].Number
	})
	return scored, nil
}

// Prediction returns the top six composite-scored numbers as a candidate set.
func (g *Generator) Prediction(draws []models.Draw) (models.CandidateSet, error) {
	scored, err := g.ScoreAll(draws)
	if err != nil {
		return nil, err
	}
	set := make(models.CandidateSet, 0, models.DrawSize)
	for _, s := range scored[:models.DrawSize] {
		set = append(set, s.Number)
	}
	return set.Canonical(), nil
}

// lastAppearanceIndex maps each number to the index of the most recent draw
// containing it. Numbers that never appeared are absent.
func lastAppearanceIndex(draws []models.Draw) map[int]int {
	last := make(map[int]int, models.MaxNumber)
	for i, d := range draws {
		for _, n := range d.Numbers {
			last[n] = i
		}
	}
	return last
}

// NumberGaps returns, per number, the list of draw-count gaps between its
// consecutive appearances. Numbers that appeared at most once map to an empty
// list. All sixty numbers are present in the result.
func NumberGaps(draws []models.Draw) map[int][]int {
	gaps := make(map[int][]int, models.MaxNumber)
	prev := make(map[int]int, models.MaxNumber)
	for n := 1; n <= models.MaxNumber; n++ {
		gaps[n] = []int{}
	}
	for i, d := range draws {
		for _, n := range d.Numbers {
			if p, ok := prev[n]; ok {
				gaps[n] = append(gaps[n], i-p)
			}
			prev[n] = i
		}
	}
	return gaps
}

// CycleDistribution tallies draws per weekday and per month, the calendar
// rhythms of the draw schedule.
type CycleDistribution struct {
	Weekday map[time.Weekday]int `json:"weekday_distribution"`
	Month   map[time.Month]int   `json:"month_distribution"`
}

// Cycles computes calendar distributions over the draw history.
func Cycles(draws []models.Draw) CycleDistribution {
	dist := CycleDistribution{
		Weekday: make(map[time.Weekday]int),
		Month:   make(map[time.Month]int),
	}
	for _, d := range draws {
		dist.Weekday[d.Date.Weekday()]++
		dist.Month[d.Date.Month()]++
	}
	return dist
}
