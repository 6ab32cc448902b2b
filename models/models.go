package models

import (
	"fmt"
	"sort"
	"time"
)

// Lottery domain constants. Mega-Sena draws six distinct numbers out of 1..60.
const (
	DrawSize  = 6
	MaxNumber = 60
)

// Method identifies a candidate-generation strategy.
type Method string

const (
	MethodAllTime    Method = "alltime"
	MethodLastYear   Method = "lastyear"
	MethodWeighted   Method = "weighted"
	MethodInsights   Method = "insights"
	MethodPrediction Method = "prediction"
)

// Methods lists every known generation method.
var Methods = []Method{
	MethodAllTime,
	MethodLastYear,
	MethodWeighted,
	MethodInsights,
	MethodPrediction,
}

// ParseMethod validates a method name coming from CLI flags or chat commands.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown method %q", ErrInvalidArgument, s)
}

// Draw is one historical lottery result. Numbers are distinct, each in
// [1,MaxNumber], and kept sorted ascending. A Draw is never mutated after
// construction.
type Draw struct {
	Sequence uint          `json:"sequence"`
	Date     time.Time     `json:"date"`
	Numbers  [DrawSize]int `json:"numbers"`
}

// NewDraw builds a Draw from unordered numbers, validating the domain rules.
func NewDraw(sequence uint, date time.Time, numbers []int) (Draw, error) {
	if len(numbers) != DrawSize {
		return Draw{}, fmt.Errorf("%w: draw %d has %d numbers, want %d",
			ErrInvalidArgument, sequence, len(numbers), DrawSize)
	}

	sorted := make([]int, DrawSize)
	copy(sorted, numbers)
	sort.Ints(sorted)

	var d Draw
	for i, n := range sorted {
		if n < 1 || n > MaxNumber {
			return Draw{}, fmt.Errorf("%w: draw %d has number %d outside [1,%d]",
				ErrInvalidArgument, sequence, n, MaxNumber)
		}
		if i > 0 && sorted[i-1] == n {
			return Draw{}, fmt.Errorf("%w: draw %d has duplicate number %d",
				ErrInvalidArgument, sequence, n)
		}
		d.Numbers[i] = n
	}
	d.Sequence = sequence
	d.Date = date
	return d, nil
}

// Contains reports whether n was drawn.
func (d Draw) Contains(n int) bool {
	for _, v := range d.Numbers {
		if v == n {
			return true
		}
	}
	return false
}

// FrequencyTable maps every number in [1,MaxNumber] to its occurrence count.
// Absent numbers carry an explicit zero so downstream statistics always see
// the full domain.
type FrequencyTable map[int]int

// NewFrequencyTable returns an all-zero table over the full domain.
func NewFrequencyTable() FrequencyTable {
	t := make(FrequencyTable, MaxNumber)
	for n := 1; n <= MaxNumber; n++ {
		t[n] = 0
	}
	return t
}

// Total returns the sum of all counts.
func (t FrequencyTable) Total() int {
	sum := 0
	for _, c := range t {
		sum += c
	}
	return sum
}

// CandidateSet is a proposed set of numbers in canonical form: sorted
// ascending, distinct, each in [1,MaxNumber]. A nil set means "insufficient
// data" (e.g. an empty trailing window), not an error.
type CandidateSet []int

// Canonical sorts the set ascending in place and returns it.
func (c CandidateSet) Canonical() CandidateSet {
	sort.Ints(c)
	return c
}

// Valid reports whether the set has exactly DrawSize distinct members in
// range, sorted ascending.
func (c CandidateSet) Valid() bool {
	if len(c) != DrawSize {
		return false
	}
	for i, n := range c {
		if n < 1 || n > MaxNumber {
			return false
		}
		if i > 0 && c[i-1] >= n {
			return false
		}
	}
	return true
}

// Matches counts how many of the set's numbers appear in the draw.
func (c CandidateSet) Matches(d Draw) int {
	matches := 0
	for _, n := range c {
		if d.Contains(n) {
			matches++
		}
	}
	return matches
}

// ScoredNumber is a number paired with its composite prediction score.
type ScoredNumber struct {
	Number int     `json:"number"`
	Score  float64 `json:"score"`
}

// BacktestRun is one scored execution of a generation strategy: the generated
// set plus one match count per historical draw. Immutable once scored.
type BacktestRun struct {
	Method    Method       `json:"method"`
	Generated CandidateSet `json:"generated"`
	Matches   []int        `json:"matches"`
	Timestamp time.Time    `json:"timestamp"`
}

// Histogram tallies the run's match counts into buckets 0..DrawSize.
func (r BacktestRun) Histogram() map[int]int {
	h := make(map[int]int, DrawSize+1)
	for m := 0; m <= DrawSize; m++ {
		h[m] = 0
	}
	for _, m := range r.Matches {
		h[m]++
	}
	return h
}

// BacktestSession groups N back-to-back runs of the same method. Individual
// run failures are counted, not fatal; the session fails wholesale only when
// no run succeeded.
type BacktestSession struct {
	Method       Method        `json:"method"`
	Requested    int           `json:"requested"`
	Successful   int           `json:"successful"`
	Failed       int           `json:"failed"`
	Runs         []BacktestRun `json:"runs"`
	Counts       map[int]int   `json:"counts"`
	Consolidated CandidateSet  `json:"consolidated"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
}

// Summary is the read-only aggregation over the persisted runs of a method.
type Summary struct {
	Method      Method       `json:"method"`
	Generated   CandidateSet `json:"generated"`
	TotalDraws  int          `json:"total_draws"`
	RunCount    int          `json:"run_count"`
	Histogram   map[int]int  `json:"histogram"`
	LastRunTime time.Time    `json:"last_run_time"`
}
