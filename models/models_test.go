package models

import (
	"errors"
	"testing"
	"time"
)

func TestNewDraw(t *testing.T) {
	date := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)

	d, err := NewDraw(10, date, []int{42, 1, 60, 17, 33, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [DrawSize]int{1, 5, 17, 33, 42, 60}
	if d.Numbers != want {
		t.Errorf("numbers = %v, want sorted %v", d.Numbers, want)
	}
	if !d.Contains(17) || d.Contains(18) {
		t.Error("Contains misreports membership")
	}
}

func TestNewDrawRejectsInvalid(t *testing.T) {
	date := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		numbers []int
	}{
		{"too few", []int{1, 2, 3, 4, 5}},
		{"too many", []int{1, 2, 3, 4, 5, 6, 7}},
		{"zero", []int{0, 2, 3, 4, 5, 6}},
		{"above max", []int{1, 2, 3, 4, 5, 61}},
		{"duplicate", []int{1, 1, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDraw(1, date, tt.numbers)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	for _, m := range Methods {
		got, err := ParseMethod(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMethod(%q) = %v, %v", m, got, err)
		}
	}
	if _, err := ParseMethod("astrology"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseMethod(astrology) error = %v, want ErrInvalidArgument", err)
	}
}

func TestCandidateSetValid(t *testing.T) {
	tests := []struct {
		name string
		set  CandidateSet
		want bool
	}{
		{"canonical", CandidateSet{1, 2, 3, 4, 5, 6}, true},
		{"nil", nil, false},
		{"short", CandidateSet{1, 2, 3}, false},
		{"unsorted", CandidateSet{2, 1, 3, 4, 5, 6}, false},
		{"duplicate", CandidateSet{1, 1, 3, 4, 5, 6}, false},
		{"out of range", CandidateSet{1, 2, 3, 4, 5, 61}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.Valid(); got != tt.want {
				t.Errorf("Valid(%v) = %v, want %v", tt.set, got, tt.want)
			}
		})
	}
}

func TestCandidateSetMatches(t *testing.T) {
	date := time.Date(2024, time.January, 6, 0, 0, 0, 0, time.UTC)
	d, err := NewDraw(1, date, []int{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("NewDraw: %v", err)
	}

	set := CandidateSet{1, 2, 3, 40, 50, 60}
	if got := set.Matches(d); got != 3 {
		t.Errorf("Matches = %d, want 3", got)
	}
	if got := CandidateSet(nil).Matches(d); got != 0 {
		t.Errorf("nil set Matches = %d, want 0", got)
	}
}

func TestBacktestRunHistogram(t *testing.T) {
	run := BacktestRun{Matches: []int{0, 0, 2, 4, 2}}

	h := run.Histogram()
	if h[0] != 2 || h[2] != 2 || h[4] != 1 {
		t.Errorf("histogram = %v, want 0:2 2:2 4:1", h)
	}
	// every bucket is present, hit or not
	if len(h) != DrawSize+1 {
		t.Errorf("histogram has %d buckets, want %d", len(h), DrawSize+1)
	}
}

func TestSinkError(t *testing.T) {
	cause := errors.New("connection reset")
	err := &SinkError{Op: "save run", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("SinkError does not unwrap to its cause")
	}
	if err.Error() == "" {
		t.Error("SinkError has empty message")
	}
}
