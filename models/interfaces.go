package models

import "time"

// DrawSource supplies the ordered draw history. Implementations must return
// draws sorted by sequence ascending and guarantee every draw carries exactly
// DrawSize distinct numbers in range; the engine does not re-validate.
type DrawSource interface {
	Load() ([]Draw, error)

	// Fingerprint returns an opaque token identifying the current content
	// version of the source. It changes whenever the underlying data does,
	// which is what invalidates cached snapshots.
	Fingerprint() (string, error)
}

// DrawStore extends a DrawSource with the write side used by ingestion.
type DrawStore interface {
	DrawSource

	// LastSequence returns the highest stored draw sequence, 0 when empty.
	LastSequence() (uint, error)
	InsertDraw(Draw) error
}

// ResultSink persists backtest runs. SaveRuns atomically replaces every
// stored run for the method with the given slice, so readers never observe a
// partially-written set and "current strategy result" stays a single lookup.
type ResultSink interface {
	SaveRuns(method Method, runs []BacktestRun) error
	LoadRuns(method Method) ([]BacktestRun, error)
}

// Clock abstracts wall-clock access so trailing-window strategies stay
// pinnable in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
