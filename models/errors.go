package models

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks caller mistakes: numbers outside [1,MaxNumber],
// run counts below one, malformed draws.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInsufficientData marks operations that semantically require data but got
// an empty draw set or window. Operations with a legal empty result return the
// empty result instead of this error.
var ErrInsufficientData = errors.New("insufficient data")

// SinkError wraps a persistence collaborator failure with the operation that
// triggered it. The underlying cause stays reachable via errors.Unwrap.
type SinkError struct {
	Op  string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("result sink: %s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
