package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyMission is returned when a mission with zero events is analyzed.
// A vacuous analysis would be misleading, so this fails fast.
var ErrEmptyMission = errors.New("mission has no events")

// MalformedEventError marks an event that could not be normalized. The event
// is skipped and noted; it never aborts the mission.
type MalformedEventError struct {
	Field string
	Value any
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event: field %q with value %v", e.Field, e.Value)
}

// RetrievalError marks a doctrine index lookup that failed or timed out for
// one event. The aggregator substitutes an unclear verdict and records a
// warning instead of aborting.
type RetrievalError struct {
	Query string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("doctrine lookup failed for query %q: %v", e.Query, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
