package booking

import (
	"errors"
	"fmt"
)

// ErrInvalidRange rejects bookings that do not cover at least one night.
var ErrInvalidRange = errors.New("booking must start strictly before it ends")

// ConflictError reports a candidate overlapping an existing active booking.
// It carries the clashing booking's identity and range so callers can show
// an actionable message instead of a generic failure.
type ConflictError struct {
	ConflictingID string
	Start         Date
	End           Date
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("dates clash with existing booking %s (%s to %s)",
		e.ConflictingID, e.Start, e.End)
}

// NotFoundError reports an operation on a booking that is not in the active
// set visible to the caller.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("booking %s not found", e.ID)
}

// CanCreate is the single gate every caller runs before submitting a new
// booking: it validates the candidate range and checks it against the
// property's active intervals, returning the first conflict found.
//
// This is a fast-fail UX check only. The persistence layer's exclusion
// constraint remains the authoritative guard against double-booking.
func CanCreate(existing []Interval, candidate Interval) error {
	if err := candidate.Validate(); err != nil {
		return err
	}
	for _, iv := range existing {
		if Overlaps(candidate, iv) {
			return &ConflictError{ConflictingID: iv.ID, Start: iv.Start, End: iv.End}
		}
	}
	return nil
}
