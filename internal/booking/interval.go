package booking

import "time"

// Source identifies where a booking originated. It affects display and
// deletion policy only, never interval arithmetic.
type Source string

const (
	SourceManual     Source = "manual"
	SourceWeb        Source = "web"
	SourceAirbnb     Source = "airbnb"
	SourceBookingCom Source = "booking.com"
)

// Interval is one booking's occupied span for a single property.
//
// End uses checkout semantics: the guest departs on the morning of End, so
// the occupied nights are the half-open range [Start, End). Any layer that
// needs inclusive-end display converts at its own boundary, never here.
type Interval struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	Start      Date      `json:"start_date"`
	End        Date      `json:"end_date"`
	Source     Source    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

// Nights is the number of occupied nights.
func (iv Interval) Nights() int { return iv.Start.DaysUntil(iv.End) }

// Validate reports whether the interval covers at least one night.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether a and b share at least one occupied night.
// Both intervals must already be valid (see Validate); that precondition is
// the caller's to enforce, not checked here.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Horizon is the half-open [Start, End) window availability queries run
// against. It is always supplied by the caller; the engine never reads the
// wall clock.
type Horizon struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// HorizonFrom builds an n-night horizon starting at from.
func HorizonFrom(from Date, nights int) Horizon {
	return Horizon{Start: from, End: from.AddDays(nights)}
}

// Nights is the total number of nights the horizon spans.
func (h Horizon) Nights() int { return h.Start.DaysUntil(h.End) }

func (h Horizon) interval() Interval { return Interval{Start: h.Start, End: h.End} }
