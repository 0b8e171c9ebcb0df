package integration

import (
	"fmt"
	"testing"

	"github.com/gnezdo/gnezdo/internal/booking"
	"github.com/gnezdo/gnezdo/internal/policy"
)

// calendar is an in-memory stand-in for the booking store, enforcing the
// same create/delete rules the HTTP layer applies.
type calendar struct {
	nextID    int
	intervals []booking.Interval
	pol       policy.Policy
}

func newCalendar(pol policy.Policy) *calendar {
	return &calendar{nextID: 1, pol: pol}
}

func (c *calendar) create(start, end booking.Date, src booking.Source) (booking.Interval, error) {
	candidate := booking.Interval{
		ID:     fmt.Sprintf("b%d", c.nextID),
		Start:  start,
		End:    end,
		Source: src,
	}
	if err := booking.CanCreate(c.intervals, candidate); err != nil {
		return booking.Interval{}, err
	}
	c.nextID++
	c.intervals = append(c.intervals, candidate)
	return candidate, nil
}

func (c *calendar) delete(id string) error {
	for i, iv := range c.intervals {
		if iv.ID != id {
			continue
		}
		if !c.pol.IsDeletable(iv.Source) {
			return &booking.NotFoundError{ID: id}
		}
		c.intervals = append(c.intervals[:i], c.intervals[i+1:]...)
		return nil
	}
	return &booking.NotFoundError{ID: id}
}

func mustDate(t *testing.T, s string) booking.Date {
	t.Helper()
	d, err := booking.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

// TestSeasonLifecycle walks a property through a summer season: OTA imports
// and manual bookings land, a guest cancels, and availability queries stay
// consistent throughout.
func TestSeasonLifecycle(t *testing.T) {
	cal := newCalendar(policy.Default())

	// June fills up from three channels.
	if _, err := cal.create(mustDate(t, "2024-06-01"), mustDate(t, "2024-06-08"), booking.SourceAirbnb); err != nil {
		t.Fatalf("airbnb import failed: %v", err)
	}
	manual, err := cal.create(mustDate(t, "2024-06-10"), mustDate(t, "2024-06-14"), booking.SourceManual)
	if err != nil {
		t.Fatalf("manual booking failed: %v", err)
	}
	if _, err := cal.create(mustDate(t, "2024-06-20"), mustDate(t, "2024-06-27"), booking.SourceBookingCom); err != nil {
		t.Fatalf("booking.com import failed: %v", err)
	}

	// Back-to-back turnover on the airbnb checkout day is accepted.
	if _, err := cal.create(mustDate(t, "2024-06-08"), mustDate(t, "2024-06-10"), booking.SourceWeb); err != nil {
		t.Fatalf("back-to-back booking rejected: %v", err)
	}

	// A double-booking attempt across the manual stay is named precisely.
	_, err = cal.create(mustDate(t, "2024-06-12"), mustDate(t, "2024-06-16"), booking.SourceWeb)
	conflict, ok := err.(*booking.ConflictError)
	if !ok {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ConflictingID != manual.ID {
		t.Errorf("conflict names %s, want %s", conflict.ConflictingID, manual.ID)
	}

	// June availability: gaps at 14-20 and 27-01.
	june := booking.Horizon{Start: mustDate(t, "2024-06-01"), End: mustDate(t, "2024-07-01")}
	gaps := booking.FindGaps(cal.intervals, june)
	if len(gaps) != 2 {
		t.Fatalf("got %d gaps, want 2: %+v", len(gaps), gaps)
	}
	if !gaps[0].Start.Equal(mustDate(t, "2024-06-14")) || gaps[0].Nights != 6 {
		t.Errorf("first gap = %+v, want 2024-06-14 for 6 nights", gaps[0])
	}
	if !gaps[1].Start.Equal(mustDate(t, "2024-06-27")) || gaps[1].Nights != 4 {
		t.Errorf("second gap = %+v, want 2024-06-27 for 4 nights", gaps[1])
	}
	if occupied := booking.NightsOccupied(cal.intervals, june); occupied != 20 {
		t.Errorf("NightsOccupied = %d, want 20", occupied)
	}

	// The guest cancels the manual stay; the freed range reopens.
	if err := cal.delete(manual.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	gaps = booking.FindGaps(cal.intervals, june)
	if len(gaps) != 2 {
		t.Fatalf("after cancel got %d gaps, want 2: %+v", len(gaps), gaps)
	}
	if !gaps[0].Start.Equal(mustDate(t, "2024-06-10")) || gaps[0].Nights != 10 {
		t.Errorf("merged gap = %+v, want 2024-06-10 for 10 nights", gaps[0])
	}
	if occupied := booking.NightsOccupied(cal.intervals, june); occupied != 16 {
		t.Errorf("NightsOccupied after cancel = %d, want 16", occupied)
	}

	// The freed range can be rebooked.
	if _, err := cal.create(mustDate(t, "2024-06-10"), mustDate(t, "2024-06-14"), booking.SourceWeb); err != nil {
		t.Fatalf("rebooking freed range failed: %v", err)
	}
}

// TestDeletionPolicyGuardsImports verifies OTA imports cannot be removed
// while manually entered stays can, per the deletable-sources policy.
func TestDeletionPolicyGuardsImports(t *testing.T) {
	cal := newCalendar(policy.Default())

	airbnb, err := cal.create(mustDate(t, "2024-07-01"), mustDate(t, "2024-07-05"), booking.SourceAirbnb)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	manual, err := cal.create(mustDate(t, "2024-07-10"), mustDate(t, "2024-07-12"), booking.SourceManual)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := cal.delete(airbnb.ID); err == nil {
		t.Error("deleting an airbnb import should be refused")
	}
	if err := cal.delete(manual.ID); err != nil {
		t.Errorf("deleting a manual booking failed: %v", err)
	}

	// A wide-open policy may allow imports too.
	openCal := newCalendar(policy.Policy{
		DeletableSources:     []booking.Source{booking.SourceAirbnb},
		DefaultHorizonNights: 30,
		MaxHorizonNights:     365,
	})
	ota, err := openCal.create(mustDate(t, "2024-07-01"), mustDate(t, "2024-07-05"), booking.SourceAirbnb)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := openCal.delete(ota.ID); err != nil {
		t.Errorf("policy allows airbnb deletes but delete failed: %v", err)
	}
}

// TestHorizonClampingAcrossQueries exercises the policy clamp the way the
// availability endpoint applies it.
func TestHorizonClampingAcrossQueries(t *testing.T) {
	pol := policy.Policy{
		DeletableSources:     []booking.Source{booking.SourceManual},
		DefaultHorizonNights: 30,
		MaxHorizonNights:     90,
	}

	cal := newCalendar(pol)
	if _, err := cal.create(mustDate(t, "2024-06-01"), mustDate(t, "2024-09-01"), booking.SourceManual); err != nil {
		t.Fatalf("create: %v", err)
	}

	from := mustDate(t, "2024-06-01")
	for _, requested := range []int{1, 30, 90, 5000} {
		nights := pol.ClampNights(requested)
		h := booking.HorizonFrom(from, nights)

		if gaps := booking.FindGaps(cal.intervals, h); len(gaps) != 0 {
			t.Errorf("nights=%d: expected fully booked horizon, got gaps %+v", requested, gaps)
		}
		if occupied := booking.NightsOccupied(cal.intervals, h); occupied != h.Nights() {
			t.Errorf("nights=%d: occupied %d != horizon %d", requested, occupied, h.Nights())
		}
		if h.Nights() > pol.MaxHorizonNights {
			t.Errorf("nights=%d: horizon %d exceeds max %d", requested, h.Nights(), pol.MaxHorizonNights)
		}
	}
}
