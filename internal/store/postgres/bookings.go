package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gnezdo/gnezdo/internal/booking"
)

// pgExclusionViolation is SQLSTATE 23P01, raised by the bookings_no_overlap
// exclusion constraint.
const pgExclusionViolation = "23P01"

// ListBookings returns the property's active bookings, earliest start first.
func (s *Store) ListBookings(ctx context.Context, tenantID, propertyID string) ([]booking.Interval, error) {
	var rows []Booking
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND property_id = ?", tenantID, propertyID).
		Order("start_date asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	intervals := make([]booking.Interval, len(rows))
	for i, row := range rows {
		intervals[i] = row.toInterval()
	}
	return intervals, nil
}

// CreateBooking persists a new booking. An exclusion-constraint violation is
// translated into *booking.ConflictError naming the clashing row, so callers
// handle the database guard and the engine's fast-fail check uniformly.
func (s *Store) CreateBooking(ctx context.Context, tenantID string, iv booking.Interval) (booking.Interval, error) {
	row := Booking{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		PropertyID: iv.PropertyID,
		StartDate:  iv.Start.Time(),
		EndDate:    iv.End.Time(),
		Source:     string(iv.Source),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
			return booking.Interval{}, s.conflictFor(ctx, tenantID, iv)
		}
		return booking.Interval{}, fmt.Errorf("failed to create booking: %w", err)
	}

	return row.toInterval(), nil
}

// conflictFor looks up the booking that blocked an insert. If the clashing
// row vanished between the violation and this query, the conflict is
// reported without an id.
func (s *Store) conflictFor(ctx context.Context, tenantID string, iv booking.Interval) error {
	var clash Booking
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND property_id = ? AND start_date < ? AND end_date > ?",
			tenantID, iv.PropertyID, iv.End.Time(), iv.Start.Time()).
		Order("start_date asc").
		First(&clash).Error
	if err != nil {
		return &booking.ConflictError{Start: iv.Start, End: iv.End}
	}

	return &booking.ConflictError{
		ConflictingID: clash.ID,
		Start:         booking.DateOf(clash.StartDate),
		End:           booking.DateOf(clash.EndDate),
	}
}

// DeleteBooking soft-deletes one booking, scoping tenant, property and the
// allowed origins in the same statement. Single-statement scoping closes the
// race where a sync import recreates an OTA booking between a separate
// eligibility check and the delete.
func (s *Store) DeleteBooking(ctx context.Context, tenantID, propertyID, bookingID string, deletable []booking.Source) error {
	if len(deletable) == 0 {
		return &booking.NotFoundError{ID: bookingID}
	}
	sources := make([]string, len(deletable))
	for i, src := range deletable {
		sources[i] = string(src)
	}

	res := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND property_id = ? AND source IN ?",
			bookingID, tenantID, propertyID, sources).
		Delete(&Booking{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &booking.NotFoundError{ID: bookingID}
	}
	return nil
}
