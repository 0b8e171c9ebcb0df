package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gnezdo/gnezdo/internal/booking"
	"github.com/gnezdo/gnezdo/internal/httpserver/deps"
	"github.com/gnezdo/gnezdo/internal/httpserver/mw"
	"github.com/gnezdo/gnezdo/internal/logger"
	"github.com/gnezdo/gnezdo/internal/metrics"
	"github.com/gnezdo/gnezdo/internal/webhook"
)

type createBookingRequest struct {
	StartDate booking.Date   `json:"start_date"`
	EndDate   booking.Date   `json:"end_date"`
	Source    booking.Source `json:"source"`
}

func ListBookings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := mw.TenantID(r.Context())
		propertyID := chi.URLParam(r, "propertyID")

		if _, err := d.Properties.GetProperty(r.Context(), tenant, propertyID); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		intervals, err := d.Bookings.ListBookings(r.Context(), tenant, propertyID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if intervals == nil {
			intervals = []booking.Interval{}
		}
		writeJSON(w, http.StatusOK, intervals)
	}
}

// CreateBooking runs the in-memory conflict check first so the common case
// fails fast with the clashing booking named, then lets the store's exclusion
// constraint arbitrate whatever races past it.
func CreateBooking(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := mw.TenantID(r.Context())
		propertyID := chi.URLParam(r, "propertyID")

		var req createBookingRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if req.Source == "" {
			req.Source = booking.SourceManual
		}

		if _, err := d.Properties.GetProperty(r.Context(), tenant, propertyID); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		candidate := booking.Interval{
			PropertyID: propertyID,
			Start:      req.StartDate,
			End:        req.EndDate,
			Source:     req.Source,
		}

		existing, err := d.Bookings.ListBookings(r.Context(), tenant, propertyID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if err := booking.CanCreate(existing, candidate); err != nil {
			if _, ok := err.(*booking.ConflictError); ok {
				metrics.IncBookingConflict("client")
			}
			writeError(w, d.Logger, err)
			return
		}

		created, err := d.Bookings.CreateBooking(r.Context(), tenant, candidate)
		if err != nil {
			if _, ok := err.(*booking.ConflictError); ok {
				metrics.IncBookingConflict("store")
			}
			writeError(w, d.Logger, err)
			return
		}

		metrics.IncBookingCreated(string(created.Source))
		invalidateAvailability(r, d, tenant, propertyID)
		d.Notifier.Notify(webhook.Event{
			Type:       webhook.EventBookingCreated,
			TenantID:   tenant,
			PropertyID: propertyID,
			BookingID:  created.ID,
			StartDate:  created.Start,
			EndDate:    created.End,
			Source:     created.Source,
			OccurredAt: d.Now(),
		})

		d.Logger.Info("booking created",
			logger.String("property_id", propertyID),
			logger.String("booking_id", created.ID),
			logger.String("source", string(created.Source)),
			logger.Int("nights", created.Nights()))
		writeJSON(w, http.StatusCreated, created)
	}
}

func DeleteBooking(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := mw.TenantID(r.Context())
		propertyID := chi.URLParam(r, "propertyID")
		bookingID := chi.URLParam(r, "bookingID")

		// Snapshot the row before the delete so the webhook can carry the
		// freed range. Best effort, the delete itself stays single-statement.
		var deleted *booking.Interval
		if intervals, err := d.Bookings.ListBookings(r.Context(), tenant, propertyID); err == nil {
			for i := range intervals {
				if intervals[i].ID == bookingID {
					deleted = &intervals[i]
					break
				}
			}
		}

		deletable := d.Policy.Current().DeletableSources
		if err := d.Bookings.DeleteBooking(r.Context(), tenant, propertyID, bookingID, deletable); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		metrics.IncBookingDeleted()
		invalidateAvailability(r, d, tenant, propertyID)
		if deleted != nil {
			d.Notifier.Notify(webhook.Event{
				Type:       webhook.EventBookingDeleted,
				TenantID:   tenant,
				PropertyID: propertyID,
				BookingID:  bookingID,
				StartDate:  deleted.Start,
				EndDate:    deleted.End,
				Source:     deleted.Source,
				OccurredAt: d.Now(),
			})
		}

		d.Logger.Info("booking deleted",
			logger.String("property_id", propertyID),
			logger.String("booking_id", bookingID))
		w.WriteHeader(http.StatusNoContent)
	}
}

func invalidateAvailability(r *http.Request, d deps.Deps, tenant, propertyID string) {
	if err := d.Cache.InvalidateProperty(r.Context(), tenant, propertyID); err != nil {
		d.Logger.Warn("failed to invalidate availability cache",
			logger.String("property_id", propertyID),
			logger.Error(err))
	}
}
