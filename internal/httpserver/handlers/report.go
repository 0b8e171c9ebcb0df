package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gnezdo/gnezdo/internal/booking"
	"github.com/gnezdo/gnezdo/internal/httpserver/deps"
	"github.com/gnezdo/gnezdo/internal/httpserver/mw"
	"github.com/gnezdo/gnezdo/internal/logger"
	"github.com/gnezdo/gnezdo/internal/report"
)

// OccupancyReport streams an xlsx workbook with the property's bookings and
// open gaps over the requested horizon.
func OccupancyReport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := mw.TenantID(r.Context())
		propertyID := chi.URLParam(r, "propertyID")

		pol := d.Policy.Current()

		from := booking.DateOf(d.Now())
		if raw := r.URL.Query().Get("from"); raw != "" {
			parsed, err := booking.ParseDate(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from must be YYYY-MM-DD"})
				return
			}
			from = parsed
		}

		nights := pol.DefaultHorizonNights
		if raw := r.URL.Query().Get("nights"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "nights must be a positive integer"})
				return
			}
			nights = parsed
		}
		nights = pol.ClampNights(nights)

		prop, err := d.Properties.GetProperty(r.Context(), tenant, propertyID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		intervals, err := d.Bookings.ListBookings(r.Context(), tenant, propertyID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		h := booking.HorizonFrom(from, nights)
		var inHorizon []booking.Interval
		for _, iv := range intervals {
			if booking.Overlaps(iv, booking.Interval{Start: h.Start, End: h.End}) {
				inHorizon = append(inHorizon, iv)
			}
		}

		occ := report.Occupancy{
			PropertyName:   prop.Name,
			Horizon:        h,
			Bookings:       inHorizon,
			Gaps:           booking.FindGaps(intervals, h),
			NightsOccupied: booking.NightsOccupied(intervals, h),
		}

		filename := fmt.Sprintf("occupancy-%s-%s.xlsx", prop.ID, h.Start)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := report.WriteOccupancy(w, occ); err != nil {
			// Headers are already out, the best we can do is log.
			d.Logger.Error("failed to stream occupancy report",
				logger.String("property_id", propertyID),
				logger.Error(err))
		}
	}
}
