package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gnezdo/gnezdo/internal/booking"
	"github.com/gnezdo/gnezdo/internal/httpserver/deps"
	"github.com/gnezdo/gnezdo/internal/httpserver/mw"
	"github.com/gnezdo/gnezdo/internal/logger"
	"github.com/gnezdo/gnezdo/internal/metrics"
	redisstore "github.com/gnezdo/gnezdo/internal/store/redis"
)

type availabilityResponse struct {
	PropertyID     string          `json:"property_id"`
	Horizon        booking.Horizon `json:"horizon"`
	Gaps           []booking.Gap   `json:"gaps"`
	NightsOccupied int             `json:"nights_occupied"`
	OccupancyRate  float64         `json:"occupancy_rate"`
}

func occupancyRate(occupied int, h booking.Horizon) float64 {
	nights := h.Nights()
	if nights <= 0 {
		return 0
	}
	return float64(occupied) / float64(nights)
}

// Availability computes the open gaps for one property over a horizon given
// by ?from and ?nights. Results are served from the Redis cache when a
// snapshot for the same horizon survives since the last mutation.
func Availability(d deps.Deps) http.HandlerFunc {
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

		if _, err := d.Properties.GetProperty(r.Context(), tenant, propertyID); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		h := booking.HorizonFrom(from, nights)

		if snap, err := d.Cache.Get(r.Context(), tenant, propertyID, h); err != nil {
			d.Logger.Warn("availability cache lookup failed", logger.Error(err))
		} else if snap != nil {
			metrics.IncCacheHit()
			writeJSON(w, http.StatusOK, availabilityResponse{
				PropertyID:     propertyID,
				Horizon:        snap.Horizon,
				Gaps:           snap.Gaps,
				NightsOccupied: snap.NightsOccupied,
				OccupancyRate:  occupancyRate(snap.NightsOccupied, snap.Horizon),
			})
			return
		} else {
			metrics.IncCacheMiss()
		}

		intervals, err := d.Bookings.ListBookings(r.Context(), tenant, propertyID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		gaps := booking.FindGaps(intervals, h)
		if gaps == nil {
			gaps = []booking.Gap{}
		}
		occupied := booking.NightsOccupied(intervals, h)

		snap := redisstore.Snapshot{Horizon: h, Gaps: gaps, NightsOccupied: occupied}
		if err := d.Cache.Set(r.Context(), tenant, propertyID, snap); err != nil {
			d.Logger.Warn("failed to cache availability snapshot", logger.Error(err))
		}

		writeJSON(w, http.StatusOK, availabilityResponse{
			PropertyID:     propertyID,
			Horizon:        h,
			Gaps:           gaps,
			NightsOccupied: occupied,
			OccupancyRate:  occupancyRate(occupied, h),
		})
	}
}
