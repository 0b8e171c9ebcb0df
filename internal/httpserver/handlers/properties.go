package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gnezdo/gnezdo/internal/httpserver/deps"
	"github.com/gnezdo/gnezdo/internal/httpserver/mw"
	"github.com/gnezdo/gnezdo/internal/logger"
	"github.com/gnezdo/gnezdo/internal/store/postgres"
)

type propertyRequest struct {
	Name        string  `json:"name"         validate:"required,max=200"`
	Location    string  `json:"location"     validate:"max=200"`
	AirbnbICal  *string `json:"airbnb_ical"  validate:"omitempty,url"`
	BookingICal *string `json:"booking_ical" validate:"omitempty,url"`
}

func ListProperties(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := mw.TenantID(r.Context())

		props, err := d.Properties.ListProperties(r.Context(), tenant)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if props == nil {
			props = []postgres.Property{}
		}
		writeJSON(w, http.StatusOK, props)
	}
}

func GetProperty(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := mw.TenantID(r.Context())
		propertyID := chi.URLParam(r, "propertyID")

		prop, err := d.Properties.GetProperty(r.Context(), tenant, propertyID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, prop)
	}
}

func CreateProperty(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := mw.TenantID(r.Context())

		var req propertyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		prop, err := d.Properties.CreateProperty(r.Context(), tenant, postgres.Property{
			Name:        req.Name,
			Location:    req.Location,
			AirbnbICal:  req.AirbnbICal,
			BookingICal: req.BookingICal,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}

		d.Logger.Info("property created",
			logger.String("property_id", prop.ID),
			logger.String("name", prop.Name))
		writeJSON(w, http.StatusCreated, prop)
	}
}

func UpdateProperty(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := mw.TenantID(r.Context())
		propertyID := chi.URLParam(r, "propertyID")

		var req propertyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		prop, err := d.Properties.UpdateProperty(r.Context(), tenant, postgres.Property{
			ID:          propertyID,
			Name:        req.Name,
			Location:    req.Location,
			AirbnbICal:  req.AirbnbICal,
			BookingICal: req.BookingICal,
		})
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, prop)
	}
}

func DeleteProperty(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := mw.TenantID(r.Context())
		propertyID := chi.URLParam(r, "propertyID")

		if err := d.Properties.DeleteProperty(r.Context(), tenant, propertyID); err != nil {
			writeError(w, d.Logger, err)
			return
		}

		if err := d.Cache.InvalidateProperty(r.Context(), tenant, propertyID); err != nil {
			d.Logger.Warn("failed to invalidate availability cache",
				logger.String("property_id", propertyID),
				logger.Error(err))
		}

		d.Logger.Info("property deleted", logger.String("property_id", propertyID))
		w.WriteHeader(http.StatusNoContent)
	}
}
