package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/gnezdo/gnezdo/internal/httpserver/deps"
	"github.com/gnezdo/gnezdo/internal/httpserver/handlers"
	"github.com/gnezdo/gnezdo/internal/httpserver/mw"
)

func init() { Register(registerProperties) }

func registerProperties(r chi.Router, d deps.Deps) {
	r.Route("/properties", func(r chi.Router) {
		r.Use(mw.Auth(d.AuthTokens, d.Logger))
		if !d.RateLimitDisabled {
			r.Use(mw.RateLimit(mw.RateLimitConfig{
				Burst:           d.RateBurst,
				RefillPerKeyMin: d.RateRefillPerMin,
				TrustProxy:      d.TrustProxy,
			}))
		}

		r.Get("/", handlers.ListProperties(d))
		r.Post("/", handlers.CreateProperty(d))

		r.Route("/{propertyID}", func(r chi.Router) {
			r.Get("/", handlers.GetProperty(d))
			r.Put("/", handlers.UpdateProperty(d))
			r.Delete("/", handlers.DeleteProperty(d))

			r.Get("/availability", handlers.Availability(d))
			r.Get("/report", handlers.OccupancyReport(d))

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", handlers.ListBookings(d))
				r.Post("/", handlers.CreateBooking(d))
				r.Delete("/{bookingID}", handlers.DeleteBooking(d))
			})
		})
	})
}
