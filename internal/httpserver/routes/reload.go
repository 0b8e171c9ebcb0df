package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/gnezdo/gnezdo/internal/httpserver/deps"
	"github.com/gnezdo/gnezdo/internal/httpserver/handlers"
	"github.com/gnezdo/gnezdo/internal/httpserver/mw"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.AuthTokens, d.Logger)).Post("/reload", handlers.Reload(d))
}
