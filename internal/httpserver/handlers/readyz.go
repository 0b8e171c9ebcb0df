package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gnezdo/gnezdo/internal/httpserver/deps"
)

type componentStatus struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz probes the backing stores. Postgres down means not ready; Redis
// down only degrades the availability cache, so it is reported but does not
// flip readiness.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"postgres": probe(r.Context(), d.DBPinger),
			"redis":    probe(r.Context(), d.CachePinger),
		}

		resp := readyzResponse{
			Ready:      components["postgres"].OK,
			Components: components,
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func probe(ctx context.Context, p deps.Pinger) componentStatus {
	if p == nil {
		return componentStatus{OK: false, Error: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}
