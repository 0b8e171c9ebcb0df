package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/gnezdo/gnezdo/internal/logger"
)

type contextKey string

const tenantKey contextKey = "tenant_id"

// TenantID returns the tenant resolved by Auth for this request, or "" when
// the request did not pass through the middleware.
func TenantID(ctx context.Context) string {
	tenant, _ := ctx.Value(tenantKey).(string)
	return tenant
}

// WithTenant injects a tenant id directly. Used by handler tests.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// Auth resolves the bearer token to a tenant id and stores it on the request
// context. Every data route runs behind it, so handlers can assume a tenant.
func Auth(tokens map[string]string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="gnezdo"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			tenant, ok := tokens[token]
			if !ok {
				log.Warn("rejected request with unknown token",
					logger.String("remote_ip", r.RemoteAddr),
					logger.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenant)))
		})
	}
}
