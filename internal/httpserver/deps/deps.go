package deps

import (
	"context"
	"time"

	"github.com/gnezdo/gnezdo/internal/booking"
	"github.com/gnezdo/gnezdo/internal/logger"
	"github.com/gnezdo/gnezdo/internal/policy"
	"github.com/gnezdo/gnezdo/internal/store/postgres"
	redisstore "github.com/gnezdo/gnezdo/internal/store/redis"
	"github.com/gnezdo/gnezdo/internal/webhook"
)

// BookingStore is the persistence surface the booking handlers need.
type BookingStore interface {
	ListBookings(ctx context.Context, tenantID, propertyID string) ([]booking.Interval, error)
	CreateBooking(ctx context.Context, tenantID string, iv booking.Interval) (booking.Interval, error)
	DeleteBooking(ctx context.Context, tenantID, propertyID, bookingID string, deletable []booking.Source) error
}

// PropertyStore is the persistence surface the property handlers need.
type PropertyStore interface {
	ListProperties(ctx context.Context, tenantID string) ([]postgres.Property, error)
	GetProperty(ctx context.Context, tenantID, propertyID string) (postgres.Property, error)
	CreateProperty(ctx context.Context, tenantID string, prop postgres.Property) (postgres.Property, error)
	UpdateProperty(ctx context.Context, tenantID string, prop postgres.Property) (postgres.Property, error)
	DeleteProperty(ctx context.Context, tenantID, propertyID string) error
}

// AvailabilityCache caches computed availability snapshots.
type AvailabilityCache interface {
	Get(ctx context.Context, tenantID, propertyID string, h booking.Horizon) (*redisstore.Snapshot, error)
	Set(ctx context.Context, tenantID, propertyID string, snap redisstore.Snapshot) error
	InvalidateProperty(ctx context.Context, tenantID, propertyID string) error
}

// Notifier publishes booking lifecycle events.
type Notifier interface {
	Notify(ev webhook.Event)
	Enabled() bool
}

// Pinger is a readiness probe for a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Bookings   BookingStore
	Properties PropertyStore
	Cache      AvailabilityCache
	Notifier   Notifier
	Policy     *policy.Holder

	DBPinger    Pinger // Postgres readiness probe
	CachePinger Pinger // Redis readiness probe

	AuthTokens          map[string]string // bearer token -> tenant id
	TrustProxy          bool              // true when running behind a trusted reverse proxy
	PolicyReloadTrigger chan struct{}     // Channel to trigger manual policy reload

	RateBurst         int
	RateRefillPerMin  int
	RateLimitDisabled bool
}

// Now returns the injected clock, defaulting to time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
