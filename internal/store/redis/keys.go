package redis

import (
	"fmt"

	"github.com/gnezdo/gnezdo/internal/booking"
)

const (
	// KeyPrefixAvailability is the prefix for cached availability snapshots
	KeyPrefixAvailability = "gnezdo:avail:"
)

// AvailabilityKey returns the Redis key for one property's availability
// snapshot over a given horizon.
func AvailabilityKey(tenantID, propertyID string, h booking.Horizon) string {
	return fmt.Sprintf("%s%s:%s:%s:%s", KeyPrefixAvailability, tenantID, propertyID, h.Start, h.End)
}

// PropertyPattern returns the scan pattern matching every cached horizon of
// one property.
func PropertyPattern(tenantID, propertyID string) string {
	return fmt.Sprintf("%s%s:%s:*", KeyPrefixAvailability, tenantID, propertyID)
}
