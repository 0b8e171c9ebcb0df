package policy

import (
	"github.com/gnezdo/gnezdo/internal/booking"
)

// Policy is the application-level configuration layered on top of the
// booking engine: which booking origins a tenant may delete, and how wide
// availability horizons default to and may grow.
//
// Whether "web" bookings are deletable alongside "manual" ones is a product
// decision, so it lives here and not in the engine.
type Policy struct {
	DeletableSources     []booking.Source `yaml:"deletable_sources"`
	DefaultHorizonNights int              `yaml:"default_horizon_nights"`
	MaxHorizonNights     int              `yaml:"max_horizon_nights"`
}

// Default is the shipped policy: owner-entered bookings are deletable,
// OTA-synced ones are read-only.
func Default() Policy {
	return Policy{
		DeletableSources:     []booking.Source{booking.SourceManual, booking.SourceWeb},
		DefaultHorizonNights: 30,
		MaxHorizonNights:     365,
	}
}

// IsDeletable reports whether bookings of the given origin may be deleted.
func (p Policy) IsDeletable(src booking.Source) bool {
	for _, s := range p.DeletableSources {
		if s == src {
			return true
		}
	}
	return false
}

// ClampNights normalizes a requested horizon length: non-positive values take
// the default, oversized ones are capped.
func (p Policy) ClampNights(n int) int {
	if n <= 0 {
		return p.DefaultHorizonNights
	}
	if n > p.MaxHorizonNights {
		return p.MaxHorizonNights
	}
	return n
}

func (p Policy) withDefaults() Policy {
	def := Default()
	if len(p.DeletableSources) == 0 {
		p.DeletableSources = def.DeletableSources
	}
	if p.DefaultHorizonNights <= 0 {
		p.DefaultHorizonNights = def.DefaultHorizonNights
	}
	if p.MaxHorizonNights <= 0 {
		p.MaxHorizonNights = def.MaxHorizonNights
	}
	return p
}
