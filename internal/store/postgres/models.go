package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/gnezdo/gnezdo/internal/booking"
)

// Property is one rental unit owned by a tenant. The iCal URLs are stored
// verbatim as opaque attributes; feed ingestion happens outside this system.
type Property struct {
	ID          string  `gorm:"type:uuid;primaryKey"          json:"id"`
	TenantID    string  `gorm:"index;not null"                json:"-"`
	Name        string  `gorm:"not null"                      json:"name"     validate:"required,max=200"`
	Location    string  `json:"location"                      validate:"max=200"`
	AirbnbICal  *string `json:"airbnb_ical"                   validate:"omitempty,url"`
	BookingICal *string `json:"booking_ical"                  validate:"omitempty,url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Booking is one reservation row. Dates are DATE columns with checkout
// semantics: the end date is exclusive. Deleted bookings are soft-deleted
// and drop out of both the active-set queries and the exclusion constraint.
type Booking struct {
	ID         string         `gorm:"type:uuid;primaryKey"`
	TenantID   string         `gorm:"index;not null"`
	PropertyID string         `gorm:"type:uuid;index;not null"`
	StartDate  time.Time      `gorm:"type:date;not null"`
	EndDate    time.Time      `gorm:"type:date;not null"`
	Source     string         `gorm:"not null;default:manual"`
	CreatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (b Booking) toInterval() booking.Interval {
	return booking.Interval{
		ID:         b.ID,
		PropertyID: b.PropertyID,
		Start:      booking.DateOf(b.StartDate),
		End:        booking.DateOf(b.EndDate),
		Source:     booking.Source(b.Source),
		CreatedAt:  b.CreatedAt,
	}
}
