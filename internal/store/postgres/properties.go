package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrPropertyNotFound reports a property id outside the tenant's scope.
var ErrPropertyNotFound = errors.New("property not found")

// ListProperties returns the tenant's properties, alphabetical by name.
func (s *Store) ListProperties(ctx context.Context, tenantID string) ([]Property, error) {
	var props []Property
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name asc").
		Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

// GetProperty returns one property within the tenant's scope.
func (s *Store) GetProperty(ctx context.Context, tenantID, propertyID string) (Property, error) {
	var prop Property
	err := s.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", propertyID, tenantID).
		First(&prop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Property{}, ErrPropertyNotFound
		}
		return Property{}, fmt.Errorf("failed to get property: %w", err)
	}
	return prop, nil
}

// CreateProperty persists a new property for the tenant.
func (s *Store) CreateProperty(ctx context.Context, tenantID string, prop Property) (Property, error) {
	prop.ID = uuid.NewString()
	prop.TenantID = tenantID

	if err := s.db.WithContext(ctx).Create(&prop).Error; err != nil {
		return Property{}, fmt.Errorf("failed to create property: %w", err)
	}
	return prop, nil
}

// UpdateProperty updates the mutable fields of a property.
func (s *Store) UpdateProperty(ctx context.Context, tenantID string, prop Property) (Property, error) {
	res := s.db.WithContext(ctx).
		Model(&Property{}).
		Where("id = ? AND tenant_id = ?", prop.ID, tenantID).
		Updates(map[string]interface{}{
			"name":         prop.Name,
			"location":     prop.Location,
			"airbnb_ical":  prop.AirbnbICal,
			"booking_ical": prop.BookingICal,
		})
	if res.Error != nil {
		return Property{}, fmt.Errorf("failed to update property: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return Property{}, ErrPropertyNotFound
	}
	return s.GetProperty(ctx, tenantID, prop.ID)
}

// DeleteProperty soft-deletes a property and its bookings in one
// transaction, so availability queries never see orphaned bookings.
func (s *Store) DeleteProperty(ctx context.Context, tenantID, propertyID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND tenant_id = ?", propertyID, tenantID).
			Delete(&Property{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete property: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPropertyNotFound
		}

		err := tx.Where("property_id = ? AND tenant_id = ?", propertyID, tenantID).
			Delete(&Booking{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete property bookings: %w", err)
		}
		return nil
	})
}
