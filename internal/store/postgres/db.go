package postgres

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store handles Postgres operations for properties and bookings.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and runs migrations, including the exclusion
// constraint that is the authoritative double-booking guard.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm connection. Used by tests.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Property{}, &Booking{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// The engine's CanCreate check is a fast-fail UX gate only. This
	// constraint is what actually stops two concurrent creates for an
	// overlapping range from both landing.
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`DO $$ BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap'
			) THEN
				ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
					EXCLUDE USING gist (
						property_id WITH =,
						daterange(start_date, end_date) WITH &&
					) WHERE (deleted_at IS NULL);
			END IF;
		END $$`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply booking constraints: %w", err)
		}
	}
	return nil
}

// Ping verifies the underlying connection, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
