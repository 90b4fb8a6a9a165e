package postgres

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stayadmin/internal/domain/apartment"
	"stayadmin/internal/domain/audit"
	"stayadmin/internal/domain/booking"
	"stayadmin/internal/domain/guest"
	"stayadmin/internal/domain/pricing"
	storageerr "stayadmin/internal/domain/shared/storage"
	"stayadmin/internal/domain/user"
)

// Open connects to Postgres via gorm.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	return db, nil
}

// Migrate creates the schema and, on Postgres, installs the range exclusion
// constraint that rejects the second of two concurrent overlapping writers.
// The application-level guarded insert handles the common case; the
// constraint is the storage-level backstop.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&guest.Guest{},
		&apartment.Apartment{},
		&pricing.Rule{},
		&booking.Booking{},
		&audit.Entry{},
	); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, stmt := range bookingConstraintSQL {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("postgres: booking constraint: %w", err)
		}
	}
	return nil
}

// bookingConstraintSQL installs the overlap exclusion constraint. gorm
// migrates time.Time columns to timestamptz, so the range constructor must
// be tstzrange; tsrange would fail with undefined_function at ALTER time.
var bookingConstraintSQL = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$ BEGIN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (
				apartment_id WITH =,
				tstzrange(from_datetime, to_datetime, '[]') WITH &&
			) WHERE (booking_status <> 'cancelled');
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
}

// wrapStoreErr tags a driver failure as transient so callers never mistake
// an unreachable store for an empty result.
func wrapStoreErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(storageerr.ErrUnavailable, err))
}
