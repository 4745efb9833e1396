package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"space-reservation-backend/config"
	"space-reservation-backend/internal/model"
)

// Init opens the configured database and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if cfg.EnableExclusionConstraint {
		if db.Dialector.Name() != "postgres" {
			log.Printf("Warning: exclusion constraint requested but driver is %s; skipping.", db.Dialector.Name())
		} else {
			log.Println("Applying reservation exclusion constraint...")
			if err := applyExclusionDDL(db); err != nil {
				log.Printf("Warning: failed to apply exclusion constraint DDL: %v. Continuing with the partial unique index only.", err)
			}
		}
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates the schema. It works on both supported drivers.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(
		&model.User{},
		&model.Space{},
		&model.Reservation{},
		&model.Notification{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	// Space names are unique regardless of case.
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_spaces_name_lower ON spaces (LOWER(name))").Error; err != nil {
		return fmt.Errorf("failed to create space name index: %w", err)
	}
	return nil
}

// applyExclusionDDL makes Postgres reject overlapping active reservations
// of one space and day, not only identical start times.
func applyExclusionDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE EXTENSION IF NOT EXISTS btree_gist;",

		`DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'reservations_time_valid') THEN
				ALTER TABLE reservations ADD CONSTRAINT reservations_time_valid CHECK (start_time < end_time);
			END IF;
		END $$;`,

		// [start, end) ranges, so back-to-back bookings are allowed.
		`DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'reservations_no_overlap') THEN
				ALTER TABLE reservations ADD CONSTRAINT reservations_no_overlap EXCLUDE USING GIST (
					space_id WITH =,
					reservation_date WITH =,
					int8range(start_time, end_time, '[)') WITH &&
				) WHERE (status <> 'cancelled');
			END IF;
		END $$;`,
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
