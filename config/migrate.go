package config

import (
	"fmt"

	"occupancy/internal/entity"

	"gorm.io/gorm"
)

// The partial indexes back the one-active-session rules at the store level.
var activeSessionIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_session_active_driver
		ON driver_mobil_session (driver_id) WHERE status = 'active'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_session_active_mobil
		ON driver_mobil_session (mobil_id) WHERE status = 'active'`,
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Admin{},
		&entity.Driver{},
		&entity.DriverLoginHistory{},
		&entity.Vehicle{},
		&entity.Device{},
		&entity.Session{},
		&entity.PassengerRecord{},
		&entity.BlacklistedToken{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range activeSessionIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create active session index: %w", err)
		}
	}
	return nil
}
