package entity

import "time"

// BlacklistedToken marks a logged-out bearer token. Only the token hash is
// stored; rows past ExpiresAt can be purged.
type BlacklistedToken struct {
	ID            uint      `gorm:"primaryKey"`
	TokenHash     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	BlacklistedAt time.Time `gorm:"not null"`
	ExpiresAt     time.Time `gorm:"not null;index"`
}

func (BlacklistedToken) TableName() string {
	return "blacklisted_tokens"
}
