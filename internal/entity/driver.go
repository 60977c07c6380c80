package entity

import "time"

type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "active"
	DriverStatusInactive DriverStatus = "inactive"
)

type Driver struct {
	ID           uint    `gorm:"primaryKey"`
	RFIDCode     string  `gorm:"column:rfid_code;type:varchar(100);uniqueIndex;not null"`
	NamaDriver   string  `gorm:"column:nama_driver;type:varchar(255);not null"`
	Username     string  `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string  `gorm:"column:password;type:text;not null"`
	Email        *string `gorm:"type:varchar(255);uniqueIndex"`

	LastLogin *time.Time
	Status    DriverStatus `gorm:"type:varchar(20);default:'active';not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	LoginHistory []DriverLoginHistory `gorm:"foreignKey:DriverID;constraint:OnDelete:CASCADE"`
}

func (Driver) TableName() string {
	return "driver"
}

func (d Driver) IsActive() bool {
	return d.Status == DriverStatusActive
}
