package entity

import (
	"time"

	"gorm.io/datatypes"
)

type LoginStatus string

const (
	LoginSuccess LoginStatus = "success"
	LoginFailed  LoginStatus = "failed"
)

type DriverLoginHistory struct {
	ID       uint `gorm:"primaryKey"`
	DriverID uint `gorm:"not null;index"`

	LoginTime   time.Time `gorm:"not null"`
	LogoutTime  *time.Time
	IPAddress   *string     `gorm:"type:varchar(45)"`
	DeviceInfo  *string     `gorm:"type:text"`
	LoginStatus LoginStatus `gorm:"type:varchar(20);default:'success';not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}

func (DriverLoginHistory) TableName() string {
	return "driver_login_history"
}
