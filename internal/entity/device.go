package entity

import "time"

type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
)

type Device struct {
	ID        uint     `gorm:"primaryKey"`
	DeviceID  string   `gorm:"column:device_id;type:varchar(100);uniqueIndex;not null"`
	VehicleID uint     `gorm:"column:mobil_id;not null;index"`
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID;constraint:OnDelete:RESTRICT"`

	Status   DeviceStatus `gorm:"type:varchar(20);default:'offline';not null"`
	LastSync *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Device) TableName() string {
	return "device"
}

func (d Device) IsOnline() bool {
	return d.Status == DeviceStatusOnline
}
