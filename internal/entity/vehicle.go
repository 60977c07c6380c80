package entity

import "time"

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

// Vehicle is persisted in the mobil table; the plate column keeps its
// original name nomor_mobil.
type Vehicle struct {
	ID         uint          `gorm:"primaryKey"`
	NomorMobil string        `gorm:"column:nomor_mobil;type:varchar(50);uniqueIndex;not null"`
	Status     VehicleStatus `gorm:"type:varchar(20);default:'active';not null"`
	Capacity   int           `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Devices []Device `gorm:"foreignKey:VehicleID"`
}

func (Vehicle) TableName() string {
	return "mobil"
}

func (v Vehicle) IsActive() bool {
	return v.Status == VehicleStatusActive
}
