package entity

import "time"

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session binds one driver to one vehicle. Rows are never deleted; a session
// ends by moving to completed with EndTime set.
type Session struct {
	ID uint `gorm:"primaryKey"`

	DriverID uint    `gorm:"not null;index"`
	Driver   *Driver `gorm:"foreignKey:DriverID;constraint:OnDelete:RESTRICT"`

	VehicleID uint     `gorm:"column:mobil_id;not null;index"`
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID;constraint:OnDelete:RESTRICT"`

	StartTime      time.Time `gorm:"not null;index"`
	EndTime        *time.Time
	PassengerCount int           `gorm:"not null;default:0"`
	Status         SessionStatus `gorm:"type:varchar(20);default:'active';not null;index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	PassengerRecords []PassengerRecord `gorm:"foreignKey:SessionID"`
}

func (Session) TableName() string {
	return "driver_mobil_session"
}

func (s Session) IsActive() bool {
	return s.Status == SessionStatusActive
}
