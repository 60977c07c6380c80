package entity

import "time"

type PassengerRecord struct {
	ID       uint   `gorm:"primaryKey"`
	RFIDCode string `gorm:"column:rfid_code;type:varchar(100);not null;index"`

	SessionID uint     `gorm:"column:driver_mobil_session_id;not null;index"`
	Session   *Session `gorm:"foreignKey:SessionID;constraint:OnDelete:RESTRICT"`

	Timestamp time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PassengerRecord) TableName() string {
	return "passenger_record"
}
