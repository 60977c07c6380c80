package entity

import "time"

type AdminStatus string

const (
	AdminStatusActive   AdminStatus = "active"
	AdminStatusInactive AdminStatus = "inactive"
)

type Admin struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password;type:text;not null"`
	Name         string `gorm:"type:varchar(255);not null"`
	Role         string `gorm:"type:varchar(50);not null"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`

	LastLogin *time.Time
	Status    AdminStatus `gorm:"type:varchar(20);default:'active';not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Admin) TableName() string {
	return "admin"
}
