package dto

import (
	"encoding/json"
	"time"

	"occupancy/internal/entity"
)

type CreateDriverRequest struct {
	RFIDCode   string  `json:"rfid_code" validate:"required,max=100"`
	NamaDriver string  `json:"nama_driver" validate:"required,max=255"`
	Username   string  `json:"username" validate:"required,min=3,max=100"`
	Password   string  `json:"password" validate:"required,min=6"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Status     string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdateDriverRequest struct {
	RFIDCode   *string `json:"rfid_code" validate:"omitempty,max=100"`
	NamaDriver *string `json:"nama_driver" validate:"omitempty,max=255"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Status     *string `json:"status" validate:"omitempty,oneof=active inactive"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
}

type DriverResponse struct {
	ID         uint       `json:"id"`
	RFIDCode   string     `json:"rfid_code"`
	NamaDriver string     `json:"nama_driver"`
	Username   string     `json:"username"`
	Email      *string    `json:"email"`
	LastLogin  *time.Time `json:"last_login"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// DriverSummary is the driver shape embedded in session listings.
type DriverSummary struct {
	ID         uint   `json:"id"`
	NamaDriver string `json:"nama_driver"`
	RFIDCode   string `json:"rfid_code"`
}

type LoginHistoryResponse struct {
	ID          uint            `json:"id"`
	DriverID    uint            `json:"driver_id"`
	LoginTime   time.Time       `json:"login_time"`
	LogoutTime  *time.Time      `json:"logout_time"`
	IPAddress   *string         `json:"ip_address"`
	DeviceInfo  *string         `json:"device_info"`
	LoginStatus string          `json:"login_status"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

func NewDriverResponse(driver entity.Driver) DriverResponse {
	return DriverResponse{
		ID:         driver.ID,
		RFIDCode:   driver.RFIDCode,
		NamaDriver: driver.NamaDriver,
		Username:   driver.Username,
		Email:      driver.Email,
		LastLogin:  driver.LastLogin,
		Status:     string(driver.Status),
		CreatedAt:  driver.CreatedAt,
		UpdatedAt:  driver.UpdatedAt,
	}
}

func NewDriverResponses(drivers []entity.Driver) []DriverResponse {
	out := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		out = append(out, NewDriverResponse(driver))
	}
	return out
}

func newDriverSummary(driver *entity.Driver) *DriverSummary {
	if driver == nil {
		return nil
	}
	return &DriverSummary{ID: driver.ID, NamaDriver: driver.NamaDriver, RFIDCode: driver.RFIDCode}
}

func NewLoginHistoryResponses(entries []entity.DriverLoginHistory) []LoginHistoryResponse {
	out := make([]LoginHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		item := LoginHistoryResponse{
			ID:          entry.ID,
			DriverID:    entry.DriverID,
			LoginTime:   entry.LoginTime,
			LogoutTime:  entry.LogoutTime,
			IPAddress:   entry.IPAddress,
			DeviceInfo:  entry.DeviceInfo,
			LoginStatus: string(entry.LoginStatus),
		}
		if len(entry.Metadata) > 0 {
			item.Metadata = json.RawMessage(entry.Metadata)
		}
		out = append(out, item)
	}
	return out
}
