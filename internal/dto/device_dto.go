package dto

import (
	"time"

	"occupancy/internal/entity"
)

type CreateDeviceRequest struct {
	DeviceID string `json:"device_id" validate:"required,max=100"`
	MobilID  uint   `json:"mobil_id" validate:"required"`
	Status   string `json:"status" validate:"omitempty,oneof=online offline"`
}

type UpdateDeviceRequest struct {
	DeviceID *string `json:"device_id" validate:"omitempty,max=100"`
	MobilID  *uint   `json:"mobil_id" validate:"omitempty,gt=0"`
}

// UpdateDeviceStatusRequest is checked against online/offline by the service
// so the caller gets the dedicated message.
type UpdateDeviceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type DeviceResponse struct {
	ID        uint            `json:"id"`
	DeviceID  string          `json:"device_id"`
	MobilID   uint            `json:"mobil_id"`
	Status    string          `json:"status"`
	LastSync  *time.Time      `json:"last_sync"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Mobil     *VehicleSummary `json:"mobil,omitempty"`
}

func NewDeviceResponse(device entity.Device) DeviceResponse {
	return DeviceResponse{
		ID:        device.ID,
		DeviceID:  device.DeviceID,
		MobilID:   device.VehicleID,
		Status:    string(device.Status),
		LastSync:  device.LastSync,
		CreatedAt: device.CreatedAt,
		UpdatedAt: device.UpdatedAt,
		Mobil:     newVehicleSummary(device.Vehicle),
	}
}

func NewDeviceResponses(devices []entity.Device) []DeviceResponse {
	out := make([]DeviceResponse, 0, len(devices))
	for _, device := range devices {
		out = append(out, NewDeviceResponse(device))
	}
	return out
}
