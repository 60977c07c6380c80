package dto

import (
	"time"

	"occupancy/internal/entity"
)

type CreateVehicleRequest struct {
	NomorMobil string `json:"nomor_mobil" validate:"required,max=50"`
	Capacity   int    `json:"capacity" validate:"required,gt=0"`
	Status     string `json:"status" validate:"omitempty,oneof=active maintenance"`
}

type UpdateVehicleRequest struct {
	NomorMobil *string `json:"nomor_mobil" validate:"omitempty,max=50"`
	Capacity   *int    `json:"capacity" validate:"omitempty,gt=0"`
	Status     *string `json:"status" validate:"omitempty,oneof=active maintenance"`
}

type VehicleResponse struct {
	ID         uint             `json:"id"`
	NomorMobil string           `json:"nomor_mobil"`
	Status     string           `json:"status"`
	Capacity   int              `json:"capacity"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Devices    []DeviceResponse `json:"devices,omitempty"`
}

type VehicleSummary struct {
	ID         uint   `json:"id"`
	NomorMobil string `json:"nomor_mobil"`
	Capacity   int    `json:"capacity"`
}

func NewVehicleResponse(vehicle entity.Vehicle) VehicleResponse {
	resp := VehicleResponse{
		ID:         vehicle.ID,
		NomorMobil: vehicle.NomorMobil,
		Status:     string(vehicle.Status),
		Capacity:   vehicle.Capacity,
		CreatedAt:  vehicle.CreatedAt,
		UpdatedAt:  vehicle.UpdatedAt,
	}
	if vehicle.Devices != nil {
		resp.Devices = NewDeviceResponses(vehicle.Devices)
	}
	return resp
}

func NewVehicleResponses(vehicles []entity.Vehicle) []VehicleResponse {
	out := make([]VehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		out = append(out, NewVehicleResponse(vehicle))
	}
	return out
}

func newVehicleSummary(vehicle *entity.Vehicle) *VehicleSummary {
	if vehicle == nil {
		return nil
	}
	return &VehicleSummary{ID: vehicle.ID, NomorMobil: vehicle.NomorMobil, Capacity: vehicle.Capacity}
}
