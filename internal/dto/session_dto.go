package dto

import (
	"time"

	"occupancy/internal/entity"
)

type StartSessionRequest struct {
	DriverID uint `json:"driver_id" validate:"required"`
	MobilID  uint `json:"mobil_id" validate:"required"`
}

type DateRangeQuery struct {
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

type SessionResponse struct {
	ID             uint                      `json:"id"`
	DriverID       uint                      `json:"driver_id"`
	MobilID        uint                      `json:"mobil_id"`
	StartTime      time.Time                 `json:"start_time"`
	EndTime        *time.Time                `json:"end_time"`
	PassengerCount int                       `json:"passenger_count"`
	Status         string                    `json:"status"`
	Driver         *DriverSummary            `json:"driver,omitempty"`
	Mobil          *VehicleSummary           `json:"mobil,omitempty"`
	Passengers     []PassengerRecordResponse `json:"passenger_records,omitempty"`
}

type OccupancyResponse struct {
	SessionID      uint   `json:"session_id"`
	MobilID        uint   `json:"mobil_id"`
	Status         string `json:"status"`
	Capacity       int    `json:"capacity"`
	PassengerCount int    `json:"passenger_count"`
	Remaining      int    `json:"remaining"`
}

func NewSessionResponse(session entity.Session) SessionResponse {
	resp := SessionResponse{
		ID:             session.ID,
		DriverID:       session.DriverID,
		MobilID:        session.VehicleID,
		StartTime:      session.StartTime,
		EndTime:        session.EndTime,
		PassengerCount: session.PassengerCount,
		Status:         string(session.Status),
		Driver:         newDriverSummary(session.Driver),
		Mobil:          newVehicleSummary(session.Vehicle),
	}
	if session.PassengerRecords != nil {
		resp.Passengers = NewPassengerRecordResponses(session.PassengerRecords)
	}
	return resp
}

func NewSessionResponses(sessions []entity.Session) []SessionResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, NewSessionResponse(session))
	}
	return out
}
