package dto

import (
	"time"

	"occupancy/internal/entity"
)

// RecordTapRequest is sent by onboard devices. DeviceID is the hardware
// identifier, not the database key.
type RecordTapRequest struct {
	RFIDCode string `json:"rfid_code" validate:"required,max=100"`
	DeviceID string `json:"device_id" validate:"required,max=100"`
}

type TapResponse struct {
	ID             uint      `json:"id"`
	RFIDCode       string    `json:"rfid_code"`
	Timestamp      time.Time `json:"timestamp"`
	SessionID      uint      `json:"session_id"`
	MobilID        uint      `json:"mobil_id"`
	PassengerCount int       `json:"passenger_count"`
}

type PassengerRecordResponse struct {
	ID        uint             `json:"id"`
	RFIDCode  string           `json:"rfid_code"`
	Timestamp time.Time        `json:"timestamp"`
	SessionID uint             `json:"session_id"`
	Session   *SessionResponse `json:"session,omitempty"`
}

type SessionPassengersResponse struct {
	SessionID      uint                      `json:"session_id"`
	PassengerCount int                       `json:"passenger_count"`
	Passengers     []PassengerRecordResponse `json:"passengers"`
}

type RFIDHistoryResponse struct {
	RFIDCode string                    `json:"rfid_code"`
	Count    int                       `json:"count"`
	Records  []PassengerRecordResponse `json:"records"`
}

func NewPassengerRecordResponse(record entity.PassengerRecord) PassengerRecordResponse {
	resp := PassengerRecordResponse{
		ID:        record.ID,
		RFIDCode:  record.RFIDCode,
		Timestamp: record.Timestamp,
		SessionID: record.SessionID,
	}
	if record.Session != nil {
		session := NewSessionResponse(*record.Session)
		resp.Session = &session
	}
	return resp
}

func NewPassengerRecordResponses(records []entity.PassengerRecord) []PassengerRecordResponse {
	out := make([]PassengerRecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, NewPassengerRecordResponse(record))
	}
	return out
}
