package handler

import (
	"net/http"

	"occupancy/internal/dto"
	"occupancy/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type PassengerHandler struct {
	Service  *service.OccupancyService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewPassengerHandler(svc *service.OccupancyService, validate *validator.Validate, logger logrus.FieldLogger) *PassengerHandler {
	return &PassengerHandler{Service: svc, Validate: validate, Logger: logger}
}

// Record is called by onboard devices and needs no bearer token.
func (h *PassengerHandler) Record(c echo.Context) error {
	var req dto.RecordTapRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	result, err := h.Service.RecordTap(c.Request().Context(), req.RFIDCode, req.DeviceID)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusCreated, "Passenger recorded successfully", dto.TapResponse{
		ID:             result.Record.ID,
		RFIDCode:       result.Record.RFIDCode,
		Timestamp:      result.Record.Timestamp,
		SessionID:      result.Record.SessionID,
		MobilID:        result.VehicleID,
		PassengerCount: result.PassengerCount,
	})
}

func (h *PassengerHandler) BySession(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	session, records, err := h.Service.ListBySession(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.SessionPassengersResponse{
		SessionID:      session.ID,
		PassengerCount: session.PassengerCount,
		Passengers:     dto.NewPassengerRecordResponses(records),
	})
}

func (h *PassengerHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	record, err := h.Service.GetRecord(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewPassengerRecordResponse(*record))
}

func (h *PassengerHandler) ByRFID(c echo.Context) error {
	rfidCode := c.Param("rfid_code")
	records, err := h.Service.ListByRFID(c.Request().Context(), rfidCode)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.RFIDHistoryResponse{
		RFIDCode: rfidCode,
		Count:    len(records),
		Records:  dto.NewPassengerRecordResponses(records),
	})
}
