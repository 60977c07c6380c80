package service

import (
	"context"
	"strings"

	"occupancy/internal/entity"
	"occupancy/internal/repository"

	"github.com/sirupsen/logrus"
)

type OccupancyService struct {
	tx         repository.Transactor
	devices    repository.DeviceRepository
	vehicles   repository.VehicleRepository
	sessions   repository.SessionRepository
	passengers repository.PassengerRepository
	clock      Clock
	logger     logrus.FieldLogger
}

func NewOccupancyService(
	tx repository.Transactor,
	devices repository.DeviceRepository,
	vehicles repository.VehicleRepository,
	sessions repository.SessionRepository,
	passengers repository.PassengerRepository,
	clock Clock,
	logger logrus.FieldLogger,
) *OccupancyService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OccupancyService{
		tx:         tx,
		devices:    devices,
		vehicles:   vehicles,
		sessions:   sessions,
		passengers: passengers,
		clock:      clock,
		logger:     logger,
	}
}

// TapResult is a committed passenger tap together with the session counter
// it produced.
type TapResult struct {
	Record         entity.PassengerRecord
	VehicleID      uint
	PassengerCount int
}

// RecordTap binds an RFID tap from a device to the active session of the
// device's vehicle. Everything happens in one transaction: the device row is
// locked first, then the session row, and the capacity check only runs once
// the session lock is held.
func (s *OccupancyService) RecordTap(ctx context.Context, rfidCode string, deviceID string) (*TapResult, error) {
	rfidCode = strings.TrimSpace(rfidCode)
	deviceID = strings.TrimSpace(deviceID)
	if rfidCode == "" || deviceID == "" {
		return nil, ErrInvalidInput
	}

	var result *TapResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		device, err := s.devices.FindByDeviceIDForUpdate(ctx, deviceID)
		if err != nil {
			return err
		}
		if device == nil {
			return ErrDeviceNotFound
		}
		if !device.IsOnline() {
			return ErrDeviceOffline
		}

		now := s.clock.Now()
		if err := s.devices.TouchLastSync(ctx, device.ID, now); err != nil {
			return err
		}

		session, err := s.sessions.FindActiveByVehicleForUpdate(ctx, device.VehicleID)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrNoActiveSession
		}

		vehicle, err := s.vehicles.FindByID(ctx, device.VehicleID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return ErrVehicleNotFound
		}
		if session.PassengerCount >= vehicle.Capacity {
			return ErrVehicleAtCapacity
		}

		record := &entity.PassengerRecord{
			RFIDCode:  rfidCode,
			SessionID: session.ID,
			Timestamp: now,
		}
		if err := s.passengers.Create(ctx, record); err != nil {
			return err
		}
		ok, err := s.sessions.IncrementPassengerCount(ctx, session.ID, vehicle.Capacity)
		if err != nil {
			return err
		}
		if !ok {
			return ErrVehicleAtCapacity
		}

		result = &TapResult{
			Record:         *record,
			VehicleID:      vehicle.ID,
			PassengerCount: session.PassengerCount + 1,
		}
		return nil
	})
	if err != nil {
		err = storeError(err, nil)
		s.logger.WithFields(logrus.Fields{
			"device_id": deviceID,
			"kind":      KindOf(err),
		}).WithError(err).Info("passenger tap rejected")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":      result.Record.SessionID,
		"mobil_id":        result.VehicleID,
		"device_id":       deviceID,
		"passenger_count": result.PassengerCount,
	}).Info("passenger tap recorded")
	return result, nil
}

func (s *OccupancyService) GetRecord(ctx context.Context, recordID uint) (*entity.PassengerRecord, error) {
	record, err := s.passengers.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPassengerNotFound
	}
	return record, nil
}

// ListBySession returns the session and its records, newest first.
func (s *OccupancyService) ListBySession(ctx context.Context, sessionID uint) (*entity.Session, []entity.PassengerRecord, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	records, err := s.passengers.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, records, nil
}

func (s *OccupancyService) ListByRFID(ctx context.Context, rfidCode string) ([]entity.PassengerRecord, error) {
	rfidCode = strings.TrimSpace(rfidCode)
	if rfidCode == "" {
		return nil, ErrInvalidInput
	}
	return s.passengers.ListByRFID(ctx, rfidCode)
}
