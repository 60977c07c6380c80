package service

import (
	"context"
	"strings"

	"occupancy/internal/dto"
	"occupancy/internal/entity"
	"occupancy/internal/repository"
	"occupancy/internal/utils"

	"github.com/sirupsen/logrus"
)

type DeviceService struct {
	tx       repository.Transactor
	devices  repository.DeviceRepository
	vehicles repository.VehicleRepository
	clock    Clock
	logger   logrus.FieldLogger
}

func NewDeviceService(
	tx repository.Transactor,
	devices repository.DeviceRepository,
	vehicles repository.VehicleRepository,
	clock Clock,
	logger logrus.FieldLogger,
) *DeviceService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DeviceService{tx: tx, devices: devices, vehicles: vehicles, clock: clock, logger: logger}
}

func (s *DeviceService) List(ctx context.Context) ([]entity.Device, error) {
	return s.devices.List(ctx)
}

func (s *DeviceService) Get(ctx context.Context, id uint) (*entity.Device, error) {
	device, err := s.devices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, ErrDeviceNotFound
	}
	return device, nil
}

func (s *DeviceService) Create(ctx context.Context, input dto.CreateDeviceRequest) (*entity.Device, error) {
	deviceID := strings.TrimSpace(input.DeviceID)
	if deviceID == "" || input.MobilID == 0 {
		return nil, ErrInvalidInput
	}
	status := entity.DeviceStatusOffline
	if input.Status != "" {
		parsed, err := parseDeviceStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	vehicle, err := s.vehicles.FindByID(ctx, input.MobilID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrVehicleNotFound
	}
	existing, err := s.devices.FindByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDeviceIDTaken
	}

	device := &entity.Device{
		DeviceID:  deviceID,
		VehicleID: vehicle.ID,
		Status:    status,
	}
	if err := s.devices.Create(ctx, device); err != nil {
		return nil, storeError(err, ErrDeviceIDTaken)
	}
	device.Vehicle = vehicle
	return device, nil
}

func (s *DeviceService) Update(ctx context.Context, id uint, input dto.UpdateDeviceRequest) (*entity.Device, error) {
	device, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.DeviceID != nil {
		deviceID := strings.TrimSpace(*input.DeviceID)
		if deviceID == "" {
			return nil, ErrInvalidInput
		}
		if deviceID != device.DeviceID {
			existing, err := s.devices.FindByDeviceID(ctx, deviceID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrDeviceIDTaken
			}
			device.DeviceID = deviceID
		}
	}
	if input.MobilID != nil && *input.MobilID != device.VehicleID {
		vehicle, err := s.vehicles.FindByID(ctx, *input.MobilID)
		if err != nil {
			return nil, err
		}
		if vehicle == nil {
			return nil, ErrVehicleNotFound
		}
		device.VehicleID = vehicle.ID
		device.Vehicle = vehicle
	}

	if err := s.devices.Update(ctx, device); err != nil {
		return nil, storeError(err, ErrDeviceIDTaken)
	}
	return device, nil
}

func (s *DeviceService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.devices.Delete(ctx, id)
}

// UpdateStatus toggles a device online or offline and stamps last_sync. The
// device row is locked so a concurrent tap sees either the old or the new
// status, never a mix.
func (s *DeviceService) UpdateStatus(ctx context.Context, id uint, status string) (*entity.Device, error) {
	next, err := parseDeviceStatus(status)
	if err != nil {
		return nil, err
	}

	var updated *entity.Device
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		device, err := s.devices.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if device == nil {
			return ErrDeviceNotFound
		}
		now := s.clock.Now()
		if err := s.devices.SetStatus(ctx, device.ID, next, now); err != nil {
			return err
		}
		device.Status = next
		device.LastSync = &now
		updated = device
		return nil
	})
	if err != nil {
		return nil, storeError(err, nil)
	}

	s.logger.WithFields(logrus.Fields{
		"device_id": updated.DeviceID,
		"status":    updated.Status,
	}).Info("device status changed")
	return updated, nil
}

func parseDeviceStatus(status string) (entity.DeviceStatus, error) {
	switch entity.DeviceStatus(utils.NormalizeStatus(status)) {
	case entity.DeviceStatusOnline:
		return entity.DeviceStatusOnline, nil
	case entity.DeviceStatusOffline:
		return entity.DeviceStatusOffline, nil
	}
	return "", ErrInvalidDeviceStatus
}
