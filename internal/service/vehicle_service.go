package service

import (
	"context"
	"errors"
	"strings"

	"occupancy/internal/dto"
	"occupancy/internal/entity"
	"occupancy/internal/repository"
	"occupancy/internal/utils"
)

type VehicleService struct {
	tx       repository.Transactor
	vehicles repository.VehicleRepository
	devices  repository.DeviceRepository
	sessions repository.SessionRepository
}

func NewVehicleService(
	tx repository.Transactor,
	vehicles repository.VehicleRepository,
	devices repository.DeviceRepository,
	sessions repository.SessionRepository,
) *VehicleService {
	return &VehicleService{tx: tx, vehicles: vehicles, devices: devices, sessions: sessions}
}

func (s *VehicleService) List(ctx context.Context) ([]entity.Vehicle, error) {
	return s.vehicles.List(ctx)
}

// Get returns the vehicle with its devices.
func (s *VehicleService) Get(ctx context.Context, id uint) (*entity.Vehicle, error) {
	vehicle, err := s.vehicles.FindByIDWithDevices(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrVehicleNotFound
	}
	return vehicle, nil
}

func (s *VehicleService) Create(ctx context.Context, input dto.CreateVehicleRequest) (*entity.Vehicle, error) {
	plate := strings.TrimSpace(input.NomorMobil)
	if plate == "" {
		return nil, ErrInvalidInput
	}
	if input.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	status := entity.VehicleStatusActive
	if input.Status != "" {
		parsed, err := parseVehicleStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	existing, err := s.vehicles.FindByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPlateTaken
	}

	vehicle := &entity.Vehicle{NomorMobil: plate, Capacity: input.Capacity, Status: status}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, storeError(err, ErrPlateTaken)
	}
	return vehicle, nil
}

// Update changes plate, capacity or status. Capacity may not drop below the
// passenger count of the vehicle's active session; the vehicle row is locked
// before the session row.
func (s *VehicleService) Update(ctx context.Context, id uint, input dto.UpdateVehicleRequest) (*entity.Vehicle, error) {
	var updated *entity.Vehicle
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		vehicle, err := s.vehicles.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return ErrVehicleNotFound
		}

		if input.NomorMobil != nil {
			plate := strings.TrimSpace(*input.NomorMobil)
			if plate == "" {
				return ErrInvalidInput
			}
			if plate != vehicle.NomorMobil {
				existing, err := s.vehicles.FindByPlate(ctx, plate)
				if err != nil {
					return err
				}
				if existing != nil {
					return ErrPlateTaken
				}
				vehicle.NomorMobil = plate
			}
		}
		if input.Status != nil {
			status, err := parseVehicleStatus(*input.Status)
			if err != nil {
				return err
			}
			vehicle.Status = status
		}
		if input.Capacity != nil {
			if *input.Capacity <= 0 {
				return ErrInvalidCapacity
			}
			active, err := s.sessions.FindActiveByVehicleForUpdate(ctx, vehicle.ID)
			if err != nil {
				return err
			}
			if active != nil && active.PassengerCount > *input.Capacity {
				return ErrCapacityBelowOccupancy
			}
			vehicle.Capacity = *input.Capacity
		}

		if err := s.vehicles.Update(ctx, vehicle); err != nil {
			return err
		}
		updated = vehicle
		return nil
	})
	if err != nil {
		return nil, storeError(err, ErrPlateTaken)
	}
	return updated, nil
}

// Delete removes a vehicle that has no active session, no devices and no
// session history.
func (s *VehicleService) Delete(ctx context.Context, id uint) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		vehicle, err := s.vehicles.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return ErrVehicleNotFound
		}
		active, err := s.sessions.FindActiveByVehicle(ctx, vehicle.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrVehicleInUse
		}
		devices, err := s.devices.CountByVehicle(ctx, vehicle.ID)
		if err != nil {
			return err
		}
		if devices > 0 {
			return ErrVehicleHasDevices
		}
		history, err := s.sessions.CountByVehicle(ctx, vehicle.ID)
		if err != nil {
			return err
		}
		if history > 0 {
			return ErrVehicleHasHistory
		}
		return s.vehicles.Delete(ctx, vehicle.ID)
	})
	if errors.Is(err, repository.ErrReferenced) {
		return ErrVehicleHasHistory
	}
	return storeError(err, nil)
}

func parseVehicleStatus(status string) (entity.VehicleStatus, error) {
	switch entity.VehicleStatus(utils.NormalizeStatus(status)) {
	case entity.VehicleStatusActive:
		return entity.VehicleStatusActive, nil
	case entity.VehicleStatusMaintenance:
		return entity.VehicleStatusMaintenance, nil
	}
	return "", ErrInvalidStatus
}
