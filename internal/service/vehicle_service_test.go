package service_test

import (
	"context"
	"testing"

	"occupancy/internal/dto"
	"occupancy/internal/entity"
	"occupancy/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	v, err := env.vehicles.Create(ctx, dto.CreateVehicleRequest{NomorMobil: " B 1 A ", Capacity: 8})
	require.NoError(t, err)
	assert.Equal(t, "B 1 A", v.NomorMobil)
	assert.Equal(t, entity.VehicleStatusActive, v.Status)

	_, err = env.vehicles.Create(ctx, dto.CreateVehicleRequest{NomorMobil: "B 1 A", Capacity: 8})
	assert.ErrorIs(t, err, service.ErrPlateTaken)

	_, err = env.vehicles.Create(ctx, dto.CreateVehicleRequest{NomorMobil: "B 2 A", Capacity: 0})
	assert.ErrorIs(t, err, service.ErrInvalidCapacity)

	_, err = env.vehicles.Create(ctx, dto.CreateVehicleRequest{NomorMobil: "B 3 A", Capacity: 4, Status: "flying"})
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}

func TestVehicleGetIncludesDevices(t *testing.T) {
	env := newTestEnv(t)
	v := env.vehicle(t, "B 1 A", 4)
	env.onlineDevice(t, "DEV-1", v)

	got, err := env.vehicles.Get(context.Background(), v.ID)
	require.NoError(t, err)
	require.Len(t, got.Devices, 1)
	assert.Equal(t, "DEV-1", got.Devices[0].DeviceID)
}

func TestVehicleCapacityCannotDropBelowOccupancy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, device := env.bus(t, "andi", 5)
	for _, tag := range []string{"T1", "T2", "T3"} {
		_, err := env.occupancy.RecordTap(ctx, tag, device.DeviceID)
		require.NoError(t, err)
	}

	two := 2
	_, err := env.vehicles.Update(ctx, s.VehicleID, dto.UpdateVehicleRequest{Capacity: &two})
	assert.ErrorIs(t, err, service.ErrCapacityBelowOccupancy)

	three := 3
	updated, err := env.vehicles.Update(ctx, s.VehicleID, dto.UpdateVehicleRequest{Capacity: &three})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Capacity)

	_, err = env.occupancy.RecordTap(ctx, "T4", device.DeviceID)
	assert.ErrorIs(t, err, service.ErrVehicleAtCapacity)
}

func TestVehicleMaintenanceKeepsSessionOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, _ := env.bus(t, "andi", 5)

	maintenance := "maintenance"
	_, err := env.vehicles.Update(ctx, s.VehicleID, dto.UpdateVehicleRequest{Status: &maintenance})
	require.NoError(t, err)

	got, err := env.sessions.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusActive, got.Status)
}

func TestVehicleDeleteGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, device := env.bus(t, "andi", 5)

	err := env.vehicles.Delete(ctx, s.VehicleID)
	assert.ErrorIs(t, err, service.ErrVehicleInUse)

	_, err = env.sessions.EndSession(ctx, s.ID)
	require.NoError(t, err)
	err = env.vehicles.Delete(ctx, s.VehicleID)
	assert.ErrorIs(t, err, service.ErrVehicleHasDevices)

	require.NoError(t, env.devices.Delete(ctx, device.ID))
	err = env.vehicles.Delete(ctx, s.VehicleID)
	assert.ErrorIs(t, err, service.ErrVehicleHasHistory)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	fresh := env.vehicle(t, "B 9 Z", 4)
	require.NoError(t, env.vehicles.Delete(ctx, fresh.ID))
	_, err = env.vehicles.Get(ctx, fresh.ID)
	assert.ErrorIs(t, err, service.ErrVehicleNotFound)
}
