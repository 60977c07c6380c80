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

func TestDeviceCreateDefaultsOffline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := env.vehicle(t, "B 1 A", 4)

	d, err := env.devices.Create(ctx, dto.CreateDeviceRequest{DeviceID: "DEV-1", MobilID: v.ID})
	require.NoError(t, err)
	assert.Equal(t, entity.DeviceStatusOffline, d.Status)
	assert.Nil(t, d.LastSync)

	_, err = env.devices.Create(ctx, dto.CreateDeviceRequest{DeviceID: "DEV-1", MobilID: v.ID})
	assert.ErrorIs(t, err, service.ErrDeviceIDTaken)

	_, err = env.devices.Create(ctx, dto.CreateDeviceRequest{DeviceID: "DEV-2", MobilID: v.ID + 10})
	assert.ErrorIs(t, err, service.ErrVehicleNotFound)
}

func TestDeviceUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := env.vehicle(t, "B 1 A", 4)
	d, err := env.devices.Create(ctx, dto.CreateDeviceRequest{DeviceID: "DEV-1", MobilID: v.ID})
	require.NoError(t, err)

	updated, err := env.devices.UpdateStatus(ctx, d.ID, "ONLINE")
	require.NoError(t, err)
	assert.Equal(t, entity.DeviceStatusOnline, updated.Status)
	require.NotNil(t, updated.LastSync)

	_, err = env.devices.UpdateStatus(ctx, d.ID, "sleeping")
	assert.ErrorIs(t, err, service.ErrInvalidDeviceStatus)
	assert.Equal(t, service.KindInvalidInput, service.KindOf(err))

	_, err = env.devices.UpdateStatus(ctx, d.ID+10, "offline")
	assert.ErrorIs(t, err, service.ErrDeviceNotFound)
}

func TestDeviceUpdateMovesBetweenVehicles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.vehicle(t, "B 1 A", 4)
	second := env.vehicle(t, "B 2 A", 4)
	d, err := env.devices.Create(ctx, dto.CreateDeviceRequest{DeviceID: "DEV-1", MobilID: first.ID})
	require.NoError(t, err)
	_, err = env.devices.Create(ctx, dto.CreateDeviceRequest{DeviceID: "DEV-2", MobilID: first.ID})
	require.NoError(t, err)

	taken := "DEV-2"
	_, err = env.devices.Update(ctx, d.ID, dto.UpdateDeviceRequest{DeviceID: &taken})
	assert.ErrorIs(t, err, service.ErrDeviceIDTaken)

	updated, err := env.devices.Update(ctx, d.ID, dto.UpdateDeviceRequest{MobilID: &second.ID})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.VehicleID)

	got, err := env.devices.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "B 2 A", got.Vehicle.NomorMobil)
}

func TestDeviceDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.onlineDevice(t, "DEV-1", env.vehicle(t, "B 1 A", 4))

	require.NoError(t, env.devices.Delete(ctx, d.ID))
	_, err := env.devices.Get(ctx, d.ID)
	assert.ErrorIs(t, err, service.ErrDeviceNotFound)
	assert.ErrorIs(t, env.devices.Delete(ctx, d.ID), service.ErrDeviceNotFound)
}
