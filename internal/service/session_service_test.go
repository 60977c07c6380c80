package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"occupancy/internal/dto"
	"occupancy/internal/entity"
	"occupancy/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSession(t *testing.T) {
	env := newTestEnv(t)
	d := env.driver(t, "andi")
	v := env.vehicle(t, "B 1234 XY", 10)

	s, err := env.sessions.StartSession(context.Background(), d.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusActive, s.Status)
	assert.Equal(t, 0, s.PassengerCount)
	assert.Nil(t, s.EndTime)
	assert.Equal(t, d.ID, s.Driver.ID)
	assert.Equal(t, v.ID, s.Vehicle.ID)
}

func TestStartSessionRequiresExistingParties(t *testing.T) {
	env := newTestEnv(t)
	d := env.driver(t, "andi")
	v := env.vehicle(t, "B 1 A", 4)
	ctx := context.Background()

	_, err := env.sessions.StartSession(ctx, d.ID+99, v.ID)
	assert.ErrorIs(t, err, service.ErrDriverNotFound)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	_, err = env.sessions.StartSession(ctx, d.ID, v.ID+99)
	assert.ErrorIs(t, err, service.ErrVehicleNotFound)

	_, err = env.sessions.StartSession(ctx, 0, v.ID)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestStartSessionRejectsInactiveParties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.driver(t, "andi")
	v := env.vehicle(t, "B 1 A", 4)

	inactive := "inactive"
	_, err := env.drivers.Update(ctx, d.ID, dto.UpdateDriverRequest{Status: &inactive})
	require.NoError(t, err)
	_, err = env.sessions.StartSession(ctx, d.ID, v.ID)
	assert.ErrorIs(t, err, service.ErrDriverInactive)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	other := env.driver(t, "budi")
	maintenance := "maintenance"
	_, err = env.vehicles.Update(ctx, v.ID, dto.UpdateVehicleRequest{Status: &maintenance})
	require.NoError(t, err)
	_, err = env.sessions.StartSession(ctx, other.ID, v.ID)
	assert.ErrorIs(t, err, service.ErrVehicleInactive)
}

func TestStartSessionBusyDriverCreatesNoRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.driver(t, "andi")
	first := env.vehicle(t, "B 1 A", 4)
	second := env.vehicle(t, "B 2 A", 4)

	_, err := env.sessions.StartSession(ctx, d.ID, first.ID)
	require.NoError(t, err)

	_, err = env.sessions.StartSession(ctx, d.ID, second.ID)
	assert.ErrorIs(t, err, service.ErrDriverHasActiveSession)

	history, err := env.sessions.ListByDriver(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStartSessionBusyVehicle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	v := env.vehicle(t, "B 1 A", 4)

	_, err := env.sessions.StartSession(ctx, env.driver(t, "andi").ID, v.ID)
	require.NoError(t, err)

	_, err = env.sessions.StartSession(ctx, env.driver(t, "budi").ID, v.ID)
	assert.ErrorIs(t, err, service.ErrVehicleHasActiveSession)
}

func TestConcurrentStartsOnOneVehicle(t *testing.T) {
	env := newTestEnv(t)
	v := env.vehicle(t, "B 1 A", 4)
	const drivers = 6
	ids := make([]uint, drivers)
	for i := range ids {
		ids[i] = env.driver(t, string(rune('a'+i))+"-driver").ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		started   int
		conflicts int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(driverID uint) {
			defer wg.Done()
			_, err := env.sessions.StartSession(context.Background(), driverID, v.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				started++
				return
			}
			if service.KindOf(err) == service.KindConflict {
				conflicts++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, started)
	assert.Equal(t, drivers-1, conflicts)

	sessions, err := env.sessions.ListByVehicle(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestEndSessionTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, err := env.sessions.StartSession(ctx, env.driver(t, "andi").ID, env.vehicle(t, "B 1 A", 4).ID)
	require.NoError(t, err)

	ended, err := env.sessions.EndSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusCompleted, ended.Status)
	require.NotNil(t, ended.EndTime)

	_, err = env.sessions.EndSession(ctx, s.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotActive)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	stored, err := env.sessionRepo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EndTime)
	assert.WithinDuration(t, *ended.EndTime, *stored.EndTime, time.Millisecond)
}

func TestEndSessionNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sessions.EndSession(context.Background(), 404)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestDriverCanStartAgainAfterEnding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.driver(t, "andi")
	v := env.vehicle(t, "B 1 A", 4)

	s, err := env.sessions.StartSession(ctx, d.ID, v.ID)
	require.NoError(t, err)
	_, err = env.sessions.EndSession(ctx, s.ID)
	require.NoError(t, err)

	again, err := env.sessions.StartSession(ctx, d.ID, v.ID)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, again.ID)

	active, err := env.sessions.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, again.ID, active[0].ID)
	assert.Equal(t, "andi", active[0].Driver.Username)
}

func TestDeactivatingDriverKeepsSessionOpen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	d := env.driver(t, "andi")
	s, err := env.sessions.StartSession(ctx, d.ID, env.vehicle(t, "B 1 A", 4).ID)
	require.NoError(t, err)

	inactive := "inactive"
	_, err = env.drivers.Update(ctx, d.ID, dto.UpdateDriverRequest{Status: &inactive})
	require.NoError(t, err)

	got, err := env.sessions.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusActive, got.Status)
}

func TestOccupancy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, device := env.bus(t, "andi", 3)

	_, err := env.occupancy.RecordTap(ctx, "TAG-1", device.DeviceID)
	require.NoError(t, err)

	occ, err := env.sessions.Occupancy(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, occ.Capacity)
	assert.Equal(t, 1, occ.Session.PassengerCount)
	assert.Equal(t, 2, occ.Remaining)

	_, err = env.sessions.Occupancy(ctx, s.ID+50)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestListByDateRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s, err := env.sessions.StartSession(ctx, env.driver(t, "andi").ID, env.vehicle(t, "B 1 A", 4).ID)
	require.NoError(t, err)

	today := s.StartTime.Format("2006-01-02")
	got, err := env.sessions.ListByDateRange(ctx, today, today)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, s.ID, got[0].ID)

	_, err = env.sessions.ListByDateRange(ctx, "", today)
	assert.ErrorIs(t, err, service.ErrDateRangeRequired)
}

func TestParseDateRange(t *testing.T) {
	from, to, err := service.ParseDateRange("2024-03-01", "2024-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 2, 23, 59, 59, 999999999, time.UTC), to)

	from, to, err = service.ParseDateRange("2024-03-01T08:00:00+07:00", "2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), to)

	_, _, err = service.ParseDateRange("yesterday", "2024-03-01")
	assert.ErrorIs(t, err, service.ErrInvalidDateRange)

	_, _, err = service.ParseDateRange("2024-03-02", "2024-03-01")
	assert.ErrorIs(t, err, service.ErrDateRangeOrder)

	_, _, err = service.ParseDateRange("2024-03-02", " ")
	assert.ErrorIs(t, err, service.ErrDateRangeRequired)
}
