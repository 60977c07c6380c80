package service_test

import (
	"context"
	"testing"
	"time"

	"occupancy/internal/dbtest"
	"occupancy/internal/dto"
	"occupancy/internal/entity"
	"occupancy/internal/repository"
	"occupancy/internal/service"
	"occupancy/internal/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db *gorm.DB

	driverRepo    repository.DriverRepository
	vehicleRepo   repository.VehicleRepository
	deviceRepo    repository.DeviceRepository
	sessionRepo   repository.SessionRepository
	passengerRepo repository.PassengerRepository
	historyRepo   repository.LoginHistoryRepository

	sessions  *service.SessionService
	occupancy *service.OccupancyService
	devices   *service.DeviceService
	vehicles  *service.VehicleService
	drivers   *service.DriverService
	admins    *service.AdminService
	auth      *service.AuthService
	jwt       *utils.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.New(t)
	logger := dbtest.Logger()
	tx := repository.NewTransactor(db, repository.TxConfig{
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		Backoff:    10 * time.Millisecond,
	}, logger)
	hasher := service.BcryptPasswordHasher{Cost: bcrypt.MinCost}
	jwt := &utils.JWTManager{Secret: []byte("test-secret"), Issuer: "occupancy-test", AccessTokenTTL: time.Hour}

	env := &testEnv{
		db:            db,
		driverRepo:    repository.NewDriverRepository(db),
		vehicleRepo:   repository.NewVehicleRepository(db),
		deviceRepo:    repository.NewDeviceRepository(db),
		sessionRepo:   repository.NewSessionRepository(db),
		passengerRepo: repository.NewPassengerRepository(db),
		historyRepo:   repository.NewLoginHistoryRepository(db),
		jwt:           jwt,
	}
	clock := service.RealClock{}
	env.sessions = service.NewSessionService(tx, env.driverRepo, env.vehicleRepo, env.sessionRepo, clock, logger)
	env.occupancy = service.NewOccupancyService(tx, env.deviceRepo, env.vehicleRepo, env.sessionRepo, env.passengerRepo, clock, logger)
	env.devices = service.NewDeviceService(tx, env.deviceRepo, env.vehicleRepo, clock, logger)
	env.vehicles = service.NewVehicleService(tx, env.vehicleRepo, env.deviceRepo, env.sessionRepo)
	env.drivers = service.NewDriverService(tx, env.driverRepo, env.sessionRepo, env.historyRepo, hasher)
	admins := repository.NewAdminRepository(db)
	env.admins = service.NewAdminService(admins, hasher)
	env.auth = service.NewAuthService(
		admins,
		env.driverRepo,
		env.historyRepo,
		repository.NewBlacklistedTokenRepository(db),
		hasher,
		service.JWTAccessIssuer{Manager: jwt},
		clock,
		logger,
	)
	return env
}

func (e *testEnv) driver(t *testing.T, username string) *entity.Driver {
	t.Helper()
	d, err := e.drivers.Create(context.Background(), dto.CreateDriverRequest{
		RFIDCode:   "DRV-" + username,
		NamaDriver: "Driver " + username,
		Username:   username,
		Password:   "secret123",
	})
	require.NoError(t, err)
	return d
}

func (e *testEnv) vehicle(t *testing.T, plate string, capacity int) *entity.Vehicle {
	t.Helper()
	v, err := e.vehicles.Create(context.Background(), dto.CreateVehicleRequest{NomorMobil: plate, Capacity: capacity})
	require.NoError(t, err)
	return v
}

// onlineDevice registers a device on the vehicle and switches it online.
func (e *testEnv) onlineDevice(t *testing.T, deviceID string, v *entity.Vehicle) *entity.Device {
	t.Helper()
	d, err := e.devices.Create(context.Background(), dto.CreateDeviceRequest{DeviceID: deviceID, MobilID: v.ID})
	require.NoError(t, err)
	d, err = e.devices.UpdateStatus(context.Background(), d.ID, "online")
	require.NoError(t, err)
	return d
}

// bus sets up a driver on a vehicle with an online device and an active
// session.
func (e *testEnv) bus(t *testing.T, name string, capacity int) (*entity.Session, *entity.Device) {
	t.Helper()
	d := e.driver(t, name)
	v := e.vehicle(t, "B "+name, capacity)
	device := e.onlineDevice(t, "DEV-"+name, v)
	s, err := e.sessions.StartSession(context.Background(), d.ID, v.ID)
	require.NoError(t, err)
	return s, device
}

func (e *testEnv) recordCount(t *testing.T, sessionID uint) int64 {
	t.Helper()
	n, err := e.passengerRepo.CountBySession(context.Background(), sessionID)
	require.NoError(t, err)
	return n
}

func (e *testEnv) passengerCount(t *testing.T, sessionID uint) int {
	t.Helper()
	s, err := e.sessionRepo.FindByID(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s.PassengerCount
}

func (e *testEnv) lastSync(t *testing.T, deviceID uint) time.Time {
	t.Helper()
	d, err := e.deviceRepo.FindByID(context.Background(), deviceID)
	require.NoError(t, err)
	require.NotNil(t, d)
	require.NotNil(t, d.LastSync)
	return *d.LastSync
}
