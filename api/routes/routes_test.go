package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"occupancy/api/handler"
	"occupancy/api/middleware"
	"occupancy/api/routes"
	"occupancy/internal/dbtest"
	"occupancy/internal/dto"
	"occupancy/internal/repository"
	"occupancy/internal/service"
	"occupancy/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	echo    *echo.Echo
	drivers *service.DriverService
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := dbtest.New(t)
	logger := dbtest.Logger()
	tx := repository.NewTransactor(db, repository.TxConfig{
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		Backoff:    10 * time.Millisecond,
	}, logger)

	adminRepo := repository.NewAdminRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	passengerRepo := repository.NewPassengerRepository(db)
	historyRepo := repository.NewLoginHistoryRepository(db)
	hasher := service.BcryptPasswordHasher{Cost: bcrypt.MinCost}
	jwt := &utils.JWTManager{Secret: []byte("test-secret"), Issuer: "occupancy-test", AccessTokenTTL: time.Hour}
	clock := service.RealClock{}

	sessions := service.NewSessionService(tx, driverRepo, vehicleRepo, sessionRepo, clock, logger)
	occupancy := service.NewOccupancyService(tx, deviceRepo, vehicleRepo, sessionRepo, passengerRepo, clock, logger)
	devices := service.NewDeviceService(tx, deviceRepo, vehicleRepo, clock, logger)
	vehicles := service.NewVehicleService(tx, vehicleRepo, deviceRepo, sessionRepo)
	drivers := service.NewDriverService(tx, driverRepo, sessionRepo, historyRepo, hasher)
	admins := service.NewAdminService(adminRepo, hasher)
	auth := service.NewAuthService(
		adminRepo,
		driverRepo,
		historyRepo,
		repository.NewBlacklistedTokenRepository(db),
		hasher,
		service.JWTAccessIssuer{Manager: jwt},
		clock,
		logger,
	)

	_, err := admins.Create(context.Background(), dto.CreateAdminRequest{
		Username: "root",
		Password: "rootpass",
		Name:     "Root",
		Email:    "root@example.com",
	})
	require.NoError(t, err)

	validate := handler.NewValidator()
	app := routes.NewEcho(logger, nil)
	routes.NewRouter(app, routes.Handlers{
		Health:    handler.HealthHandler{Name: "occupancy", Version: "test"},
		Auth:      handler.NewAuthHandler(auth, validate, logger),
		Session:   handler.NewSessionHandler(sessions, validate, logger),
		Passenger: handler.NewPassengerHandler(occupancy, validate, logger),
		Device:    handler.NewDeviceHandler(devices, validate, logger),
		Vehicle:   handler.NewVehicleHandler(vehicles, sessions, validate, logger),
		Driver:    handler.NewDriverHandler(drivers, validate, logger),
		Admin:     handler.NewAdminHandler(admins, validate, logger),
	}, middleware.AuthMiddleware{Auth: auth, Logger: logger}, routes.Limits{}).RegisterRoutes()

	return &server{echo: app, drivers: drivers}
}

func (s *server) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (s *server) login(t *testing.T, kind, username, password string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/auth/"+kind+"/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", env.Status)
	assert.Equal(t, "occupancy is running", env.Message)
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodGet, "/api/mobil", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "unauthorized", env.Kind)
	assert.Equal(t, "No token provided", env.Message)

	status, env = s.do(t, http.MethodGet, "/api/mobil", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", env.Message)
}

func TestRoleEnforcement(t *testing.T) {
	s := newServer(t)
	_, err := s.drivers.Create(context.Background(), dto.CreateDriverRequest{
		RFIDCode:   "DRV-1",
		NamaDriver: "Budi",
		Username:   "budi",
		Password:   "secret123",
	})
	require.NoError(t, err)
	driverToken := s.login(t, "driver", "budi", "secret123")
	adminToken := s.login(t, "admin", "root", "rootpass")

	status, env := s.do(t, http.MethodPost, "/api/mobil", driverToken, map[string]any{"nomor_mobil": "B 1", "capacity": 4})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", env.Kind)
	assert.Equal(t, "Access denied. Admin role required", env.Message)

	status, env = s.do(t, http.MethodPost, "/api/session/start", adminToken, map[string]any{"driver_id": 1, "mobil_id": 1})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied. Driver role required", env.Message)

	status, _ = s.do(t, http.MethodGet, "/api/mobil", driverToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newServer(t)

	status, env := s.do(t, http.MethodPost, "/api/auth/admin/login", "", map[string]string{
		"username": "root",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", env.Kind)
	assert.Equal(t, "Invalid credentials", env.Message)
}

func TestTapFlow(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "root", "rootpass")

	status, env := s.do(t, http.MethodPost, "/api/mobil", admin, map[string]any{"nomor_mobil": "B 1234 XY", "capacity": 2})
	require.Equal(t, http.StatusCreated, status, env.Message)
	vehicle := decode[dto.VehicleResponse](t, env)

	status, env = s.do(t, http.MethodPost, "/api/device", admin, map[string]any{"device_id": "READER-1", "mobil_id": vehicle.ID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	device := decode[dto.DeviceResponse](t, env)
	assert.Equal(t, "offline", device.Status)

	status, env = s.do(t, http.MethodPost, "/api/driver", admin, map[string]any{
		"rfid_code":   "DRV-9",
		"nama_driver": "Siti",
		"username":    "siti",
		"password":    "secret123",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	driver := decode[dto.DriverResponse](t, env)

	driverToken := s.login(t, "driver", "siti", "secret123")
	status, env = s.do(t, http.MethodPost, "/api/session/start", driverToken, map[string]any{"driver_id": driver.ID, "mobil_id": vehicle.ID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	session := decode[dto.SessionResponse](t, env)
	assert.Equal(t, "active", session.Status)

	tap := map[string]string{"rfid_code": "CARD-1", "device_id": "READER-1"}
	status, env = s.do(t, http.MethodPost, "/api/passenger/record", "", tap)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "unavailable", env.Kind)
	assert.Equal(t, "Device is offline", env.Message)

	status, env = s.do(t, http.MethodPut, fmt.Sprintf("/api/device/%d/status", device.ID), driverToken, map[string]string{"status": "online"})
	require.Equal(t, http.StatusOK, status, env.Message)

	for i := 1; i <= 2; i++ {
		status, env = s.do(t, http.MethodPost, "/api/passenger/record", "", tap)
		require.Equal(t, http.StatusCreated, status, env.Message)
		result := decode[dto.TapResponse](t, env)
		assert.Equal(t, i, result.PassengerCount)
		assert.Equal(t, session.ID, result.SessionID)
		assert.Equal(t, vehicle.ID, result.MobilID)
	}

	status, env = s.do(t, http.MethodPost, "/api/passenger/record", "", tap)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "conflict", env.Kind)
	assert.Equal(t, "Mobil is at maximum capacity", env.Message)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/session/%d/occupancy", session.ID), driverToken, nil)
	require.Equal(t, http.StatusOK, status)
	occupancy := decode[dto.OccupancyResponse](t, env)
	assert.Equal(t, 2, occupancy.Capacity)
	assert.Equal(t, 2, occupancy.PassengerCount)
	assert.Equal(t, 0, occupancy.Remaining)

	status, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/passenger/session/%d", session.ID), admin, nil)
	require.Equal(t, http.StatusOK, status)
	passengers := decode[dto.SessionPassengersResponse](t, env)
	assert.Equal(t, 2, passengers.PassengerCount)
	assert.Len(t, passengers.Passengers, 2)

	status, env = s.do(t, http.MethodGet, "/api/passenger/rfid/CARD-1", admin, nil)
	require.Equal(t, http.StatusOK, status)
	history := decode[dto.RFIDHistoryResponse](t, env)
	assert.Equal(t, 2, history.Count)

	status, env = s.do(t, http.MethodPut, fmt.Sprintf("/api/session/%d/end", session.ID), driverToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	ended := decode[dto.SessionResponse](t, env)
	assert.Equal(t, "completed", ended.Status)
	assert.NotNil(t, ended.EndTime)

	status, env = s.do(t, http.MethodPut, fmt.Sprintf("/api/session/%d/end", session.ID), driverToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Session is not active", env.Message)

	status, env = s.do(t, http.MethodPost, "/api/passenger/record", "", tap)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "conflict", env.Kind)
	assert.Equal(t, "No active session found for this device", env.Message)

	status, env = s.do(t, http.MethodGet, "/api/session/active", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]dto.SessionResponse](t, env))

	status, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/driver/%d", driver.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "conflict", env.Kind)
	assert.Equal(t, "Cannot delete driver with session history", env.Message)

	status, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/device/%d", device.ID), admin, nil)
	require.Equal(t, http.StatusOK, status)
	status, env = s.do(t, http.MethodDelete, fmt.Sprintf("/api/mobil/%d", vehicle.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "conflict", env.Kind)
	assert.Equal(t, "Cannot delete mobil with session history", env.Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "admin", "root", "rootpass")

	status, _ := s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env := s.do(t, http.MethodGet, "/api/admin", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", env.Message)
}

func TestRequestErrors(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "root", "rootpass")

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		status  int
		kind    string
		message string
	}{
		{
			name:    "missing fields",
			method:  http.MethodPost,
			path:    "/api/passenger/record",
			body:    map[string]string{},
			status:  http.StatusBadRequest,
			kind:    "invalid_input",
			message: "Validation failed: rfid_code is required, device_id is required",
		},
		{
			name:    "unknown field",
			method:  http.MethodPost,
			path:    "/api/passenger/record",
			body:    `{"rfid_code":"A","device_id":"B","extra":1}`,
			status:  http.StatusBadRequest,
			kind:    "invalid_input",
			message: "Invalid request body",
		},
		{
			name:    "unknown device",
			method:  http.MethodPost,
			path:    "/api/passenger/record",
			body:    map[string]string{"rfid_code": "A", "device_id": "missing"},
			status:  http.StatusNotFound,
			kind:    "not_found",
			message: "Device not found",
		},
		{
			name:    "bad id",
			method:  http.MethodGet,
			path:    "/api/mobil/abc",
			status:  http.StatusBadRequest,
			kind:    "invalid_input",
			message: "Invalid id",
		},
		{
			name:    "missing vehicle",
			method:  http.MethodGet,
			path:    "/api/mobil/999",
			status:  http.StatusNotFound,
			kind:    "not_found",
			message: "Mobil not found",
		},
		{
			name:    "date range required",
			method:  http.MethodGet,
			path:    "/api/session/date",
			status:  http.StatusBadRequest,
			kind:    "invalid_input",
			message: "start_date and end_date are required",
		},
		{
			name:    "bad device status",
			method:  http.MethodPut,
			path:    "/api/device/1/status",
			body:    map[string]string{"status": "broken"},
			status:  http.StatusBadRequest,
			kind:    "invalid_input",
			message: `Invalid status. Must be "online" or "offline"`,
		},
		{
			name:    "unknown route",
			method:  http.MethodGet,
			path:    "/nope",
			status:  http.StatusNotFound,
			kind:    "not_found",
			message: "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, tt.method, tt.path, admin, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.kind, env.Kind)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestDateRangeQuery(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin", "root", "rootpass")

	today := time.Now().UTC().Format("2006-01-02")
	status, env := s.do(t, http.MethodGet, "/api/session/date?start_date="+today+"&end_date="+today, admin, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Empty(t, decode[[]dto.SessionResponse](t, env))

	status, env = s.do(t, http.MethodGet, "/api/session/date?start_date=2024-02-01&end_date=2024-01-01", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "start_date must not be after end_date", env.Message)
}
