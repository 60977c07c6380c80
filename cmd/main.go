package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"occupancy/api/handler"
	apiMiddleware "occupancy/api/middleware"
	"occupancy/api/routes"
	"occupancy/config"
	"occupancy/internal/dto"
	"occupancy/internal/repository"
	"occupancy/internal/service"
	"occupancy/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	appName    = "occupancy"
	appVersion = "1.0.0"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	db, err := config.ConnectionDb(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect database")
	}
	if cfg.Database.AutoMigrate {
		if err := config.Migrate(db); err != nil {
			logger.WithError(err).Fatal("failed to migrate database")
		}
	}

	tx := repository.NewTransactor(db, repository.TxConfig{
		Timeout:    cfg.Tx.Timeout,
		MaxRetries: cfg.Tx.MaxRetries,
		Backoff:    cfg.Tx.Backoff,
	}, logger)

	adminRepo := repository.NewAdminRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	passengerRepo := repository.NewPassengerRepository(db)
	historyRepo := repository.NewLoginHistoryRepository(db)
	blacklistRepo := repository.NewBlacklistedTokenRepository(db)

	accessManager := utils.JWTManager{
		Secret:         []byte(cfg.JWT.Secret),
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: cfg.JWT.Expiration,
	}
	passwordHasher := service.BcryptPasswordHasher{Cost: bcrypt.DefaultCost}
	clock := service.RealClock{}

	sessionService := service.NewSessionService(tx, driverRepo, vehicleRepo, sessionRepo, clock, logger)
	occupancyService := service.NewOccupancyService(tx, deviceRepo, vehicleRepo, sessionRepo, passengerRepo, clock, logger)
	deviceService := service.NewDeviceService(tx, deviceRepo, vehicleRepo, clock, logger)
	vehicleService := service.NewVehicleService(tx, vehicleRepo, deviceRepo, sessionRepo)
	driverService := service.NewDriverService(tx, driverRepo, sessionRepo, historyRepo, passwordHasher)
	adminService := service.NewAdminService(adminRepo, passwordHasher)
	authService := service.NewAuthService(
		adminRepo,
		driverRepo,
		historyRepo,
		blacklistRepo,
		passwordHasher,
		service.JWTAccessIssuer{Manager: &accessManager},
		clock,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	created, err := adminService.EnsureAdmin(ctx, dto.CreateAdminRequest{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create bootstrap admin")
	}
	if created {
		logger.WithField("username", cfg.Admin.Username).Info("bootstrap admin created")
	}

	janitor := service.NewTokenJanitor(authService, cfg.BlacklistCleanupPeriod, logger)
	go janitor.Run(ctx)

	validate := handler.NewValidator()
	app := routes.NewEcho(logger, cfg.CORSAllowOrigins)
	router := routes.NewRouter(app, routes.Handlers{
		Health:    handler.HealthHandler{Name: appName, Version: appVersion},
		Auth:      handler.NewAuthHandler(authService, validate, logger),
		Session:   handler.NewSessionHandler(sessionService, validate, logger),
		Passenger: handler.NewPassengerHandler(occupancyService, validate, logger),
		Device:    handler.NewDeviceHandler(deviceService, validate, logger),
		Vehicle:   handler.NewVehicleHandler(vehicleService, sessionService, validate, logger),
		Driver:    handler.NewDriverHandler(driverService, validate, logger),
		Admin:     handler.NewAdminHandler(adminService, validate, logger),
	}, apiMiddleware.AuthMiddleware{Auth: authService, Logger: logger}, routes.Limits{
		Login:  routes.Limit{Rate: cfg.LoginRate.Limit, Burst: cfg.LoginRate.Burst},
		Device: routes.Limit{Rate: cfg.DeviceRate.Limit, Burst: cfg.DeviceRate.Burst},
	})
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("server started")
		if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
