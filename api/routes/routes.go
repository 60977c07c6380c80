package routes

import (
	"time"

	"occupancy/api/handler"
	"occupancy/api/middleware"
	"occupancy/internal/entity"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Handlers struct {
	Health    handler.HealthHandler
	Auth      *handler.AuthHandler
	Session   *handler.SessionHandler
	Passenger *handler.PassengerHandler
	Device    *handler.DeviceHandler
	Vehicle   *handler.VehicleHandler
	Driver    *handler.DriverHandler
	Admin     *handler.AdminHandler
}

// Limit is a token bucket setting; a zero Rate disables limiting.
type Limit struct {
	Rate  float64
	Burst int
}

type Limits struct {
	Login  Limit
	Device Limit
}

type Router struct {
	Echo           *echo.Echo
	Handlers       Handlers
	AuthMiddleware middleware.AuthMiddleware
	LoginRate      *middleware.RateLimiter
	DeviceRate     *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, handlers Handlers, authMiddleware middleware.AuthMiddleware, limits Limits) *Router {
	return &Router{
		Echo:           e,
		Handlers:       handlers,
		AuthMiddleware: authMiddleware,
		LoginRate:      middleware.NewRateLimiter(rate.Limit(limits.Login.Rate), limits.Login.Burst, 10*time.Minute),
		DeviceRate:     middleware.NewRateLimiter(rate.Limit(limits.Device.Rate), limits.Device.Burst, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	h := r.Handlers
	requireAuth := r.AuthMiddleware.RequireAuth
	adminOnly := middleware.RequireRole(entity.RoleAdmin)
	driverOnly := middleware.RequireRole(entity.RoleDriver)

	e.GET("/", h.Health.Index)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/admin/login", h.Auth.AdminLogin, r.LoginRate.Middleware())
	auth.POST("/driver/login", h.Auth.DriverLogin, r.LoginRate.Middleware())
	auth.POST("/logout", h.Auth.Logout, requireAuth)

	admins := api.Group("/admin", requireAuth, adminOnly)
	admins.GET("", h.Admin.List)
	admins.POST("", h.Admin.Create)
	admins.GET("/:id", h.Admin.Get)
	admins.PUT("/:id", h.Admin.Update)
	admins.DELETE("/:id", h.Admin.Delete)

	drivers := api.Group("/driver", requireAuth)
	drivers.GET("", h.Driver.List, adminOnly)
	drivers.POST("", h.Driver.Create, adminOnly)
	drivers.GET("/:id", h.Driver.Get)
	drivers.PUT("/:id", h.Driver.Update, adminOnly)
	drivers.DELETE("/:id", h.Driver.Delete, adminOnly)
	drivers.GET("/:id/login-history", h.Driver.LoginHistory)

	vehicles := api.Group("/mobil", requireAuth)
	vehicles.GET("", h.Vehicle.List)
	vehicles.POST("", h.Vehicle.Create, adminOnly)
	vehicles.GET("/:id", h.Vehicle.Get)
	vehicles.PUT("/:id", h.Vehicle.Update, adminOnly)
	vehicles.DELETE("/:id", h.Vehicle.Delete, adminOnly)
	vehicles.GET("/:id/sessions", h.Vehicle.SessionHistory)

	devices := api.Group("/device", requireAuth)
	devices.GET("", h.Device.List)
	devices.POST("", h.Device.Create, adminOnly)
	devices.GET("/:id", h.Device.Get)
	devices.PUT("/:id", h.Device.Update, adminOnly)
	devices.DELETE("/:id", h.Device.Delete, adminOnly)
	devices.PUT("/:id/status", h.Device.UpdateStatus)

	sessions := api.Group("/session", requireAuth)
	sessions.POST("/start", h.Session.Start, driverOnly)
	sessions.PUT("/:id/end", h.Session.End, driverOnly)
	sessions.GET("/active", h.Session.Active)
	sessions.GET("/date", h.Session.ByDateRange, adminOnly)
	sessions.GET("/driver/:id", h.Session.ByDriver)
	sessions.GET("/:id/occupancy", h.Session.Occupancy)
	sessions.GET("/:id", h.Session.Get)

	passengers := api.Group("/passenger")
	passengers.POST("/record", h.Passenger.Record, r.DeviceRate.Middleware())
	passengers.GET("/session/:id", h.Passenger.BySession, requireAuth)
	passengers.GET("/rfid/:rfid_code", h.Passenger.ByRFID, requireAuth)
	passengers.GET("/:id", h.Passenger.Get, requireAuth)
}
