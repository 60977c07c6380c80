package service

import (
	"context"
	"strings"
	"time"

	"occupancy/internal/entity"
	"occupancy/internal/repository"

	"github.com/sirupsen/logrus"
)

const dateOnlyLayout = "2006-01-02"

type SessionService struct {
	tx       repository.Transactor
	drivers  repository.DriverRepository
	vehicles repository.VehicleRepository
	sessions repository.SessionRepository
	clock    Clock
	logger   logrus.FieldLogger
}

func NewSessionService(
	tx repository.Transactor,
	drivers repository.DriverRepository,
	vehicles repository.VehicleRepository,
	sessions repository.SessionRepository,
	clock Clock,
	logger logrus.FieldLogger,
) *SessionService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionService{
		tx:       tx,
		drivers:  drivers,
		vehicles: vehicles,
		sessions: sessions,
		clock:    clock,
		logger:   logger,
	}
}

// StartSession opens a work session for a driver on a vehicle. The driver row
// is locked before the vehicle row.
func (s *SessionService) StartSession(ctx context.Context, driverID uint, vehicleID uint) (*entity.Session, error) {
	if driverID == 0 || vehicleID == 0 {
		return nil, ErrInvalidInput
	}

	var started *entity.Session
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		driver, err := s.drivers.FindByIDForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if driver == nil {
			return ErrDriverNotFound
		}
		if !driver.IsActive() {
			return ErrDriverInactive
		}

		vehicle, err := s.vehicles.FindByIDForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if vehicle == nil {
			return ErrVehicleNotFound
		}
		if !vehicle.IsActive() {
			return ErrVehicleInactive
		}

		busy, err := s.sessions.FindActiveByDriver(ctx, driver.ID)
		if err != nil {
			return err
		}
		if busy != nil {
			return ErrDriverHasActiveSession
		}
		busy, err = s.sessions.FindActiveByVehicle(ctx, vehicle.ID)
		if err != nil {
			return err
		}
		if busy != nil {
			return ErrVehicleHasActiveSession
		}

		session := &entity.Session{
			DriverID:       driver.ID,
			VehicleID:      vehicle.ID,
			StartTime:      s.clock.Now(),
			PassengerCount: 0,
			Status:         entity.SessionStatusActive,
		}
		if err := s.sessions.Create(ctx, session); err != nil {
			return err
		}
		session.Driver = driver
		session.Vehicle = vehicle
		started = session
		return nil
	})
	if err != nil {
		err = storeError(err, ErrSessionConflict)
		s.logger.WithError(err).WithFields(logrus.Fields{
			"driver_id": driverID,
			"mobil_id":  vehicleID,
		}).Info("session start rejected")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": started.ID,
		"driver_id":  started.DriverID,
		"mobil_id":   started.VehicleID,
	}).Info("session started")
	return started, nil
}

// EndSession completes an active session. Ending a completed session is a
// conflict and leaves the row untouched.
func (s *SessionService) EndSession(ctx context.Context, sessionID uint) (*entity.Session, error) {
	if sessionID == 0 {
		return nil, ErrInvalidInput
	}

	var ended *entity.Session
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		session, err := s.sessions.FindByIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}
		if !session.IsActive() {
			return ErrSessionNotActive
		}

		now := s.clock.Now()
		ok, err := s.sessions.Complete(ctx, session.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSessionNotActive
		}
		session.Status = entity.SessionStatusCompleted
		session.EndTime = &now
		ended = session
		return nil
	})
	if err != nil {
		return nil, storeError(err, nil)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":      ended.ID,
		"passenger_count": ended.PassengerCount,
	}).Info("session ended")
	return ended, nil
}

func (s *SessionService) ListActive(ctx context.Context) ([]entity.Session, error) {
	return s.sessions.ListActive(ctx)
}

// Get returns a session with its driver, vehicle and passenger records.
func (s *SessionService) Get(ctx context.Context, sessionID uint) (*entity.Session, error) {
	session, err := s.sessions.FindDetailed(ctx, sessionID, true)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) ListByDriver(ctx context.Context, driverID uint) ([]entity.Session, error) {
	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrDriverNotFound
	}
	return s.sessions.ListByDriver(ctx, driverID)
}

func (s *SessionService) ListByVehicle(ctx context.Context, vehicleID uint) ([]entity.Session, error) {
	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, ErrVehicleNotFound
	}
	return s.sessions.ListByVehicle(ctx, vehicleID)
}

// ListByDateRange returns sessions whose start time falls inside the range,
// both ends inclusive.
func (s *SessionService) ListByDateRange(ctx context.Context, startDate string, endDate string) ([]entity.Session, error) {
	from, to, err := ParseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.sessions.ListByStartRange(ctx, from, to)
}

// Occupancy is the current load of a session against its vehicle capacity.
type Occupancy struct {
	Session   entity.Session
	Capacity  int
	Remaining int
}

func (s *SessionService) Occupancy(ctx context.Context, sessionID uint) (*Occupancy, error) {
	session, err := s.sessions.FindDetailed(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Vehicle == nil {
		return nil, ErrVehicleNotFound
	}
	remaining := session.Vehicle.Capacity - session.PassengerCount
	if remaining < 0 {
		remaining = 0
	}
	return &Occupancy{
		Session:   *session,
		Capacity:  session.Vehicle.Capacity,
		Remaining: remaining,
	}, nil
}

// ParseDateRange accepts RFC3339 timestamps or plain dates. A plain end date
// covers the whole day.
func ParseDateRange(startDate string, endDate string) (time.Time, time.Time, error) {
	startDate = strings.TrimSpace(startDate)
	endDate = strings.TrimSpace(endDate)
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, ErrDateRangeRequired
	}
	from, _, err := parseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, dateOnly, err := parseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if dateOnly {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrDateRangeOrder
	}
	return from, to, nil
}

func parseDate(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateOnlyLayout, value)
	if err != nil {
		return time.Time{}, false, ErrInvalidDateRange
	}
	return t, true, nil
}
