package repository

import (
	"context"
	"errors"
	"time"

	"occupancy/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByID(ctx context.Context, id uint) (*entity.Session, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*entity.Session, error)
	FindDetailed(ctx context.Context, id uint, withRecords bool) (*entity.Session, error)
	FindActiveByDriver(ctx context.Context, driverID uint) (*entity.Session, error)
	FindActiveByVehicle(ctx context.Context, vehicleID uint) (*entity.Session, error)
	FindActiveByVehicleForUpdate(ctx context.Context, vehicleID uint) (*entity.Session, error)
	Complete(ctx context.Context, id uint, endTime time.Time) (bool, error)
	IncrementPassengerCount(ctx context.Context, id uint, capacity int) (bool, error)
	ListActive(ctx context.Context) ([]entity.Session, error)
	ListByDriver(ctx context.Context, driverID uint) ([]entity.Session, error)
	ListByVehicle(ctx context.Context, vehicleID uint) ([]entity.Session, error)
	ListByStartRange(ctx context.Context, from, to time.Time) ([]entity.Session, error)
	CountByDriver(ctx context.Context, driverID uint) (int64, error)
	CountByVehicle(ctx context.Context, vehicleID uint) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return writeError(conn(ctx, r.db).Omit(clause.Associations).Create(s).Error)
}

func (r *sessionRepository) FindByID(ctx context.Context, id uint) (*entity.Session, error) {
	return r.findOne(conn(ctx, r.db).Where("id = ?", id))
}

func (r *sessionRepository) FindByIDForUpdate(ctx context.Context, id uint) (*entity.Session, error) {
	return r.findOne(conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *sessionRepository) FindDetailed(ctx context.Context, id uint, withRecords bool) (*entity.Session, error) {
	query := withParties(conn(ctx, r.db))
	if withRecords {
		query = query.Preload("PassengerRecords", newestFirst)
	}
	return r.findOne(query.Where("id = ?", id))
}

func (r *sessionRepository) FindActiveByDriver(ctx context.Context, driverID uint) (*entity.Session, error) {
	return r.findOne(conn(ctx, r.db).
		Where("driver_id = ? AND status = ?", driverID, entity.SessionStatusActive))
}

func (r *sessionRepository) FindActiveByVehicle(ctx context.Context, vehicleID uint) (*entity.Session, error) {
	return r.findOne(conn(ctx, r.db).
		Where("mobil_id = ? AND status = ?", vehicleID, entity.SessionStatusActive))
}

// FindActiveByVehicleForUpdate locks the active session row of a vehicle.
// Every capacity check must happen after this lock is held.
func (r *sessionRepository) FindActiveByVehicleForUpdate(ctx context.Context, vehicleID uint) (*entity.Session, error) {
	return r.findOne(conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("mobil_id = ? AND status = ?", vehicleID, entity.SessionStatusActive))
}

// Complete moves an active session to completed. It reports false when the
// session was not active anymore.
func (r *sessionRepository) Complete(ctx context.Context, id uint, endTime time.Time) (bool, error) {
	result := conn(ctx, r.db).
		Model(&entity.Session{}).
		Where("id = ? AND status = ?", id, entity.SessionStatusActive).
		Updates(map[string]any{
			"status":   entity.SessionStatusCompleted,
			"end_time": endTime,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementPassengerCount adds exactly one passenger while the session is
// active and below capacity. It reports false when no row qualified.
func (r *sessionRepository) IncrementPassengerCount(ctx context.Context, id uint, capacity int) (bool, error) {
	result := conn(ctx, r.db).
		Model(&entity.Session{}).
		Where("id = ? AND status = ? AND passenger_count < ?", id, entity.SessionStatusActive, capacity).
		Update("passenger_count", gorm.Expr("passenger_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *sessionRepository) ListActive(ctx context.Context) ([]entity.Session, error) {
	return r.list(withParties(conn(ctx, r.db)).
		Where("status = ?", entity.SessionStatusActive).
		Order("start_time DESC, id DESC"))
}

func (r *sessionRepository) ListByDriver(ctx context.Context, driverID uint) ([]entity.Session, error) {
	return r.list(conn(ctx, r.db).
		Preload("Vehicle").
		Where("driver_id = ?", driverID).
		Order("start_time DESC, id DESC"))
}

func (r *sessionRepository) ListByVehicle(ctx context.Context, vehicleID uint) ([]entity.Session, error) {
	return r.list(conn(ctx, r.db).
		Preload("Driver").
		Where("mobil_id = ?", vehicleID).
		Order("start_time DESC, id DESC"))
}

// CountByDriver counts sessions of any status.
func (r *sessionRepository) CountByDriver(ctx context.Context, driverID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Session{}).Where("driver_id = ?", driverID).Count(&count).Error
	return count, err
}

func (r *sessionRepository) CountByVehicle(ctx context.Context, vehicleID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Session{}).Where("mobil_id = ?", vehicleID).Count(&count).Error
	return count, err
}

func (r *sessionRepository) ListByStartRange(ctx context.Context, from, to time.Time) ([]entity.Session, error) {
	return r.list(withParties(conn(ctx, r.db)).
		Where("start_time BETWEEN ? AND ?", from, to).
		Order("start_time DESC, id DESC"))
}

func withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Driver").Preload("Vehicle")
}

func (r *sessionRepository) list(query *gorm.DB) ([]entity.Session, error) {
	var sessions []entity.Session
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) findOne(query *gorm.DB) (*entity.Session, error) {
	var session entity.Session
	err := query.First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
