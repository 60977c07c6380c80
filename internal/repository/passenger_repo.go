package repository

import (
	"context"
	"errors"

	"occupancy/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PassengerRepository is append-only: records are never updated or deleted.
type PassengerRepository interface {
	Create(ctx context.Context, record *entity.PassengerRecord) error
	FindByID(ctx context.Context, id uint) (*entity.PassengerRecord, error)
	ListBySession(ctx context.Context, sessionID uint) ([]entity.PassengerRecord, error)
	ListByRFID(ctx context.Context, rfidCode string) ([]entity.PassengerRecord, error)
	CountBySession(ctx context.Context, sessionID uint) (int64, error)
}

type passengerRepository struct {
	db *gorm.DB
}

func NewPassengerRepository(db *gorm.DB) PassengerRepository {
	return &passengerRepository{db: db}
}

func (r *passengerRepository) Create(ctx context.Context, record *entity.PassengerRecord) error {
	return writeError(conn(ctx, r.db).Omit(clause.Associations).Create(record).Error)
}

func (r *passengerRepository) FindByID(ctx context.Context, id uint) (*entity.PassengerRecord, error) {
	var record entity.PassengerRecord
	err := conn(ctx, r.db).
		Preload("Session.Driver").
		Preload("Session.Vehicle").
		Where("id = ?", id).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *passengerRepository) ListBySession(ctx context.Context, sessionID uint) ([]entity.PassengerRecord, error) {
	var records []entity.PassengerRecord
	err := conn(ctx, r.db).
		Where("driver_mobil_session_id = ?", sessionID).
		Scopes(newestFirst).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *passengerRepository) ListByRFID(ctx context.Context, rfidCode string) ([]entity.PassengerRecord, error) {
	var records []entity.PassengerRecord
	err := conn(ctx, r.db).
		Preload("Session.Driver").
		Preload("Session.Vehicle").
		Where("rfid_code = ?", rfidCode).
		Scopes(newestFirst).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *passengerRepository) CountBySession(ctx context.Context, sessionID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&entity.PassengerRecord{}).
		Where("driver_mobil_session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
}
