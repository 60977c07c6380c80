package repository

import (
	"context"
	"errors"
	"time"

	"occupancy/internal/entity"

	"gorm.io/gorm"
)

type LoginHistoryRepository interface {
	Log(ctx context.Context, entry *entity.DriverLoginHistory) error
	CloseLatest(ctx context.Context, driverID uint, logoutTime time.Time) error
	ListByDriver(ctx context.Context, driverID uint) ([]entity.DriverLoginHistory, error)
}

type loginHistoryRepository struct {
	db *gorm.DB
}

func NewLoginHistoryRepository(db *gorm.DB) LoginHistoryRepository {
	return &loginHistoryRepository{db: db}
}

func (r *loginHistoryRepository) Log(ctx context.Context, entry *entity.DriverLoginHistory) error {
	return conn(ctx, r.db).Create(entry).Error
}

// CloseLatest stamps the logout time on the newest successful login that is
// still open. It is a no-op when there is none.
func (r *loginHistoryRepository) CloseLatest(ctx context.Context, driverID uint, logoutTime time.Time) error {
	var latest entity.DriverLoginHistory
	err := conn(ctx, r.db).
		Where("driver_id = ? AND login_status = ? AND logout_time IS NULL", driverID, entity.LoginSuccess).
		Order("login_time DESC, id DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return conn(ctx, r.db).
		Model(&entity.DriverLoginHistory{}).
		Where("id = ?", latest.ID).
		Update("logout_time", logoutTime).
		Error
}

func (r *loginHistoryRepository) ListByDriver(ctx context.Context, driverID uint) ([]entity.DriverLoginHistory, error) {
	var entries []entity.DriverLoginHistory
	err := conn(ctx, r.db).
		Where("driver_id = ?", driverID).
		Order("login_time DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
