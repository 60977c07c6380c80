package repository

import (
	"context"
	"errors"
	"time"

	"occupancy/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *entity.Device) error
	FindByID(ctx context.Context, id uint) (*entity.Device, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*entity.Device, error)
	FindByDeviceID(ctx context.Context, deviceID string) (*entity.Device, error)
	FindByDeviceIDForUpdate(ctx context.Context, deviceID string) (*entity.Device, error)
	CountByVehicle(ctx context.Context, vehicleID uint) (int64, error)
	Update(ctx context.Context, device *entity.Device) error
	SetStatus(ctx context.Context, id uint, status entity.DeviceStatus, syncedAt time.Time) error
	TouchLastSync(ctx context.Context, id uint, syncedAt time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]entity.Device, error)
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) Create(ctx context.Context, device *entity.Device) error {
	return writeError(conn(ctx, r.db).Omit(clause.Associations).Create(device).Error)
}

func (r *deviceRepository) FindByID(ctx context.Context, id uint) (*entity.Device, error) {
	return r.findOne(conn(ctx, r.db).Preload("Vehicle").Where("id = ?", id))
}

func (r *deviceRepository) FindByIDForUpdate(ctx context.Context, id uint) (*entity.Device, error) {
	return r.findOne(conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *deviceRepository) FindByDeviceID(ctx context.Context, deviceID string) (*entity.Device, error) {
	return r.findOne(conn(ctx, r.db).Where("device_id = ?", deviceID))
}

// FindByDeviceIDForUpdate locks the device row so that concurrent taps from
// the same reader and status toggles are applied one at a time.
func (r *deviceRepository) FindByDeviceIDForUpdate(ctx context.Context, deviceID string) (*entity.Device, error) {
	return r.findOne(conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("device_id = ?", deviceID))
}

func (r *deviceRepository) CountByVehicle(ctx context.Context, vehicleID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&entity.Device{}).
		Where("mobil_id = ?", vehicleID).
		Count(&count).Error
	return count, err
}

func (r *deviceRepository) Update(ctx context.Context, device *entity.Device) error {
	return writeError(conn(ctx, r.db).Omit(clause.Associations).Save(device).Error)
}

func (r *deviceRepository) SetStatus(ctx context.Context, id uint, status entity.DeviceStatus, syncedAt time.Time) error {
	return conn(ctx, r.db).
		Model(&entity.Device{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "last_sync": syncedAt}).
		Error
}

func (r *deviceRepository) TouchLastSync(ctx context.Context, id uint, syncedAt time.Time) error {
	return conn(ctx, r.db).
		Model(&entity.Device{}).
		Where("id = ?", id).
		Update("last_sync", syncedAt).
		Error
}

func (r *deviceRepository) Delete(ctx context.Context, id uint) error {
	return writeError(conn(ctx, r.db).Delete(&entity.Device{}, id).Error)
}

func (r *deviceRepository) List(ctx context.Context) ([]entity.Device, error) {
	var devices []entity.Device
	if err := conn(ctx, r.db).Preload("Vehicle").Order("id ASC").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *deviceRepository) findOne(query *gorm.DB) (*entity.Device, error) {
	var device entity.Device
	err := query.First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}
