package repository

import (
	"context"
	"errors"
	"time"

	"occupancy/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *entity.Driver) error
	FindByID(ctx context.Context, id uint) (*entity.Driver, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*entity.Driver, error)
	FindByUsername(ctx context.Context, username string) (*entity.Driver, error)
	FindByRFID(ctx context.Context, rfidCode string) (*entity.Driver, error)
	FindByEmail(ctx context.Context, email string) (*entity.Driver, error)
	Update(ctx context.Context, driver *entity.Driver) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]entity.Driver, error)
}

type driverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) Create(ctx context.Context, driver *entity.Driver) error {
	return writeError(conn(ctx, r.db).Create(driver).Error)
}

func (r *driverRepository) FindByID(ctx context.Context, id uint) (*entity.Driver, error) {
	return r.findOne(conn(ctx, r.db).Where("id = ?", id))
}

// FindByIDForUpdate locks the driver row until the surrounding transaction
// ends, serializing session starts for the same driver.
func (r *driverRepository) FindByIDForUpdate(ctx context.Context, id uint) (*entity.Driver, error) {
	return r.findOne(conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *driverRepository) FindByUsername(ctx context.Context, username string) (*entity.Driver, error) {
	return r.findOne(conn(ctx, r.db).Where("username = ?", username))
}

func (r *driverRepository) FindByRFID(ctx context.Context, rfidCode string) (*entity.Driver, error) {
	return r.findOne(conn(ctx, r.db).Where("rfid_code = ?", rfidCode))
}

func (r *driverRepository) FindByEmail(ctx context.Context, email string) (*entity.Driver, error) {
	return r.findOne(conn(ctx, r.db).Where("email = ?", email))
}

func (r *driverRepository) Update(ctx context.Context, driver *entity.Driver) error {
	return writeError(conn(ctx, r.db).Omit(clause.Associations).Save(driver).Error)
}

func (r *driverRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return conn(ctx, r.db).
		Model(&entity.Driver{}).
		Where("id = ?", id).
		Update("last_login", at).
		Error
}

func (r *driverRepository) Delete(ctx context.Context, id uint) error {
	return writeError(conn(ctx, r.db).Delete(&entity.Driver{}, id).Error)
}

func (r *driverRepository) List(ctx context.Context) ([]entity.Driver, error) {
	var drivers []entity.Driver
	if err := conn(ctx, r.db).Order("id ASC").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *driverRepository) findOne(query *gorm.DB) (*entity.Driver, error) {
	var driver entity.Driver
	err := query.First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}
