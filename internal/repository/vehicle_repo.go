package repository

import (
	"context"
	"errors"

	"occupancy/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *entity.Vehicle) error
	FindByID(ctx context.Context, id uint) (*entity.Vehicle, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*entity.Vehicle, error)
	FindByIDWithDevices(ctx context.Context, id uint) (*entity.Vehicle, error)
	FindByPlate(ctx context.Context, nomorMobil string) (*entity.Vehicle, error)
	Update(ctx context.Context, vehicle *entity.Vehicle) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]entity.Vehicle, error)
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *entity.Vehicle) error {
	return writeError(conn(ctx, r.db).Omit(clause.Associations).Create(vehicle).Error)
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uint) (*entity.Vehicle, error) {
	return r.findOne(conn(ctx, r.db).Where("id = ?", id))
}

func (r *vehicleRepository) FindByIDForUpdate(ctx context.Context, id uint) (*entity.Vehicle, error) {
	return r.findOne(conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *vehicleRepository) FindByIDWithDevices(ctx context.Context, id uint) (*entity.Vehicle, error) {
	return r.findOne(conn(ctx, r.db).
		Preload("Devices", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id))
}

func (r *vehicleRepository) FindByPlate(ctx context.Context, nomorMobil string) (*entity.Vehicle, error) {
	return r.findOne(conn(ctx, r.db).Where("nomor_mobil = ?", nomorMobil))
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *entity.Vehicle) error {
	return writeError(conn(ctx, r.db).Omit(clause.Associations).Save(vehicle).Error)
}

func (r *vehicleRepository) Delete(ctx context.Context, id uint) error {
	return writeError(conn(ctx, r.db).Delete(&entity.Vehicle{}, id).Error)
}

func (r *vehicleRepository) List(ctx context.Context) ([]entity.Vehicle, error) {
	var vehicles []entity.Vehicle
	if err := conn(ctx, r.db).Order("id ASC").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *vehicleRepository) findOne(query *gorm.DB) (*entity.Vehicle, error) {
	var vehicle entity.Vehicle
	err := query.First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}
