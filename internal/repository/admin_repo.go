package repository

import (
	"context"
	"errors"
	"time"

	"occupancy/internal/entity"

	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *entity.Admin) error
	FindByID(ctx context.Context, id uint) (*entity.Admin, error)
	FindByUsername(ctx context.Context, username string) (*entity.Admin, error)
	FindByEmail(ctx context.Context, email string) (*entity.Admin, error)
	Update(ctx context.Context, admin *entity.Admin) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]entity.Admin, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *entity.Admin) error {
	return writeError(conn(ctx, r.db).Create(admin).Error)
}

func (r *adminRepository) FindByID(ctx context.Context, id uint) (*entity.Admin, error) {
	return r.findOne(conn(ctx, r.db).Where("id = ?", id))
}

func (r *adminRepository) FindByUsername(ctx context.Context, username string) (*entity.Admin, error) {
	return r.findOne(conn(ctx, r.db).Where("username = ?", username))
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	return r.findOne(conn(ctx, r.db).Where("email = ?", email))
}

func (r *adminRepository) Update(ctx context.Context, admin *entity.Admin) error {
	return writeError(conn(ctx, r.db).Save(admin).Error)
}

func (r *adminRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return conn(ctx, r.db).
		Model(&entity.Admin{}).
		Where("id = ?", id).
		Update("last_login", at).
		Error
}

func (r *adminRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&entity.Admin{}, id).Error
}

func (r *adminRepository) List(ctx context.Context) ([]entity.Admin, error) {
	var admins []entity.Admin
	if err := conn(ctx, r.db).Order("id ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *adminRepository) findOne(query *gorm.DB) (*entity.Admin, error) {
	var admin entity.Admin
	err := query.First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
