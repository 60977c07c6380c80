package repository

import (
	"context"
	"time"

	"occupancy/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlacklistedTokenRepository interface {
	Add(ctx context.Context, token *entity.BlacklistedToken) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type blacklistedTokenRepository struct {
	db *gorm.DB
}

func NewBlacklistedTokenRepository(db *gorm.DB) BlacklistedTokenRepository {
	return &blacklistedTokenRepository{db: db}
}

// Add is idempotent for the same token hash.
func (r *blacklistedTokenRepository) Add(ctx context.Context, t *entity.BlacklistedToken) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoNothing: true,
		}).
		Create(t).Error
}

func (r *blacklistedTokenRepository) Exists(ctx context.Context, tokenHash string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&entity.BlacklistedToken{}).
		Where("token_hash = ?", tokenHash).
		Count(&count).Error
	return count > 0, err
}

func (r *blacklistedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := conn(ctx, r.db).
		Where("expires_at < ?", now).
		Delete(&entity.BlacklistedToken{})
	return result.RowsAffected, result.Error
}
