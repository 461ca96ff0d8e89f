package repository

import (
	"context"

	"b2bportal/internal/model"

	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.CustomerProfile) error
	// FindByAccountID loads the profile with its curated recommendations.
	FindByAccountID(ctx context.Context, accountID uint) (*model.CustomerProfile, error)
	// UpdateRules persists the three visibility fields only.
	UpdateRules(ctx context.Context, p *model.CustomerProfile) error
	ReplaceRecommended(ctx context.Context, p *model.CustomerProfile, products []model.Product) error
}

type profileRepo struct{ db *gorm.DB }

func NewProfileRepository(db *gorm.DB) ProfileRepository { return &profileRepo{db: db} }

func (r *profileRepo) Create(ctx context.Context, tx *gorm.DB, p *model.CustomerProfile) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *profileRepo) FindByAccountID(ctx context.Context, accountID uint) (*model.CustomerProfile, error) {
	var p model.CustomerProfile
	err := r.db.WithContext(ctx).
		Preload("RecommendedProducts", func(db *gorm.DB) *gorm.DB {
			return db.Order("products.id ASC")
		}).
		Where("account_id = ?", accountID).
		First(&p).Error
	return &p, err
}

func (r *profileRepo) UpdateRules(ctx context.Context, p *model.CustomerProfile) error {
	return r.db.WithContext(ctx).
		Model(p).
		Select("CountrySuffix", "AllowedWarehouses", "BlockedProductKeywords").
		Updates(p).Error
}

func (r *profileRepo) ReplaceRecommended(ctx context.Context, p *model.CustomerProfile, products []model.Product) error {
	return r.db.WithContext(ctx).Model(p).Association("RecommendedProducts").Replace(products)
}
