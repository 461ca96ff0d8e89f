package repository

import (
	"context"

	"b2bportal/internal/model"

	"gorm.io/gorm"
)

type AccountRepository interface {
	// Create must run inside the transaction that also creates the profile.
	Create(ctx context.Context, tx *gorm.DB, a *model.Account) error
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	FindByID(ctx context.Context, id uint) (*model.Account, error)
	ListStaff(ctx context.Context) ([]model.Account, error)
	Update(ctx context.Context, a *model.Account) error
	DB() *gorm.DB
}

type accountRepo struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) AccountRepository { return &accountRepo{db: db} }

func (r *accountRepo) DB() *gorm.DB { return r.db }

func (r *accountRepo) Create(ctx context.Context, tx *gorm.DB, a *model.Account) error {
	return tx.WithContext(ctx).Omit("Profile").Create(a).Error
}

func (r *accountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	var a model.Account
	err := r.db.WithContext(ctx).
		Where("username = ? AND active = true", username).
		First(&a).Error
	return &a, err
}

func (r *accountRepo) FindByID(ctx context.Context, id uint) (*model.Account, error) {
	var a model.Account
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *accountRepo) ListStaff(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).
		Where("is_staff = true AND active = true").
		Order("id ASC").
		Find(&accounts).Error
	return accounts, err
}

func (r *accountRepo) Update(ctx context.Context, a *model.Account) error {
	return r.db.WithContext(ctx).Omit("Profile").Save(a).Error
}
