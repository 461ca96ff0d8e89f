package repository

import (
	"context"

	"b2bportal/internal/model"

	"gorm.io/gorm"
)

// ProductRepository is the read side of the shared catalog. Products, stock
// and replenishment rows are written by the bulk importer, never by the API.
type ProductRepository interface {
	// ListWithStocks returns every product with its stock rows, ordered by ID.
	ListWithStocks(ctx context.Context) ([]model.Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Product, error)
	// EarliestIncoming returns at most one replenishment row per product: the
	// one with the earliest arrival date, lowest ID on ties.
	EarliestIncoming(ctx context.Context) ([]model.IncomingStock, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) ListWithStocks(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Stocks").
		Order("id ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Stocks").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) EarliestIncoming(ctx context.Context) ([]model.IncomingStock, error) {
	var rows []model.IncomingStock
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (product_id) *
		     FROM incoming_stocks
		     ORDER BY product_id, arrival_date ASC, id ASC`).
		Scan(&rows).Error
	return rows, err
}
