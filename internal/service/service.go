package service

import (
	"context"
	"errors"

	"b2bportal/internal/dto"
	"b2bportal/internal/model"

	"gorm.io/gorm"
)

// Sentinel errors shared with the HTTP layer, which maps them to status
// codes with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrAccountNotFound    = errors.New("account not found")
	ErrProfileNotFound    = errors.New("customer profile not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotNew        = errors.New("order is not in status New")
	ErrNothingSelected    = errors.New("no product selected")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrExportDisabled     = errors.New("purchase-sheet export is not configured")
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func productResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Mnemonic:          p.Mnemonic,
		SpecDetails:       p.SpecDetails,
		Price:             p.Price,
		ImageURL:          p.ImageURL,
		EstimatedDelivery: p.EstimatedDelivery,
	}
}

func productResponses(products []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse(p))
	}
	return out
}
