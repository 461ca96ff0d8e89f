package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the shared catalog entry. It is written by the bulk import and
// the admin tooling; the portal only reads it.
type Product struct {
	ID          uint   `gorm:"primaryKey"`
	SKU         string `gorm:"column:sku;uniqueIndex;not null"`
	Name        string `gorm:"index;not null"`
	Mnemonic    string
	SpecDetails string
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ImageURL    string
	// IncomingQty is the aggregate in-transit counter maintained by the
	// procurement import; per-shipment detail lives in IncomingStock.
	IncomingQty       int `gorm:"not null;default:0"`
	EstimatedDelivery string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Stocks   []Stock         `gorm:"foreignKey:ProductID"`
	Incoming []IncomingStock `gorm:"foreignKey:ProductID"`
}
