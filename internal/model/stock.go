package model

import (
	"time"

	"gorm.io/datatypes"
)

// Stock is the on-hand quantity of one product in one warehouse.
// (ProductID, Warehouse) is unique.
type Stock struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;uniqueIndex:idx_stock_product_warehouse"`
	Warehouse string `gorm:"not null;uniqueIndex:idx_stock_product_warehouse"`
	StockOrg  string
	Qty       int `gorm:"not null;default:0;check:qty >= 0"`
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// IncomingStock is one pending replenishment shipment.
type IncomingStock struct {
	ID          uint           `gorm:"primaryKey"`
	ProductID   uint           `gorm:"not null;index"`
	Warehouse   string         `gorm:"not null"`
	Qty         int            `gorm:"not null;default:0"`
	ArrivalDate datatypes.Date `gorm:"not null;index"`
	Note        string
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName keeps the plural form used by the import tooling.
func (IncomingStock) TableName() string { return "incoming_stocks" }
