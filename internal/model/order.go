package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusNew  = "New"
	OrderStatusDone = "Done"
)

// Order is created at checkout confirmation. AccountID is nil for guest
// checkout; the guest contact fields are stored for every order.
type Order struct {
	ID         uint   `gorm:"primaryKey"`
	AccountID  *uint  `gorm:"index"`
	GuestName  string `gorm:"not null;default:'Guest'"`
	GuestPhone string `gorm:"not null"`
	GuestEmail string
	Status     string `gorm:"type:varchar(20);not null;default:'New';index"`
	CreatedAt  time.Time

	Account *Account    `gorm:"foreignKey:AccountID"`
	Items   []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"not null;index"`
	ProductID uint `gorm:"not null;index"`
	Quantity  int  `gorm:"not null;check:quantity > 0"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TotalPrice reads the product's current price; it is not snapshotted at
// order time.
func (i OrderItem) TotalPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
