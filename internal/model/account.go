package model

import "time"

// AllWarehouses is the AllowedWarehouses sentinel that lifts the warehouse
// restriction.
const AllWarehouses = "ALL"

// Account is a portal login. Staff accounts receive order notifications and
// may use the staff surface.
type Account struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string
	Phone        string
	PasswordHash string `gorm:"not null"`
	IsStaff      bool   `gorm:"not null;default:false"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Profile *CustomerProfile `gorm:"foreignKey:AccountID"`
}

// CustomerProfile holds the per-customer visibility rules. Exactly one exists
// per Account; it is created in the same transaction as the account.
type CustomerProfile struct {
	ID        uint `gorm:"primaryKey"`
	AccountID uint `gorm:"uniqueIndex;not null"`
	// CountrySuffix keeps only SKUs containing it; empty disables the filter.
	CountrySuffix string `gorm:"type:varchar(10)"`
	// AllowedWarehouses is "ALL" or a comma-separated list of warehouse names.
	AllowedWarehouses string `gorm:"type:varchar(500);not null;default:'ALL'"`
	// BlockedProductKeywords is a comma-separated list matched against names.
	BlockedProductKeywords string
	UpdatedAt              time.Time

	RecommendedProducts []Product `gorm:"many2many:profile_recommended_products"`
}
