package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// OrderFilter is bound from query string of GET /v1/staff/orders.
type OrderFilter struct {
	Status string `form:"status,default=New"  validate:"omitempty,oneof=New Done all"`
	Page   int    `form:"page,default=1"      validate:"min=1"`
	Limit  int    `form:"limit,default=50"    validate:"min=1,max=200"`
}

type OrderItemResponse struct {
	ProductID  uint            `json:"product_id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type OrderResponse struct {
	ID         uint                `json:"id"`
	AccountID  *uint               `json:"account_id"`
	GuestName  string              `json:"guest_name"`
	GuestPhone string              `json:"guest_phone"`
	GuestEmail string              `json:"guest_email"`
	Status     string              `json:"status"`
	Items      []OrderItemResponse `json:"items"`
	Total      decimal.Decimal     `json:"total"`
	CreatedAt  string              `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type NewOrderCountResponse struct {
	Count int64 `json:"count"`
}

// ExportResponse reports the rows written to the purchase sheet.
type ExportResponse struct {
	Rows    int    `json:"rows"`
	SheetID string `json:"sheet_id"`
}

// PurchaseRow is one line of the staff purchase sheet.
type PurchaseRow struct {
	OrderID           uint
	Customer          string
	SKU               string
	Name              string
	DemandedQty       int
	CurrentStock      int
	IncomingQty       int
	EstimatedDelivery string
	NextArrivalQty    int
	NextArrivalDate   string
}
