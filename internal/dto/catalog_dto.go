package dto

import "github.com/shopspring/decimal"

// ArrivalUnknown is shown for out-of-stock products with no scheduled
// replenishment.
const ArrivalUnknown = "TBD"

type ProductResponse struct {
	ID                uint            `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Mnemonic          string          `json:"mnemonic"`
	SpecDetails       string          `json:"spec_details"`
	Price             decimal.Decimal `json:"price"`
	ImageURL          string          `json:"image_url"`
	EstimatedDelivery string          `json:"estimated_delivery"`
}

type InStockItem struct {
	ProductResponse
	VisibleQty int `json:"visible_qty"`
}

type OutOfStockItem struct {
	ProductResponse
	NextArrival string `json:"next_arrival"` // YYYY-MM-DD or "TBD"
	IncomingQty int    `json:"incoming_qty"`
}

// CatalogResponse is returned by GET /v1/catalog.
type CatalogResponse struct {
	Recommended     []ProductResponse `json:"recommended"`
	InStock         []InStockItem     `json:"in_stock"`
	OutOfStock      []OutOfStockItem  `json:"out_of_stock"`
	ShowLoginPrompt bool              `json:"show_login_prompt"`
}
