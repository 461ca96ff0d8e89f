package dto

import "github.com/shopspring/decimal"

// Form field prefixes of the two checkout steps. The product ID is the
// segment after the last underscore of the field name.
const (
	QtyFieldPrefix      = "qty_"
	FinalQtyFieldPrefix = "final_qty_"
)

// ContactForm carries the contact fields submitted with POST /v1/checkout/confirm.
type ContactForm struct {
	Name  string `form:"name"  json:"name"  validate:"required,max=100"`
	Phone string `form:"phone" json:"phone" validate:"required,max=20"`
	Email string `form:"email" json:"email" validate:"max=254"`
}

type PreviewItem struct {
	Product  ProductResponse `json:"product"`
	Qty      int             `json:"qty"`
	Subtotal decimal.Decimal `json:"subtotal"`
	// Field is the name the confirmation form must use for this line.
	Field string `json:"field"`
}

// PreviewResponse is returned by POST /v1/checkout/preview.
type PreviewResponse struct {
	Items      []PreviewItem   `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// RedirectResponse tells the client to navigate instead of rendering.
type RedirectResponse struct {
	Redirect string `json:"redirect"`
}

type ConfirmResponse struct {
	OrderID   uint   `json:"order_id"`
	Status    string `json:"status"`
	ItemCount int    `json:"item_count"`
}
