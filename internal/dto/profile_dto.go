package dto

type UpdateProfileRequest struct {
	CountrySuffix          *string `json:"country_suffix"           validate:"omitempty,max=10"`
	AllowedWarehouses      *string `json:"allowed_warehouses"       validate:"omitempty,max=500"`
	BlockedProductKeywords *string `json:"blocked_product_keywords"`
}

type SetRecommendationsRequest struct {
	ProductIDs []uint `json:"product_ids" validate:"max=100"`
}

type ProfileResponse struct {
	AccountID              uint              `json:"account_id"`
	CountrySuffix          string            `json:"country_suffix"`
	AllowedWarehouses      string            `json:"allowed_warehouses"`
	BlockedProductKeywords string            `json:"blocked_product_keywords"`
	RecommendedProducts    []ProductResponse `json:"recommended_products"`
}
