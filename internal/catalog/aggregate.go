// Package catalog computes what a customer may see of the shared product and
// inventory dataset: visible stock per product, the region/keyword filter and
// the recommended / in-stock / out-of-stock buckets. Everything here is pure;
// callers load the data and pass it in.
package catalog

import (
	"strings"

	"b2bportal/internal/model"
)

// TotalQuantity sums the product's stock across every warehouse.
// Negative rows count as zero, so the result is never negative.
func TotalQuantity(p model.Product) int {
	total := 0
	for _, s := range p.Stocks {
		if s.Qty > 0 {
			total += s.Qty
		}
	}
	return total
}

// VisibleQuantity sums only the stock held in warehouses the profile may see.
// A nil profile (guest), an empty list or the "ALL" sentinel see everything.
func VisibleQuantity(p model.Product, profile *model.CustomerProfile) int {
	allowed, restricted := allowedWarehouses(profile)
	if !restricted {
		return TotalQuantity(p)
	}

	total := 0
	for _, s := range p.Stocks {
		if s.Qty <= 0 {
			continue
		}
		if _, ok := allowed[strings.TrimSpace(s.Warehouse)]; ok {
			total += s.Qty
		}
	}
	return total
}

func allowedWarehouses(profile *model.CustomerProfile) (map[string]struct{}, bool) {
	if profile == nil {
		return nil, false
	}
	raw := strings.TrimSpace(profile.AllowedWarehouses)
	if raw == "" || raw == model.AllWarehouses {
		return nil, false
	}

	set := make(map[string]struct{})
	for _, name := range SplitList(raw) {
		set[name] = struct{}{}
	}
	return set, true
}

// SplitList splits a comma-separated admin field into trimmed, non-empty
// entries.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
