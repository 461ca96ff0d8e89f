package catalog

import (
	"strings"

	"b2bportal/internal/model"
)

// Filter narrows products to those the profile may see. The region suffix is
// applied first, then every blocked keyword removes matching names. Both
// comparisons are case-insensitive substring matches and the input order is
// kept. A nil profile returns the input unchanged.
func Filter(products []model.Product, profile *model.CustomerProfile) []model.Product {
	if profile == nil {
		return products
	}

	suffix := strings.ToLower(strings.TrimSpace(profile.CountrySuffix))
	keywords := SplitList(strings.ToLower(profile.BlockedProductKeywords))

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if suffix != "" && !strings.Contains(strings.ToLower(p.SKU), suffix) {
			continue
		}
		if blocked(p.Name, keywords) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func blocked(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
