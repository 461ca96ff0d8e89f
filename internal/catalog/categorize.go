package catalog

import (
	"time"

	"b2bportal/internal/model"
)

// GuestRecommendationCount is how many catalog entries a guest sees as
// recommendations.
const GuestRecommendationCount = 5

// InStockEntry is a visible product with positive visible stock.
type InStockEntry struct {
	Product    model.Product
	VisibleQty int
}

// OutOfStockEntry is a visible product with no visible stock. NextArrival is
// nil when no replenishment is scheduled.
type OutOfStockEntry struct {
	Product     model.Product
	NextArrival *time.Time
	IncomingQty int
}

// View is the per-viewer projection of the catalog.
type View struct {
	Recommended     []model.Product
	InStock         []InStockEntry
	OutOfStock      []OutOfStockEntry
	ShowLoginPrompt bool
}

// Categorize filters all for the profile and buckets every surviving product
// into exactly one of InStock or OutOfStock. incoming maps product IDs to their
// earliest scheduled arrival. A nil profile means an unauthenticated viewer.
func Categorize(all []model.Product, profile *model.CustomerProfile, incoming map[uint]model.IncomingStock) View {
	view := View{
		InStock:         []InStockEntry{},
		OutOfStock:      []OutOfStockEntry{},
		ShowLoginPrompt: profile == nil,
	}

	if profile != nil {
		view.Recommended = profile.RecommendedProducts
	} else {
		n := min(len(all), GuestRecommendationCount)
		view.Recommended = all[:n]
	}
	if view.Recommended == nil {
		view.Recommended = []model.Product{}
	}

	for _, p := range Filter(all, profile) {
		qty := VisibleQuantity(p, profile)
		if qty > 0 {
			view.InStock = append(view.InStock, InStockEntry{Product: p, VisibleQty: qty})
			continue
		}

		entry := OutOfStockEntry{Product: p}
		if next, ok := incoming[p.ID]; ok {
			arrival := time.Time(next.ArrivalDate)
			entry.NextArrival = &arrival
			entry.IncomingQty = next.Qty
		}
		view.OutOfStock = append(view.OutOfStock, entry)
	}

	return view
}

// EarliestArrivals reduces a set of replenishment records to the earliest one
// per product. Equal dates keep the record with the lower ID.
func EarliestArrivals(records []model.IncomingStock) map[uint]model.IncomingStock {
	out := make(map[uint]model.IncomingStock, len(records))
	for _, r := range records {
		cur, ok := out[r.ProductID]
		if !ok {
			out[r.ProductID] = r
			continue
		}
		rt, ct := time.Time(r.ArrivalDate), time.Time(cur.ArrivalDate)
		if rt.Before(ct) || (rt.Equal(ct) && r.ID < cur.ID) {
			out[r.ProductID] = r
		}
	}
	return out
}
