package catalog

import (
	"testing"
	"time"

	"b2bportal/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// ── Fixtures ─────────────────────────────────────────────────────────────────

func product(id uint, sku, name string, stocks ...model.Stock) model.Product {
	return model.Product{
		ID:     id,
		SKU:    sku,
		Name:   name,
		Price:  decimal.NewFromInt(10),
		Stocks: stocks,
	}
}

func stock(warehouse string, qty int) model.Stock {
	return model.Stock{Warehouse: warehouse, Qty: qty}
}

func profile(suffix, warehouses, blocked string) *model.CustomerProfile {
	return &model.CustomerProfile{
		CountrySuffix:          suffix,
		AllowedWarehouses:      warehouses,
		BlockedProductKeywords: blocked,
	}
}

func incoming(id, productID uint, day string, qty int) model.IncomingStock {
	t, _ := time.Parse("2006-01-02", day)
	return model.IncomingStock{ID: id, ProductID: productID, Qty: qty, ArrivalDate: datatypes.Date(t)}
}

func skus(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.SKU)
	}
	return out
}

// ── Aggregator ───────────────────────────────────────────────────────────────

func TestTotalQuantity_SumsAllWarehouses(t *testing.T) {
	p := product(1, "A", "Widget", stock("North", 3), stock("South", 4))
	assert.Equal(t, 7, TotalQuantity(p))
}

func TestTotalQuantity_NoRowsIsZero(t *testing.T) {
	assert.Equal(t, 0, TotalQuantity(product(1, "A", "Widget")))
}

func TestTotalQuantity_NegativeRowsClampToZero(t *testing.T) {
	p := product(1, "A", "Widget", stock("North", -5), stock("South", 2))
	assert.Equal(t, 2, TotalQuantity(p))
}

func TestVisibleQuantity_UnrestrictedEqualsTotal(t *testing.T) {
	p := product(1, "A", "Widget", stock("North", 3), stock("South", 4))

	cases := map[string]*model.CustomerProfile{
		"guest": nil,
		"ALL":   profile("", "ALL", ""),
		"empty": profile("", "", ""),
		"blank": profile("", "   ", ""),
	}
	for name, prof := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, TotalQuantity(p), VisibleQuantity(p, prof))
		})
	}
}

func TestVisibleQuantity_RestrictedSumsAllowedOnly(t *testing.T) {
	p := product(1, "A", "Widget", stock("North", 3), stock("South", 4), stock("East", 5))

	assert.Equal(t, 8, VisibleQuantity(p, profile("", " North , East", "")))
	assert.Equal(t, 0, VisibleQuantity(p, profile("", "West", "")))
}

func TestVisibleQuantity_WarehouseMatchIsExact(t *testing.T) {
	p := product(1, "A", "Widget", stock("North", 3), stock("NorthWest", 4))
	assert.Equal(t, 3, VisibleQuantity(p, profile("", "North", "")))
}

func TestVisibleQuantity_RestrictedNeverExceedsTotal(t *testing.T) {
	products := []model.Product{
		product(1, "A", "a", stock("North", 3), stock("South", 4)),
		product(2, "B", "b", stock("North", 9)),
		product(3, "C", "c"),
	}
	prof := profile("", "North", "")

	for _, p := range products {
		visible := VisibleQuantity(p, prof)
		assert.LessOrEqual(t, visible, TotalQuantity(p))
	}
	// equality only where every unit sits in an allowed warehouse
	assert.NotEqual(t, TotalQuantity(products[0]), VisibleQuantity(products[0], prof))
	assert.Equal(t, TotalQuantity(products[1]), VisibleQuantity(products[1], prof))
}

// ── Visibility filter ────────────────────────────────────────────────────────

func TestFilter_GuestSeesEverything(t *testing.T) {
	all := []model.Product{product(1, "A-TW", "x"), product(2, "B-JP", "y")}
	assert.Equal(t, all, Filter(all, nil))
}

func TestFilter_RegionSuffixCaseInsensitive(t *testing.T) {
	all := []model.Product{
		product(1, "ABC-TW", "Relay"),
		product(2, "ABC-JP", "Relay"),
		product(3, "xyz-tw", "Switch"),
	}
	got := Filter(all, profile("TW", "ALL", ""))
	assert.Equal(t, []string{"ABC-TW", "xyz-tw"}, skus(got))
}

func TestFilter_EmptySuffixKeepsAll(t *testing.T) {
	all := []model.Product{product(1, "ABC-TW", "Relay"), product(2, "ABC-JP", "Relay")}
	assert.Len(t, Filter(all, profile("  ", "ALL", "")), 2)
}

func TestFilter_BlockedKeywords(t *testing.T) {
	all := []model.Product{
		product(1, "A", "Copper Cable"),
		product(2, "B", "Steel Bolt"),
		product(3, "C", "Fiber CABLE"),
		product(4, "D", "Relay"),
	}
	got := Filter(all, profile("", "ALL", "cable, ,bolt"))
	assert.Equal(t, []string{"D"}, skus(got))
}

func TestFilter_KeywordOrderDoesNotMatter(t *testing.T) {
	all := []model.Product{
		product(1, "A-TW", "Copper Cable"),
		product(2, "B-TW", "Steel Bolt"),
		product(3, "C-TW", "Relay"),
		product(4, "D-JP", "Relay"),
	}
	first := Filter(all, profile("tw", "ALL", "cable,bolt"))
	second := Filter(all, profile("tw", "ALL", "bolt,cable"))
	assert.Equal(t, skus(first), skus(second))
	assert.Equal(t, []string{"C-TW"}, skus(first))
}

func TestFilter_PreservesOrder(t *testing.T) {
	all := []model.Product{product(3, "C", "c"), product(1, "A", "a"), product(2, "B", "b")}
	assert.Equal(t, []string{"C", "A", "B"}, skus(Filter(all, profile("", "ALL", ""))))
}

// ── Categorizer ──────────────────────────────────────────────────────────────

func TestCategorize_RestrictedWarehouseGoesOutOfStock(t *testing.T) {
	p := product(1, "ABC-TW", "Relay", stock("WarehouseA", 5))
	prof := profile("TW", "WarehouseB", "")

	view := Categorize([]model.Product{p}, prof, nil)

	assert.Equal(t, 5, TotalQuantity(p))
	assert.Empty(t, view.InStock)
	require.Len(t, view.OutOfStock, 1)
	assert.Equal(t, "ABC-TW", view.OutOfStock[0].Product.SKU)
	assert.Nil(t, view.OutOfStock[0].NextArrival)
	assert.Zero(t, view.OutOfStock[0].IncomingQty)
	assert.False(t, view.ShowLoginPrompt)
}

func TestCategorize_EveryProductInExactlyOneBucket(t *testing.T) {
	all := []model.Product{
		product(1, "A", "a", stock("North", 3)),
		product(2, "B", "b", stock("South", 4)),
		product(3, "C", "c"),
		product(4, "D", "d", stock("North", 0), stock("South", 1)),
	}
	prof := profile("", "North", "")

	view := Categorize(all, prof, nil)

	seen := map[uint]int{}
	for _, e := range view.InStock {
		seen[e.Product.ID]++
		assert.Positive(t, e.VisibleQty)
	}
	for _, e := range view.OutOfStock {
		seen[e.Product.ID]++
		assert.LessOrEqual(t, VisibleQuantity(e.Product, prof), 0)
	}
	assert.Len(t, seen, len(Filter(all, prof)))
	for id, n := range seen {
		assert.Equal(t, 1, n, "product %d", id)
	}
	require.Len(t, view.InStock, 1)
	assert.Equal(t, uint(1), view.InStock[0].Product.ID)
	assert.Equal(t, 3, view.InStock[0].VisibleQty)
}

func TestCategorize_AttachesEarliestArrival(t *testing.T) {
	p := product(7, "A", "a")
	records := []model.IncomingStock{
		incoming(10, 7, "2026-12-01", 40),
		incoming(11, 7, "2026-11-15", 25),
		incoming(12, 8, "2026-10-01", 99),
	}

	view := Categorize([]model.Product{p}, nil, EarliestArrivals(records))

	require.Len(t, view.OutOfStock, 1)
	entry := view.OutOfStock[0]
	require.NotNil(t, entry.NextArrival)
	assert.Equal(t, "2026-11-15", entry.NextArrival.Format("2006-01-02"))
	assert.Equal(t, 25, entry.IncomingQty)
}

func TestEarliestArrivals_TieKeepsLowestID(t *testing.T) {
	records := []model.IncomingStock{
		incoming(5, 1, "2026-11-15", 10),
		incoming(3, 1, "2026-11-15", 20),
		incoming(4, 1, "2026-11-20", 30),
	}
	got := EarliestArrivals(records)
	assert.Equal(t, uint(3), got[1].ID)
}

func TestCategorize_GuestGetsFirstFiveUnfiltered(t *testing.T) {
	var all []model.Product
	for i := uint(1); i <= 7; i++ {
		all = append(all, product(i, "SKU", "name", stock("North", 1)))
	}

	view := Categorize(all, nil, nil)

	assert.True(t, view.ShowLoginPrompt)
	require.Len(t, view.Recommended, GuestRecommendationCount)
	assert.Equal(t, uint(1), view.Recommended[0].ID)
	assert.Equal(t, uint(5), view.Recommended[4].ID)
	assert.Len(t, view.InStock, 7)
}

func TestCategorize_GuestWithSmallCatalog(t *testing.T) {
	all := []model.Product{product(1, "A", "a"), product(2, "B", "b")}
	view := Categorize(all, nil, nil)
	assert.Len(t, view.Recommended, 2)
}

func TestCategorize_RecommendationsAreNotRefiltered(t *testing.T) {
	blockedPick := product(9, "Z-JP", "Copper Cable")
	prof := profile("TW", "ALL", "cable")
	prof.RecommendedProducts = []model.Product{blockedPick}

	view := Categorize([]model.Product{product(1, "A-TW", "Relay", stock("x", 1)), blockedPick}, prof, nil)

	require.Len(t, view.Recommended, 1)
	assert.Equal(t, uint(9), view.Recommended[0].ID)
	assert.Equal(t, []string{"A-TW"}, skusIn(view))
}

func TestCategorize_EmptyCatalog(t *testing.T) {
	view := Categorize(nil, profile("", "ALL", ""), nil)
	assert.NotNil(t, view.Recommended)
	assert.NotNil(t, view.InStock)
	assert.NotNil(t, view.OutOfStock)
	assert.Empty(t, view.InStock)
}

func TestCategorize_DoesNotMutateInput(t *testing.T) {
	all := []model.Product{product(1, "A", "a", stock("North", 2))}
	before := all[0]
	_ = Categorize(all, profile("", "South", ""), nil)
	assert.Equal(t, before, all[0])
}

func skusIn(v View) []string {
	var out []string
	for _, e := range v.InStock {
		out = append(out, e.Product.SKU)
	}
	for _, e := range v.OutOfStock {
		out = append(out, e.Product.SKU)
	}
	return out
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,, b ,"))
	assert.Empty(t, SplitList(""))
}
