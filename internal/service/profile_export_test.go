package service

import (
	"context"
	"testing"
	"time"

	"b2bportal/internal/dto"
	"b2bportal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newProfileFixture() (ProfileService, *stubProfileRepo, *stubCatalog) {
	products := &stubProductRepo{products: catalogProducts()}
	profiles := newStubProfileRepo()
	profiles.profiles[10] = &model.CustomerProfile{AccountID: 10, AllowedWarehouses: model.AllWarehouses}
	cat := &stubCatalog{}
	return NewProfileService(profiles, products, cat), profiles, cat
}

func TestProfileUpdateRules(t *testing.T) {
	svc, profiles, cat := newProfileFixture()

	resp, err := svc.UpdateRules(context.Background(), 10, dto.UpdateProfileRequest{
		CountrySuffix:          strPtr(" TW "),
		AllowedWarehouses:      strPtr(" Taipei , ,Kaohsiung "),
		BlockedProductKeywords: strPtr("sample,  demo"),
	})

	require.NoError(t, err)
	assert.Equal(t, "TW", resp.CountrySuffix)
	assert.Equal(t, "Taipei,Kaohsiung", resp.AllowedWarehouses)
	assert.Equal(t, "sample,demo", profiles.profiles[10].BlockedProductKeywords)
	assert.Equal(t, []uint{10}, cat.invalidated)
}

func TestProfileUpdateRules_PartialAndEmptyWarehouses(t *testing.T) {
	svc, profiles, _ := newProfileFixture()
	profiles.profiles[10].CountrySuffix = "JP"

	resp, err := svc.UpdateRules(context.Background(), 10, dto.UpdateProfileRequest{
		AllowedWarehouses: strPtr("  "),
	})

	require.NoError(t, err)
	assert.Equal(t, "JP", resp.CountrySuffix, "unset fields are kept")
	assert.Equal(t, model.AllWarehouses, resp.AllowedWarehouses)
}

func TestProfileUpdateRules_NotFound(t *testing.T) {
	svc, _, cat := newProfileFixture()

	_, err := svc.UpdateRules(context.Background(), 42, dto.UpdateProfileRequest{})
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.Empty(t, cat.invalidated)
}

func TestProfileSetRecommendations(t *testing.T) {
	svc, profiles, cat := newProfileFixture()

	resp, err := svc.SetRecommendations(context.Background(), 10, dto.SetRecommendationsRequest{ProductIDs: []uint{3, 1}})
	require.NoError(t, err)
	assert.Len(t, resp.RecommendedProducts, 2)
	assert.Len(t, profiles.profiles[10].RecommendedProducts, 2)
	assert.Equal(t, []uint{10}, cat.invalidated)

	_, err = svc.SetRecommendations(context.Background(), 10, dto.SetRecommendationsRequest{ProductIDs: []uint{1, 77}})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Len(t, profiles.profiles[10].RecommendedProducts, 2, "failed call leaves the list untouched")

	resp, err = svc.SetRecommendations(context.Background(), 10, dto.SetRecommendationsRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.RecommendedProducts)
}

// ── Export ───────────────────────────────────────────────────────────────────

func newExportFixture(sheet *stubSheet) (ExportService, *stubOrderRepo) {
	products := &stubProductRepo{
		products: catalogProducts(),
		incoming: []model.IncomingStock{
			{ID: 1, ProductID: 4, Qty: 50, ArrivalDate: datatypes.Date(time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC))},
		},
	}
	orders := newStubOrderRepo(products)
	orders.orders[1] = &model.Order{ID: 1, GuestName: "Acme", Status: model.OrderStatusNew, Items: []model.OrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 4, Quantity: 8},
	}}
	orders.orders[2] = &model.Order{ID: 2, GuestName: "Done Co", Status: model.OrderStatusDone, Items: []model.OrderItem{
		{ProductID: 3, Quantity: 1},
	}}

	if sheet == nil {
		return NewExportService(orders, products, nil), orders
	}
	return NewExportService(orders, products, sheet), orders
}

func TestPurchaseRows(t *testing.T) {
	svc, _ := newExportFixture(nil)

	rows, err := svc.PurchaseRows(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2, "only New orders are exported")
	assert.Equal(t, "ABC-TW", rows[0].SKU)
	assert.Equal(t, 7, rows[0].CurrentStock)
	assert.Equal(t, dto.ArrivalUnknown, rows[0].EstimatedDelivery)
	assert.Equal(t, dto.ArrivalUnknown, rows[0].NextArrivalDate)
	assert.Equal(t, 8, rows[1].DemandedQty)
	assert.Equal(t, 50, rows[1].NextArrivalQty)
	assert.Equal(t, "2026-11-02", rows[1].NextArrivalDate)
}

func TestPurchaseRows_KeepsProductIncomingTotals(t *testing.T) {
	svc, orders := newExportFixture(nil)
	p := orders.products.products[3]
	p.IncomingQty = 120
	p.EstimatedDelivery = "late November"
	orders.products.products[3] = p

	rows, err := svc.PurchaseRows(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 120, rows[1].IncomingQty)
	assert.Equal(t, "late November", rows[1].EstimatedDelivery)
	assert.Equal(t, 50, rows[1].NextArrivalQty, "the next shipment is reported alongside")
}

func TestExportPurchases(t *testing.T) {
	sheet := &stubSheet{}
	svc, _ := newExportFixture(sheet)

	resp, err := svc.ExportPurchases(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Rows)
	assert.Equal(t, "sheet-123", resp.SheetID)
	assert.Equal(t, PurchaseSheetRange, sheet.rng)
	require.Len(t, sheet.rows, 3)
	assert.Equal(t, PurchaseSheetHeader, sheet.rows[0])
	assert.Equal(t, "Acme", sheet.rows[1][1])
}

func TestExportPurchases_RepeatedExportDoesNotDuplicate(t *testing.T) {
	sheet := &stubSheet{}
	svc, _ := newExportFixture(sheet)
	ctx := context.Background()

	_, err := svc.ExportPurchases(ctx)
	require.NoError(t, err)
	resp, err := svc.ExportPurchases(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, sheet.writes)
	assert.Equal(t, 2, resp.Rows)
	assert.Len(t, sheet.rows, 3, "header plus one row per open demand line")
}

func TestExportPurchases_Disabled(t *testing.T) {
	svc, _ := newExportFixture(nil)

	_, err := svc.ExportPurchases(context.Background())
	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestExportPurchases_SheetError(t *testing.T) {
	svc, _ := newExportFixture(&stubSheet{err: errBoom})

	_, err := svc.ExportPurchases(context.Background())
	assert.ErrorIs(t, err, errBoom)
}
