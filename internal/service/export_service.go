package service

import (
	"context"
	"fmt"
	"time"

	"b2bportal/internal/catalog"
	"b2bportal/internal/dto"
	"b2bportal/internal/infra"
	"b2bportal/internal/model"
	"b2bportal/internal/repository"

	"github.com/rs/zerolog/log"
)

// PurchaseSheetRange is the tab rewritten by every export.
const PurchaseSheetRange = "Purchases!A1"

// PurchaseSheetHeader is the first row of the exported table.
var PurchaseSheetHeader = []interface{}{
	"Order", "Customer", "SKU", "Name", "Demanded", "Current stock",
	"Incoming qty", "Estimated delivery", "Next arrival qty", "Next arrival date",
}

// ExportService writes the demand of all open orders to the purchasing
// spreadsheet so procurement can plan replenishment.
type ExportService interface {
	PurchaseRows(ctx context.Context) ([]dto.PurchaseRow, error)
	ExportPurchases(ctx context.Context) (*dto.ExportResponse, error)
}

type exportService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	sheet    infra.SheetWriter // nil when the export is not configured
}

func NewExportService(orders repository.OrderRepository, products repository.ProductRepository, sheet infra.SheetWriter) ExportService {
	return &exportService{orders: orders, products: products, sheet: sheet}
}

// PurchaseRows lists one row per item of every New order, oldest order first.
func (s *exportService) PurchaseRows(ctx context.Context) ([]dto.PurchaseRow, error) {
	orders, err := s.orders.ListWithStock(ctx, model.OrderStatusNew)
	if err != nil {
		return nil, err
	}
	incoming, err := s.products.EarliestIncoming(ctx)
	if err != nil {
		return nil, err
	}
	arrivals := catalog.EarliestArrivals(incoming)

	var rows []dto.PurchaseRow
	for _, o := range orders {
		for _, item := range o.Items {
			row := dto.PurchaseRow{
				OrderID:     o.ID,
				Customer:    o.GuestName,
				DemandedQty: item.Quantity,
			}
			if item.Product != nil {
				p := *item.Product
				row.SKU = p.SKU
				row.Name = p.Name
				row.CurrentStock = catalog.TotalQuantity(p)
				row.IncomingQty = p.IncomingQty
				row.EstimatedDelivery = p.EstimatedDelivery
			}
			if row.EstimatedDelivery == "" {
				row.EstimatedDelivery = dto.ArrivalUnknown
			}
			row.NextArrivalDate = dto.ArrivalUnknown
			if next, ok := arrivals[item.ProductID]; ok {
				row.NextArrivalQty = next.Qty
				row.NextArrivalDate = time.Time(next.ArrivalDate).Format("2006-01-02")
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *exportService) ExportPurchases(ctx context.Context) (*dto.ExportResponse, error) {
	if s.sheet == nil {
		return nil, ErrExportDisabled
	}

	rows, err := s.PurchaseRows(ctx)
	if err != nil {
		return nil, err
	}

	// the sheet mirrors the open demand, so each export replaces the table
	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, PurchaseSheetHeader)
	for _, r := range rows {
		values = append(values, []interface{}{
			r.OrderID, r.Customer, r.SKU, r.Name,
			r.DemandedQty, r.CurrentStock, r.IncomingQty, r.EstimatedDelivery,
			r.NextArrivalQty, r.NextArrivalDate,
		})
	}
	if err := s.sheet.ReplaceRows(ctx, PurchaseSheetRange, values); err != nil {
		return nil, fmt.Errorf("export purchases: %w", err)
	}

	log.Info().Int("rows", len(rows)).Str("sheet", s.sheet.SpreadsheetID()).Msg("export: purchase sheet updated")
	return &dto.ExportResponse{Rows: len(rows), SheetID: s.sheet.SpreadsheetID()}, nil
}
