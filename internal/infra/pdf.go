package infra

// pdf.go renders the order summary attached to the staff e-mail:
//   - portal header and order number
//   - customer contact block
//   - line table (SKU, name, quantity, line total)
//   - bold grand total
//
// The file is written to storagePath/order_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"b2bportal/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateOrderSummaryPDF writes a one-page summary of order, whose Items
// must have Product loaded for names and prices. Returns the file path.
func GenerateOrderSummaryPDF(order *model.Order, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("order_%d.pdf", order.ID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Order Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Order #%d  -  %s", order.ID, order.CreatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Customer ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 5, "Name: "+order.GuestName, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Phone: "+order.GuestPhone, "", 1, "L", false, 0, "")
	if order.GuestEmail != "" {
		pdf.CellFormat(contentW, 5, "Email: "+order.GuestEmail, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Lines ────────────────────────────────────────────────────────────────
	colSKU := contentW * 0.22
	colName := contentW * 0.46
	colQty := contentW * 0.12
	colTotal := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colSKU, 6, "SKU", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colName, 6, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 6, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colTotal, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	total := decimal.Zero
	for _, item := range order.Items {
		sku, name := "", fmt.Sprintf("product %d", item.ProductID)
		if item.Product != nil {
			sku, name = item.Product.SKU, item.Product.Name
		}
		if len(name) > 48 {
			name = name[:47] + "..."
		}
		line := item.TotalPrice()
		total = total.Add(line)

		pdf.CellFormat(colSKU, 6, sku, "", 0, "L", false, 0, "")
		pdf.CellFormat(colName, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(colTotal, 6, line.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colSKU+colName+colQty, 7, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(colTotal, 7, total.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
