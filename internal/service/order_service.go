package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"b2bportal/internal/dto"
	"b2bportal/internal/model"
	"b2bportal/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Notifier hands completed orders to the notification queue. Failures are
// logged by the caller and never undo the order.
type Notifier interface {
	NotifyStaff(ctx context.Context, orderID uint, customerName, contactInfo string) error
	SendEmail(ctx context.Context, subject, body, from string, to []string, orderID uint) error
}

// OrderConfig carries the checkout settings taken from config.Config.
type OrderConfig struct {
	// Strict makes an unknown product id fail the preview instead of being
	// skipped.
	Strict     bool
	MailFrom   string
	StaffEmail string
}

type OrderService interface {
	// Preview prices a selection of qty_<id> fields without storing anything.
	Preview(ctx context.Context, fields map[string][]string) (*dto.PreviewResponse, error)
	// Confirm persists an order from final_qty_<id> fields and queues the
	// staff notifications.
	Confirm(ctx context.Context, accountID *uint, contact dto.ContactForm, fields map[string][]string) (*dto.ConfirmResponse, error)
	NewOrderCount(ctx context.Context) (int64, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Get(ctx context.Context, id uint) (*dto.OrderResponse, error)
	MarkDone(ctx context.Context, id uint) (*dto.OrderResponse, error)
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	notifier Notifier
	cfg      OrderConfig
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, notifier Notifier, cfg OrderConfig) OrderService {
	return &orderService{orders: orders, products: products, notifier: notifier, cfg: cfg}
}

// selection is a product id with its requested quantity.
type selection struct {
	productID uint
	qty       int
}

// fieldProductID extracts the id after the last underscore of a field name.
func fieldProductID(key string) (uint, error) {
	idx := strings.LastIndex(key, "_")
	id, err := strconv.ParseUint(key[idx+1:], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("field %q: %w", key, ErrInvalidQuantity)
	}
	return uint(id), nil
}

// collect reads every field with the given prefix. Lenient mode skips
// unparsable entries; otherwise the first one aborts with ErrInvalidQuantity.
// Non-positive quantities are always skipped. Repeated ids are summed.
func collect(fields map[string][]string, prefix string, lenient bool) ([]selection, error) {
	totals := make(map[uint]int)
	for key, values := range fields {
		if !strings.HasPrefix(key, prefix) || len(values) == 0 {
			continue
		}
		id, err := fieldProductID(key)
		if err != nil {
			if lenient {
				continue
			}
			return nil, err
		}
		qty, err := strconv.Atoi(strings.TrimSpace(values[0]))
		if err != nil {
			if lenient {
				continue
			}
			return nil, fmt.Errorf("field %q: %w", key, ErrInvalidQuantity)
		}
		if qty <= 0 {
			continue
		}
		totals[id] += qty
	}

	out := make([]selection, 0, len(totals))
	for id, qty := range totals {
		out = append(out, selection{productID: id, qty: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out, nil
}

func (s *orderService) loadProducts(ctx context.Context, sel []selection) (map[uint]model.Product, error) {
	ids := make([]uint, 0, len(sel))
	for _, item := range sel {
		ids = append(ids, item.productID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// ── Preview ──────────────────────────────────────────────────────────────────

func (s *orderService) Preview(ctx context.Context, fields map[string][]string) (*dto.PreviewResponse, error) {
	sel, _ := collect(fields, dto.QtyFieldPrefix, true)
	if len(sel) == 0 {
		return nil, ErrNothingSelected
	}

	byID, err := s.loadProducts(ctx, sel)
	if err != nil {
		return nil, err
	}

	resp := &dto.PreviewResponse{Items: make([]dto.PreviewItem, 0, len(sel)), TotalPrice: decimal.Zero}
	for _, item := range sel {
		p, ok := byID[item.productID]
		if !ok {
			if s.cfg.Strict {
				return nil, fmt.Errorf("product %d: %w", item.productID, ErrProductNotFound)
			}
			log.Debug().Uint("product_id", item.productID).Msg("checkout preview: unknown product skipped")
			continue
		}
		subtotal := p.Price.Mul(decimal.NewFromInt(int64(item.qty)))
		resp.Items = append(resp.Items, dto.PreviewItem{
			Product:  productResponse(p),
			Qty:      item.qty,
			Subtotal: subtotal,
			Field:    fmt.Sprintf("%s%d", dto.FinalQtyFieldPrefix, p.ID),
		})
		resp.TotalPrice = resp.TotalPrice.Add(subtotal)
	}

	if len(resp.Items) == 0 {
		return nil, ErrNothingSelected
	}
	return resp, nil
}

// ── Confirm ──────────────────────────────────────────────────────────────────

func (s *orderService) Confirm(ctx context.Context, accountID *uint, contact dto.ContactForm, fields map[string][]string) (*dto.ConfirmResponse, error) {
	sel, err := collect(fields, dto.FinalQtyFieldPrefix, false)
	if err != nil {
		return nil, err
	}

	byID, err := s.loadProducts(ctx, sel)
	if err != nil {
		return nil, err
	}

	order := model.Order{
		AccountID:  accountID,
		GuestName:  contact.Name,
		GuestPhone: contact.Phone,
		GuestEmail: contact.Email,
		Status:     model.OrderStatusNew,
		Items:      make([]model.OrderItem, 0, len(sel)),
	}
	for _, item := range sel {
		if _, ok := byID[item.productID]; !ok {
			return nil, fmt.Errorf("product %d: %w", item.productID, ErrProductNotFound)
		}
		order.Items = append(order.Items, model.OrderItem{ProductID: item.productID, Quantity: item.qty})
	}

	if err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		return s.orders.Create(ctx, tx, &order)
	}); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.notify(ctx, &order, byID)

	return &dto.ConfirmResponse{
		OrderID:   order.ID,
		Status:    order.Status,
		ItemCount: len(order.Items),
	}, nil
}

// notify runs after commit. Nothing here may fail the request.
func (s *orderService) notify(ctx context.Context, order *model.Order, byID map[uint]model.Product) {
	if s.notifier == nil {
		return
	}

	contact := order.GuestPhone
	if order.GuestEmail != "" {
		contact += " / " + order.GuestEmail
	}
	if err := s.notifier.NotifyStaff(ctx, order.ID, order.GuestName, contact); err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("order: staff notification failed")
	}

	if s.cfg.StaffEmail == "" {
		log.Warn().Uint("order_id", order.ID).Msg("order: STAFF_EMAIL not set, summary e-mail skipped")
		return
	}
	subject := fmt.Sprintf("New order #%d from %s", order.ID, order.GuestName)
	body := orderEmailBody(order, byID)
	if err := s.notifier.SendEmail(ctx, subject, body, s.cfg.MailFrom, []string{s.cfg.StaffEmail}, order.ID); err != nil {
		log.Error().Err(err).Uint("order_id", order.ID).Msg("order: summary e-mail failed")
	}
}

func orderEmailBody(order *model.Order, byID map[uint]model.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer: %s\n", order.GuestName)
	fmt.Fprintf(&b, "Phone: %s\n", order.GuestPhone)
	fmt.Fprintf(&b, "Email: %s\n\n", order.GuestEmail)
	if len(order.Items) == 0 {
		b.WriteString("No items.\n")
		return b.String()
	}
	b.WriteString("Items:\n")
	for _, item := range order.Items {
		p := byID[item.ProductID]
		fmt.Fprintf(&b, "- %s  %s  x %d\n", p.SKU, p.Name, item.Quantity)
	}
	return b.String()
}

// ── Staff operations ─────────────────────────────────────────────────────────

func (s *orderService) NewOrderCount(ctx context.Context) (int64, error) {
	return s.orders.CountByStatus(ctx, model.OrderStatusNew)
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, orderResponse(&orders[i]))
	}
	return &dto.OrderListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *orderService) Get(ctx context.Context, id uint) (*dto.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	resp := orderResponse(o)
	return &resp, nil
}

// MarkDone moves an order from New to Done. The transition is one way.
func (s *orderService) MarkDone(ctx context.Context, id uint) (*dto.OrderResponse, error) {
	changed, err := s.orders.UpdateStatus(ctx, id, model.OrderStatusNew, model.OrderStatusDone)
	if err != nil {
		return nil, err
	}
	if !changed {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrOrderNotNew
	}
	return s.Get(ctx, id)
}

func orderResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:         o.ID,
		AccountID:  o.AccountID,
		GuestName:  o.GuestName,
		GuestPhone: o.GuestPhone,
		GuestEmail: o.GuestEmail,
		Status:     o.Status,
		Items:      make([]dto.OrderItemResponse, 0, len(o.Items)),
		Total:      decimal.Zero,
		CreatedAt:  o.CreatedAt.Format(time.RFC3339),
	}
	for _, item := range o.Items {
		line := dto.OrderItemResponse{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice(),
		}
		if item.Product != nil {
			line.SKU = item.Product.SKU
			line.Name = item.Product.Name
			line.UnitPrice = item.Product.Price
		}
		resp.Items = append(resp.Items, line)
		resp.Total = resp.Total.Add(line.TotalPrice)
	}
	return resp
}
