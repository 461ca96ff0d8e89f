package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"b2bportal/internal/dto"
	"b2bportal/internal/infra"
	"b2bportal/internal/model"
	"b2bportal/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	bcryptCost = 4
}

// ── Product repository stub ───────────────────────────────────────────────────

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubProductRepo struct {
	mu       sync.Mutex
	products []model.Product
	incoming []model.IncomingStock
	listErr  error
	lists    int
}

func (r *stubProductRepo) ListWithStocks(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	r.lists++
	r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]model.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Product, error) {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Product
	for _, p := range r.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) EarliestIncoming(_ context.Context) ([]model.IncomingStock, error) {
	return r.incoming, nil
}

func (r *stubProductRepo) byID(id uint) *model.Product {
	for i := range r.products {
		if r.products[i].ID == id {
			p := r.products[i]
			return &p
		}
	}
	return nil
}

// ── Account repository stub ───────────────────────────────────────────────────

var _ repository.AccountRepository = (*stubAccountRepo)(nil)

type stubAccountRepo struct {
	accounts map[string]*model.Account
	nextID   uint
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*model.Account)}
}

func (r *stubAccountRepo) DB() *gorm.DB { return nil }

func (r *stubAccountRepo) Create(_ context.Context, _ *gorm.DB, a *model.Account) error {
	if _, ok := r.accounts[a.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.nextID++
	a.ID = r.nextID
	r.accounts[a.Username] = a
	return nil
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*model.Account, error) {
	for _, a := range r.accounts {
		if a.Username == username && a.Active {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id uint) (*model.Account, error) {
	for _, a := range r.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubAccountRepo) ListStaff(_ context.Context) ([]model.Account, error) {
	var out []model.Account
	for _, a := range r.accounts {
		if a.IsStaff && a.Active {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubAccountRepo) Update(_ context.Context, a *model.Account) error {
	r.accounts[a.Username] = a
	return nil
}

// ── Profile repository stub ───────────────────────────────────────────────────

var _ repository.ProfileRepository = (*stubProfileRepo)(nil)

type stubProfileRepo struct {
	profiles map[uint]*model.CustomerProfile
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: make(map[uint]*model.CustomerProfile)}
}

func (r *stubProfileRepo) Create(_ context.Context, _ *gorm.DB, p *model.CustomerProfile) error {
	p.ID = uint(len(r.profiles) + 1)
	r.profiles[p.AccountID] = p
	return nil
}

func (r *stubProfileRepo) FindByAccountID(_ context.Context, accountID uint) (*model.CustomerProfile, error) {
	p, ok := r.profiles[accountID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProfileRepo) UpdateRules(_ context.Context, p *model.CustomerProfile) error {
	stored, ok := r.profiles[p.AccountID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.CountrySuffix = p.CountrySuffix
	stored.AllowedWarehouses = p.AllowedWarehouses
	stored.BlockedProductKeywords = p.BlockedProductKeywords
	return nil
}

func (r *stubProfileRepo) ReplaceRecommended(_ context.Context, p *model.CustomerProfile, products []model.Product) error {
	stored, ok := r.profiles[p.AccountID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.RecommendedProducts = products
	return nil
}

// ── Order repository stub ─────────────────────────────────────────────────────

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

type stubOrderRepo struct {
	orders    map[uint]*model.Order
	nextID    uint
	products  *stubProductRepo
	createErr error
}

func newStubOrderRepo(products *stubProductRepo) *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uint]*model.Order), products: products}
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

func (r *stubOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	o.ID = r.nextID
	for i := range o.Items {
		o.Items[i].ID = uint(i + 1)
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	r.orders[o.ID] = &cp
	return nil
}

// withProducts mimics Preload("Items.Product").
func (r *stubOrderRepo) withProducts(o *model.Order) model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	for i := range cp.Items {
		if r.products != nil {
			cp.Items[i].Product = r.products.byID(cp.Items[i].ProductID)
		}
	}
	return cp
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uint) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := r.withProducts(o)
	return &cp, nil
}

func (r *stubOrderRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *stubOrderRepo) sorted(status string) []model.Order {
	var out []model.Order
	for _, o := range r.orders {
		if status == "" || status == "all" || o.Status == status {
			out = append(out, r.withProducts(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	all := r.sorted(filter.Status)
	return all, int64(len(all)), nil
}

func (r *stubOrderRepo) ListWithStock(_ context.Context, status string) ([]model.Order, error) {
	return r.sorted(status), nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id uint, from, to string) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

// ── Collaborator stubs ────────────────────────────────────────────────────────

type staffCall struct {
	orderID uint
	name    string
	contact string
}

type emailCall struct {
	subject string
	body    string
	from    string
	to      []string
}

type stubNotifier struct {
	staff  []staffCall
	emails []emailCall
	err    error
}

func (n *stubNotifier) NotifyStaff(_ context.Context, orderID uint, name, contact string) error {
	n.staff = append(n.staff, staffCall{orderID: orderID, name: name, contact: contact})
	return n.err
}

func (n *stubNotifier) SendEmail(_ context.Context, subject, body, from string, to []string, _ uint) error {
	n.emails = append(n.emails, emailCall{subject: subject, body: body, from: from, to: to})
	return n.err
}

var _ CatalogService = (*stubCatalog)(nil)

type stubCatalog struct {
	invalidated []uint
}

func (c *stubCatalog) View(_ context.Context, _ *uint) (*dto.CatalogResponse, error) {
	return &dto.CatalogResponse{}, nil
}

func (c *stubCatalog) Invalidate(_ context.Context, accountID uint) {
	c.invalidated = append(c.invalidated, accountID)
}

var _ infra.SheetWriter = (*stubSheet)(nil)

type stubSheet struct {
	rng    string
	rows   [][]interface{}
	writes int
	err    error
}

func (s *stubSheet) ReplaceRows(_ context.Context, sheetRange string, rows [][]interface{}) error {
	if s.err != nil {
		return s.err
	}
	s.rng = sheetRange
	s.rows = rows
	s.writes++
	return nil
}

func (s *stubSheet) SpreadsheetID() string { return "sheet-123" }

// ── Redis cache fake ──────────────────────────────────────────────────────────

// fakeCache implements the string commands the catalog cache uses; any other
// redis.Cmdable method panics on the nil embedded interface.
type fakeCache struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	default:
		return redis.NewStatusResult("", errors.New("fakeCache: unsupported value type"))
	}
	c.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.data[k]; ok {
			delete(c.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// ── Fixtures ──────────────────────────────────────────────────────────────────

var errBoom = errors.New("boom")

func product(id uint, sku, name, price string, stocks ...model.Stock) model.Product {
	return model.Product{
		ID:     id,
		SKU:    sku,
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stocks: stocks,
	}
}

func stock(warehouse string, qty int) model.Stock {
	return model.Stock{Warehouse: warehouse, Qty: qty}
}

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }
