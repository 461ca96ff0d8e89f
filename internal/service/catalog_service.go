package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"b2bportal/internal/catalog"
	"b2bportal/internal/dto"
	"b2bportal/internal/model"
	"b2bportal/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	catalogGuestKey   = "catalog:guest"
	catalogAccountKey = "catalog:account:%d"
)

// CatalogService renders the per-viewer catalog.
type CatalogService interface {
	// View returns the catalog for accountID, or the guest view when nil.
	View(ctx context.Context, accountID *uint) (*dto.CatalogResponse, error)
	// Invalidate drops the cached view of one account.
	Invalidate(ctx context.Context, accountID uint)
}

type catalogService struct {
	products repository.ProductRepository
	profiles repository.ProfileRepository
	rdb      redis.Cmdable // nil disables caching
	ttl      time.Duration
}

func NewCatalogService(products repository.ProductRepository, profiles repository.ProfileRepository, rdb redis.Cmdable, ttl time.Duration) CatalogService {
	return &catalogService{products: products, profiles: profiles, rdb: rdb, ttl: ttl}
}

func cacheKey(accountID *uint) string {
	if accountID == nil {
		return catalogGuestKey
	}
	return fmt.Sprintf(catalogAccountKey, *accountID)
}

func (s *catalogService) View(ctx context.Context, accountID *uint) (*dto.CatalogResponse, error) {
	key := cacheKey(accountID)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	var (
		products []model.Product
		incoming []model.IncomingStock
		profile  *model.CustomerProfile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.ListWithStocks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		incoming, err = s.products.EarliestIncoming(gctx)
		return err
	})
	if accountID != nil {
		g.Go(func() error {
			p, err := s.profiles.FindByAccountID(gctx, *accountID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			if err != nil {
				return err
			}
			profile = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := catalog.Categorize(products, profile, catalog.EarliestArrivals(incoming))
	resp := catalogResponse(view)

	s.toCache(ctx, key, resp)
	return resp, nil
}

func (s *catalogService) Invalidate(ctx context.Context, accountID uint) {
	if s.rdb == nil {
		return
	}
	key := cacheKey(&accountID)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog: cache invalidation failed")
	}
}

func (s *catalogService) fromCache(ctx context.Context, key string) *dto.CatalogResponse {
	if s.rdb == nil || s.ttl <= 0 {
		return nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("catalog: cache read failed")
		}
		return nil
	}
	var resp dto.CatalogResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *catalogService) toCache(ctx context.Context, key string, resp *dto.CatalogResponse) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("catalog: cache write failed")
	}
}

func catalogResponse(v catalog.View) *dto.CatalogResponse {
	resp := &dto.CatalogResponse{
		Recommended:     productResponses(v.Recommended),
		InStock:         make([]dto.InStockItem, 0, len(v.InStock)),
		OutOfStock:      make([]dto.OutOfStockItem, 0, len(v.OutOfStock)),
		ShowLoginPrompt: v.ShowLoginPrompt,
	}
	for _, e := range v.InStock {
		resp.InStock = append(resp.InStock, dto.InStockItem{
			ProductResponse: productResponse(e.Product),
			VisibleQty:      e.VisibleQty,
		})
	}
	for _, e := range v.OutOfStock {
		arrival := dto.ArrivalUnknown
		if e.NextArrival != nil {
			arrival = e.NextArrival.Format("2006-01-02")
		}
		resp.OutOfStock = append(resp.OutOfStock, dto.OutOfStockItem{
			ProductResponse: productResponse(e.Product),
			NextArrival:     arrival,
			IncomingQty:     e.IncomingQty,
		})
	}
	return resp
}
