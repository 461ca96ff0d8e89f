package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"b2bportal/internal/catalog"
	"b2bportal/internal/dto"
	"b2bportal/internal/model"
	"b2bportal/internal/repository"

	"gorm.io/gorm"
)

// ProfileService lets staff edit the visibility rules and curated
// recommendations of a customer. Every write drops the customer's cached
// catalog view.
type ProfileService interface {
	Get(ctx context.Context, accountID uint) (*dto.ProfileResponse, error)
	UpdateRules(ctx context.Context, accountID uint, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	SetRecommendations(ctx context.Context, accountID uint, req dto.SetRecommendationsRequest) (*dto.ProfileResponse, error)
}

type profileService struct {
	profiles repository.ProfileRepository
	products repository.ProductRepository
	catalog  CatalogService
}

func NewProfileService(profiles repository.ProfileRepository, products repository.ProductRepository, catalog CatalogService) ProfileService {
	return &profileService{profiles: profiles, products: products, catalog: catalog}
}

func (s *profileService) load(ctx context.Context, accountID uint) (*model.CustomerProfile, error) {
	p, err := s.profiles.FindByAccountID(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (s *profileService) Get(ctx context.Context, accountID uint) (*dto.ProfileResponse, error) {
	p, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := profileResponse(p)
	return &resp, nil
}

func (s *profileService) UpdateRules(ctx context.Context, accountID uint, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	p, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.CountrySuffix != nil {
		p.CountrySuffix = strings.TrimSpace(*req.CountrySuffix)
	}
	if req.AllowedWarehouses != nil {
		p.AllowedWarehouses = normalizeList(*req.AllowedWarehouses)
		if p.AllowedWarehouses == "" {
			p.AllowedWarehouses = model.AllWarehouses
		}
	}
	if req.BlockedProductKeywords != nil {
		p.BlockedProductKeywords = normalizeList(*req.BlockedProductKeywords)
	}

	if err := s.profiles.UpdateRules(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.invalidate(ctx, accountID)

	resp := profileResponse(p)
	return &resp, nil
}

func (s *profileService) SetRecommendations(ctx context.Context, accountID uint, req dto.SetRecommendationsRequest) (*dto.ProfileResponse, error) {
	p, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	products, err := s.products.FindByIDs(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[uint]bool, len(products))
	for _, prod := range products {
		found[prod.ID] = true
	}
	for _, id := range req.ProductIDs {
		if !found[id] {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
	}

	if err := s.profiles.ReplaceRecommended(ctx, p, products); err != nil {
		return nil, fmt.Errorf("replace recommendations: %w", err)
	}
	p.RecommendedProducts = products
	s.invalidate(ctx, accountID)

	resp := profileResponse(p)
	return &resp, nil
}

func (s *profileService) invalidate(ctx context.Context, accountID uint) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx, accountID)
	}
}

// normalizeList trims every entry of a comma-separated list and drops the
// empty ones.
func normalizeList(raw string) string {
	return strings.Join(catalog.SplitList(raw), ",")
}

func profileResponse(p *model.CustomerProfile) dto.ProfileResponse {
	return dto.ProfileResponse{
		AccountID:              p.AccountID,
		CountrySuffix:          p.CountrySuffix,
		AllowedWarehouses:      p.AllowedWarehouses,
		BlockedProductKeywords: p.BlockedProductKeywords,
		RecommendedProducts:    productResponses(p.RecommendedProducts),
	}
}
