package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"b2bportal/internal/config"
	"b2bportal/internal/dto"
	"b2bportal/internal/model"
	"b2bportal/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost is lowered by tests.
var bcryptCost = 12

// Token types carried in the "typ" claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AccountResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// UpsertStaff creates a staff account with its profile, or resets the
	// password and staff flag of an existing one.
	UpsertStaff(ctx context.Context, req dto.RegisterRequest) (*dto.AccountResponse, error)
}

type authService struct {
	accounts repository.AccountRepository
	profiles repository.ProfileRepository
	cfg      *config.Config
}

func NewAuthService(accounts repository.AccountRepository, profiles repository.ProfileRepository, cfg *config.Config) AuthService {
	return &authService{accounts: accounts, profiles: profiles, cfg: cfg}
}

// Register creates the account and its customer profile in one transaction,
// so every account has exactly one profile from the start.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AccountResponse, error) {
	return s.create(ctx, req, false)
}

func (s *authService) create(ctx context.Context, req dto.RegisterRequest, staff bool) (*dto.AccountResponse, error) {
	if _, err := s.accounts.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		IsStaff:      staff,
		Active:       true,
	}
	err = runTx(ctx, s.accounts.DB(), func(tx *gorm.DB) error {
		if err := s.accounts.Create(ctx, tx, account); err != nil {
			return err
		}
		return s.profiles.Create(ctx, tx, &model.CustomerProfile{
			AccountID:         account.ID,
			CountrySuffix:     strings.TrimSpace(req.CountrySuffix),
			AllowedWarehouses: model.AllWarehouses,
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	resp := accountResponse(account)
	return &resp, nil
}

func (s *authService) UpsertStaff(ctx context.Context, req dto.RegisterRequest) (*dto.AccountResponse, error) {
	existing, err := s.accounts.FindByUsername(ctx, req.Username)
	if err != nil {
		return s.create(ctx, req, true)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	existing.PasswordHash = string(hash)
	existing.IsStaff = true
	existing.Active = true
	if req.Phone != "" {
		existing.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Email != "" {
		existing.Email = strings.TrimSpace(req.Email)
	}
	if err := s.accounts.Update(ctx, existing); err != nil {
		return nil, err
	}
	resp := accountResponse(existing)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	account, err := s.accounts.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(account)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != TokenRefresh {
		return nil, ErrInvalidToken
	}
	// JSON numbers decode as float64
	rawID, ok := claims["account_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, ErrInvalidToken
	}

	account, err := s.accounts.FindByID(ctx, uint(rawID))
	if err != nil || !account.Active {
		return nil, ErrAccountNotFound
	}
	return s.issue(account)
}

func (s *authService) issue(account *model.Account) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(account, TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(account, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Account:      accountResponse(account),
	}, nil
}

func (s *authService) generateToken(account *model.Account, typ string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"account_id": account.ID,
		"username":   account.Username,
		"staff":      account.IsStaff,
		"typ":        typ,
		"exp":        time.Now().Add(duration).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func accountResponse(a *model.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Phone:    a.Phone,
		IsStaff:  a.IsStaff,
	}
}
