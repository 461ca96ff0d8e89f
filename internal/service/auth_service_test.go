package service

import (
	"context"
	"testing"
	"time"

	"b2bportal/internal/config"
	"b2bportal/internal/dto"
	"b2bportal/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
}

func newAuthFixture() (AuthService, *stubAccountRepo, *stubProfileRepo) {
	accounts := newStubAccountRepo()
	profiles := newStubProfileRepo()
	return NewAuthService(accounts, profiles, newTestCfg()), accounts, profiles
}

func registerReq(username string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Username:      username,
		Password:      "s3cret-pass",
		Email:         username + "@example.com",
		Phone:         "+886911111111",
		CountrySuffix: " TW ",
	}
}

func TestRegister_CreatesAccountWithProfile(t *testing.T) {
	svc, accounts, profiles := newAuthFixture()

	resp, err := svc.Register(context.Background(), registerReq("acme"))

	require.NoError(t, err)
	assert.Equal(t, "acme", resp.Username)
	assert.False(t, resp.IsStaff)
	require.Contains(t, accounts.accounts, "acme")
	assert.NotEqual(t, "s3cret-pass", accounts.accounts["acme"].PasswordHash)

	profile, ok := profiles.profiles[resp.ID]
	require.True(t, ok, "profile must be created with the account")
	assert.Equal(t, "TW", profile.CountrySuffix)
	assert.Equal(t, model.AllWarehouses, profile.AllowedWarehouses)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), registerReq("acme"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerReq("acme"))
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), registerReq("acme"))
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "acme", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, TokenAccess, claims["typ"])
	assert.Equal(t, "acme", claims["username"])

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "acme", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_EmailIsNotALoginName(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), registerReq("acme"))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "acme@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_SharedEmailDoesNotBlockAccounts(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	first := registerReq("acme")
	first.Email = "buyer@example.com"
	_, err := svc.Register(ctx, first)
	require.NoError(t, err)

	second := registerReq("acme-north")
	second.Email = "buyer@example.com"
	_, err = svc.Register(ctx, second)
	require.NoError(t, err)

	// a username spelled like another account's e-mail is still free
	_, err = svc.Register(ctx, registerReq("buyer@example.com"))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "acme-north", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestRefresh(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), registerReq("acme"))
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "acme", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "access tokens cannot be used to refresh")

	_, err = svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh_Expired(t *testing.T) {
	svc, _, _ := newAuthFixture()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": 1, "typ": TokenRefresh,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpsertStaff(t *testing.T) {
	svc, accounts, profiles := newAuthFixture()
	ctx := context.Background()

	created, err := svc.UpsertStaff(ctx, registerReq("ops"))
	require.NoError(t, err)
	assert.True(t, created.IsStaff)
	assert.Contains(t, profiles.profiles, created.ID)

	req := registerReq("ops")
	req.Password = "another-pass"
	req.Phone = "+886922222222"
	updated, err := svc.UpsertStaff(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "+886922222222", accounts.accounts["ops"].Phone)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "ops", Password: "another-pass"})
	assert.NoError(t, err)
}
