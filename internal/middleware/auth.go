package middleware

import (
	"net/http"
	"strings"

	"b2bportal/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"

	tokenTypeAccess = "access"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	AccountID uint   `json:"account_id"`
	Username  string `json:"username"`
	Staff     bool   `json:"staff"`
	Type      string `json:"typ"`
	jwt.RegisteredClaims
}

// parseBearer returns (nil, false) when no bearer token is present and
// (nil, true) when one is present but invalid.
func parseBearer(c *gin.Context, secret string) (*JWTClaims, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	// refresh tokens are only accepted by /v1/auth/refresh
	if err != nil || !token.Valid || claims.Type != tokenTypeAccess || claims.AccountID == 0 {
		return nil, true
	}
	return claims, true
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present := parseBearer(c, secret)
		if !present {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is sent and lets guests
// through untouched. A token that is sent but invalid is still rejected.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present := parseBearer(c, secret)
		if present && claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}
		if claims != nil {
			c.Set(ClaimsKey, claims)
		}
		c.Next()
	}
}

// RequireStaff rejects authenticated requests from non-staff accounts.
// It must run after JWTAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}
		if !claims.Staff {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("staff access required"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the typed claims, or nil for guests.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}

// AccountID returns the caller's account id, or nil for guests.
func AccountID(c *gin.Context) *uint {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	id := claims.AccountID
	return &id
}
