package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yourusername/gpay-transactions/config"
)

// Context keys set by JwtAuthMiddleware.
const (
	AppIDKey  = "appID"
	ScopesKey = "scopes"
)

var (
	errMissingAuth   = errors.New("authorization header is required")
	errBadAuthScheme = errors.New("authorization header must be a bearer token")
	errNoApp         = errors.New("token carries no app id")
)

// Claims is the token payload issued to a client app.
type Claims struct {
	AppID  string   `json:"app_id"`
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 app token valid for expiry.
func GenerateToken(appID string, scopes []string, secret string, expiry time.Duration) (string, error) {
	issued := time.Now()
	claims := &Claims{
		AppID:  appID,
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   appID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuth
	}
	fields := strings.Fields(header)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", errBadAuthScheme
	}
	return fields[1], nil
}

func parseAppClaims(raw, secret string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.AppID == "" {
		return nil, errNoApp
	}
	return claims, nil
}

// JwtAuthMiddleware authenticates the calling app and stores its id and
// granted scopes under AppIDKey and ScopesKey.
func JwtAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := parseAppClaims(raw, cfg.JWTSecret)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired", "code": "ExpiredToken"})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid app token", "code": "InvalidToken"})
			return
		}

		c.Set(AppIDKey, claims.AppID)
		c.Set(ScopesKey, claims.Scopes)
		c.Next()
	}
}

// HasScope reports whether granted contains any of wanted.
func HasScope(granted []string, wanted ...string) bool {
	for _, g := range granted {
		for _, w := range wanted {
			if g == w {
				return true
			}
		}
	}
	return false
}

// RequireScope lets the request through only if the app token was granted
// one of scopes.
func RequireScope(scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(ScopesKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "request is not authenticated"})
			return
		}
		granted, ok := value.([]string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "malformed scopes in request context"})
			return
		}
		if !HasScope(granted, scopes...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "app lacks scope", "required": scopes})
			return
		}
		c.Next()
	}
}
