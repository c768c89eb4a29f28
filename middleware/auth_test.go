package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/yourusername/gpay-transactions/config"
)

func TestJwtAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		JWTSecret: "test-secret",
	}

	validToken, _ := GenerateToken("app_1", []string{"charges"}, cfg.JWTSecret, 1*time.Hour)
	expiredToken, _ := GenerateToken("app_1", []string{"charges"}, cfg.JWTSecret, -1*time.Hour)
	anonymousToken, _ := GenerateToken("", nil, cfg.JWTSecret, 1*time.Hour)
	foreignToken, _ := GenerateToken("app_1", nil, "other-secret", 1*time.Hour)
	hs512Token, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		AppID:            "app_1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(cfg.JWTSecret))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedApp    string
		expectedCode   string
	}{
		{
			name:           "Valid Token",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedApp:    "app_1",
		},
		{
			name:           "Lowercase Scheme",
			authHeader:     "bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectedApp:    "app_1",
		},
		{
			name:           "Missing Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Invalid " + validToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + expiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "ExpiredToken",
		},
		{
			name:           "Invalid Token",
			authHeader:     "Bearer invalid.token.string",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
		{
			name:           "Wrong Secret",
			authHeader:     "Bearer " + foreignToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
		{
			name:           "Unexpected Algorithm",
			authHeader:     "Bearer " + hs512Token,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
		{
			name:           "Missing App",
			authHeader:     "Bearer " + anonymousToken,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "InvalidToken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(JwtAuthMiddleware(cfg))
			router.GET("/test", func(c *gin.Context) {
				appID, _ := c.Get(AppIDKey)
				c.JSON(http.StatusOK, gin.H{"app_id": appID})
			})

			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Contains(t, w.Body.String(), tt.expectedCode)
			}
			if tt.expectedApp != "" {
				assert.Contains(t, w.Body.String(), tt.expectedApp)
			}
		})
	}
}

func TestRequireScope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		setupContext   func(c *gin.Context)
		requiredScopes []string
		expectedStatus int
	}{
		{
			name: "Has Required Scope",
			setupContext: func(c *gin.Context) {
				c.Set(ScopesKey, []string{"charges"})
			},
			requiredScopes: []string{"charges"},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Has One Of Required Scopes",
			setupContext: func(c *gin.Context) {
				c.Set(ScopesKey, []string{"transfers"})
			},
			requiredScopes: []string{"charges", "transfers"},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Missing Required Scope",
			setupContext: func(c *gin.Context) {
				c.Set(ScopesKey, []string{"charges"})
			},
			requiredScopes: []string{"transfers"},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "No Scopes In Context",
			setupContext: func(c *gin.Context) {
			},
			requiredScopes: []string{"charges"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Wrong Scopes Type",
			setupContext: func(c *gin.Context) {
				c.Set(ScopesKey, "charges")
			},
			requiredScopes: []string{"charges"},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				tt.setupContext(c)
				c.Next()
			})
			router.Use(RequireScope(tt.requiredScopes...))
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestHasScope(t *testing.T) {
	assert.True(t, HasScope([]string{"charges", "transfers"}, "transfers"))
	assert.True(t, HasScope([]string{"charges"}, "refunds", "charges"))
	assert.False(t, HasScope([]string{"charges"}, "transfers"))
	assert.False(t, HasScope(nil, "charges"))
	assert.False(t, HasScope([]string{"charges"}))
}
