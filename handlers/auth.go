package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/gpay-transactions/config"
	"github.com/yourusername/gpay-transactions/middleware"
	"github.com/yourusername/gpay-transactions/store"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = time.Hour

type AuthHandler struct {
	apps store.AppStore
	cfg  *config.Config
}

func NewAuthHandler(apps store.AppStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		apps: apps,
		cfg:  cfg,
	}
}

// TokenRequest is the client-credentials body
type TokenRequest struct {
	AppID     string `json:"app_id" binding:"required"`
	AppSecret string `json:"app_secret" binding:"required"`
}

// IssueToken exchanges app credentials for an access token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.apps.LoadApp(c.Request.Context(), req.AppID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid app credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load app"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(app.SecretHash), []byte(req.AppSecret)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid app credentials"})
		return
	}

	if !app.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "App is inactive"})
		return
	}

	accessToken, err := middleware.GenerateToken(app.ID, app.ScopeList(), h.cfg.JWTSecret, tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(tokenTTL.Seconds()),
	})
}
