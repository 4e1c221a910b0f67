// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/domain/user"
	"github.com/ivan22102000/kivo-tienda/internal/interfaces/http/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService *user.Service
	config      *config.Config
	redisClient *redis.Client
}

// NewAuthHandler creates a new auth handler. redisClient may be nil; logout
// then simply cannot revoke tokens early.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *AuthHandler {
	return &AuthHandler{
		userService: user.NewService(db, cfg),
		config:      cfg,
		redisClient: redisClient,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.userService.Register(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":       response.User,
		"token":      response.Token,
		"expires_in": response.ExpiresIn,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.userService.Login(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       response.User,
		"token":      response.Token,
		"expires_in": response.ExpiresIn,
	})
}

// Me handles GET /auth/me. The password never serializes, so the user can be
// returned as-is.
func (h *AuthHandler) Me(c *gin.Context) {
	u, exists := middleware.GetUserFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	c.JSON(http.StatusOK, u)
}

// Logout handles POST /auth/logout by denylisting the token's jti for its
// remaining lifetime
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, exists := middleware.GetTokenClaimsFromContext(c)
	if exists && h.redisClient != nil && claims.ID != "" && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if ttl > 0 {
			_ = h.redisClient.Set(c.Request.Context(), middleware.DenylistKey(claims.ID), "1", ttl).Err()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
