// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/domain/user"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/auth"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DenylistKey is the Redis key holding a revoked token id
func DenylistKey(jti string) string {
	return "auth:denylist:" + jti
}

// AuthMiddleware authenticates a bearer token and resolves it to a user.
// Authentication always runs before any authorization or handler logic; a
// missing or unresolvable token aborts the request with 401. redisClient may
// be nil, in which case the logout denylist is not consulted.
func AuthMiddleware(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Tokens revoked by logout stay denied until they expire
		if redisClient != nil && claims.ID != "" {
			if n, err := redisClient.Exists(c.Request.Context(), DenylistKey(claims.ID)).Result(); err == nil && n > 0 {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Token has been revoked",
				})
				c.Abort()
				return
			}
		}

		// The token must still resolve to an existing user
		var u user.User
		if err := db.First(&u, claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not found",
			})
			c.Abort()
			return
		}

		c.Set("user", &u)
		c.Set("user_id", u.ID)
		c.Set("is_admin", u.IsAdmin)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// AdminMiddleware ensures the authenticated user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("is_admin")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !isAdmin.(bool) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserFromContext extracts the authenticated user from gin context
func GetUserFromContext(c *gin.Context) (*user.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	u, ok := value.(*user.User)
	return u, ok
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// IsAdminFromContext checks if user is admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	isAdmin, exists := c.Get("is_admin")
	if !exists {
		return false
	}
	return isAdmin.(bool)
}

// GetTokenClaimsFromContext extracts the validated token claims
func GetTokenClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get("token_claims")
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}
