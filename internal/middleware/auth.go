package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/pkg/utils"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey   = "userId"
	UsernameKey = "username"
	RoleKey     = "role"
)

// TokenVerifier checks an access token and returns its identity.
type TokenVerifier interface {
	Verify(token string) (utils.Claims, error)
}

// AuthMiddleware accepts a Bearer header or, for websocket upgrades, a ?token= query.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authorization header or token query parameter required"})
			return
		}

		claims, err := verifier.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(RoleKey, string(claims.Role))
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role differs.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != string(role) {
			c.AbortWithStatusJSON(403, gin.H{"error": "Only " + string(role) + "s can perform this action"})
			return
		}
		c.Next()
	}
}
