package middleware

import (
	"net/http"
	"strings"

	"foodsync/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth verifies the bearer token, rejects revoked tokens and attaches the
// caller to the request context.
func Auth(tokens *auth.TokenManager, denylist auth.Denylist, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid authorization format, use 'Bearer <token>'"})
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error("token denylist lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "authentication unavailable"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "token revoked"})
			return
		}

		log.Debug("authenticated",
			zap.Int64("userID", claims.UserID),
			zap.String("role", claims.Role),
		)

		auth.SetCurrent(c, claims)
		c.Next()
	}
}
