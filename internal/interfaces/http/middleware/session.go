package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/minicrm/backend/internal/infrastructure/auth"
	"github.com/minicrm/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Session context keys
const (
	SessionClaimsKey   = "session_claims"
	SessionUsernameKey = "session_username"
	AuthHeaderKey      = "Authorization"
	BearerPrefix       = "Bearer "
)

// TokenValidator validates session tokens
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// RequireSession rejects requests without a valid bearer session token
func RequireSession(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, "Missing authorization header", nil)
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format", nil)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abortUnauthorized(c, "Missing token", nil)
			return
		}

		claims, err := validator.Validate(token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session", err)
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Set(SessionUsernameKey, claims.Subject)
		c.Next()
	}
}

// GetSessionUsername returns the username of the authenticated session
func GetSessionUsername(c *gin.Context) string {
	return c.GetString(SessionUsernameKey)
}

func abortUnauthorized(c *gin.Context, message string, err error) {
	log := logger.GetGinLogger(c)
	if err != nil {
		log.Debug("Session rejected", zap.String("reason", message), zap.Error(err))
	} else {
		log.Debug("Session rejected", zap.String("reason", message))
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": message})
}
