package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"clinic-practice-server/internal/access"
	"clinic-practice-server/internal/config"
	"clinic-practice-server/internal/utils"
)

const principalKey = "principal"

// Authenticate creates the bearer-token middleware. It verifies the token
// and re-resolves the subject against the identity store, so every handler
// downstream receives a Principal backed by a live lookup. An absent or
// garbled Authorization header fails before any handler logic runs.
func Authenticate(cfg *config.Config, users access.UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		principal, err := access.Authenticate(c.Request.Context(), parts[1], cfg.JWTSecret, users)
		if err != nil {
			utils.FromError(c, err)
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFromContext returns the Principal placed by Authenticate.
func PrincipalFromContext(c *gin.Context) (*access.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*access.Principal)
	return principal, ok
}
