package middlewares

import (
	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware authenticates a websocket upgrade from ?token= (browsers cannot set
// headers on the handshake) and checks the role before the connection is upgraded.
func WebSocketAuthMiddleware(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		claims, err := authenticate(c)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}
		if len(allowed) > 0 && !allowed[claims.Role] {
			c.AbortWithStatus(403)
			return
		}

		c.Set(ContextRole, claims.Role)
		c.Set(ContextUserID, claims.UserID)

		c.Next()
	}
}
