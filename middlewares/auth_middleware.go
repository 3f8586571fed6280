package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/satouyama/pesto-sub001/utils"
)

// Keys under which the authenticated identity is stored on the gin context.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// bearerToken reads "Authorization: Bearer <jwt>", falling back to ?token= for websocket clients.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

func authenticate(c *gin.Context) (*utils.CustomClaims, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, errors.New("Authorization header missing")
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, errors.New("Invalid user ID in token")
	}
	return claims, nil
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth sets the identity when a valid token is sent and lets guests through otherwise.
// A token that is present but invalid is still rejected.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) == "" && c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		claims, err := authenticate(c)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
