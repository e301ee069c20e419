package middlewares

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stopperw/modsync/internal/api"
)

// BearerAuth guards a route group with a single shared server key. All
// authenticated routes compare the presented bearer token against it.
func BearerAuth(masterKey string) gin.HandlerFunc {
	if masterKey == "" {
		slog.Warn("auth disabled: empty master key")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			slog.Debug("malformed authorization header", "ip", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, &api.Error{
				Code:    api.CodeUnauthorized,
				Message: "authorization header format must be Bearer {token}",
			})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		if subtle.ConstantTimeCompare([]byte(token), []byte(masterKey)) != 1 {
			slog.Debug("invalid api key", "ip", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, &api.Error{
				Code:    api.CodeUnauthorized,
				Message: "invalid api key",
			})
			return
		}

		c.Next()
	}
}
