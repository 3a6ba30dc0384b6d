package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// Session ids are opaque to the server but must be safe to use as store keys
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// Session resolves the cart session from X-Session-ID. A missing or malformed
// id gets a new one. The id is echoed back on every response.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionIDHeader)
		if !sessionIDPattern.MatchString(sessionID) {
			sessionID = uuid.NewString()
		}
		c.Set(logger.GinSessionIDKey, sessionID)
		c.Writer.Header().Set(SessionIDHeader, sessionID)

		ctx, _ := logger.WithSessionID(c.Request.Context(), logger.FromContext(c.Request.Context()), sessionID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetSessionID returns the session id Session resolved
func GetSessionID(c *gin.Context) string {
	return c.GetString(logger.GinSessionIDKey)
}
