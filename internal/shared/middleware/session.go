package middleware

import (
	"github.com/gin-gonic/gin"
)

// SessionHeader carries the client-generated session identifier.
// The server treats it as an opaque ownership key, not a credential.
const SessionHeader = "X-Session-ID"

// SessionKey is the gin context key the session id is stored under.
const SessionKey = "session_id"

// Session requires the X-Session-ID header on owner-scoped endpoints and
// injects it into the gin context for handlers.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			c.JSON(401, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_SESSION",
					"message": "X-Session-ID header is required",
				},
			})
			c.Abort()
			return
		}

		c.Set(SessionKey, sessionID)
		c.Next()
	}
}
