package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit bounds inbound request bodies. Webhook payloads and admin
// requests are small; anything near the cap is hostile or misrouted.
// Declared lengths are rejected up front, streamed bodies are capped
// with a MaxBytesReader so chunked uploads cannot sidestep the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "REQUEST_TOO_LARGE",
					"message": "Request body exceeds maximum allowed size",
				},
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
