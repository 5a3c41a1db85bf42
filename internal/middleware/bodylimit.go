package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MaxBodySize rejects bodies larger than maxBytes. A declared Content-Length
// over the limit is refused up front with 413; chunked bodies are cut off by
// http.MaxBytesReader while the handler decodes them.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			reject(c, http.StatusRequestEntityTooLarge, "payload_too_large",
				"request body exceeds "+strconv.FormatInt(maxBytes, 10)+" bytes")
			return
		}

		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
