package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/kinship/internal/security"
)

// BruteForceMiddleware turns away locked-out API keys before they reach the
// tenant lookup, telling the caller when to retry.
func BruteForceMiddleware(guard *security.BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := ExtractBearerToken(c); key != "" {
			if wait := guard.LockedFor(key); wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				reject(c, http.StatusTooManyRequests, "locked_out", "too many failed authentication attempts")

				return
			}
		}

		c.Next()
	}
}
