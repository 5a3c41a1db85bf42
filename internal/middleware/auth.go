package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/httputil"
	"github.com/persistorai/kinship/internal/security"
)

// authTimingFloor is the minimum latency of a rejected request, so a missing
// header, a malformed key and an unknown key all look alike to the caller.
const authTimingFloor = 50 * time.Millisecond

// TenantLookup resolves an API key to its tenant.
type TenantLookup interface {
	GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// AuthMiddleware resolves the bearer API key to a tenant and stores it under
// httputil.TenantIDKey. A nil guard disables failure tracking.
func AuthMiddleware(lookup TenantLookup, log *logrus.Logger, guard *security.BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			unauthorized(c, start, "missing or invalid authorization header")
			return
		}

		tenantID, err := lookup.GetTenantByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			log.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": httputil.RequestID(c),
				"key_prefix": keyPrefix(apiKey),
			}).Warn("auth.rejected")

			if guard != nil {
				guard.RecordFailure(apiKey)
			}

			unauthorized(c, start, "invalid api key")
			return
		}

		if guard != nil {
			guard.ResetKey(apiKey)
		}

		c.Set(httputil.TenantIDKey, tenantID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, start time.Time, message string) {
	reject(c, http.StatusUnauthorized, "unauthorized", message)

	if wait := authTimingFloor - time.Since(start); wait > 0 {
		time.Sleep(wait)
	}
}

// ExtractBearerToken returns the API key from "Authorization: Bearer <key>",
// or "" when the header is absent or uses another scheme.
func ExtractBearerToken(c *gin.Context) string {
	key, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(key)
}

// keyPrefix keeps enough of a key to correlate log lines without leaking it.
func keyPrefix(key string) string {
	if len(key) <= 4 {
		return "****"
	}

	return key[:4] + "..."
}
