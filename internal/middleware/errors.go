package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/persistorai/kinship/internal/httputil"
	"github.com/persistorai/kinship/internal/metrics"
)

// reject aborts with the shared error envelope and counts the rejection.
func reject(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}
