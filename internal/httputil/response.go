// Package httputil holds the request-scoped keys and the JSON error envelope
// shared by the API handlers and the middleware in front of them.
package httputil

import "github.com/gin-gonic/gin"

// Gin context keys written by middleware.
const (
	RequestIDKey = "request_id"
	TenantIDKey  = "tenant_id"
)

// ErrorBody is the body of every non-2xx JSON response.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondError aborts the chain with an ErrorBody tagged with the request ID.
func RespondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: RequestID(c),
	})
}

// RequestID returns the server-assigned request ID, or "" outside a request.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// TenantID returns the tenant resolved by authentication, or "".
func TenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}
