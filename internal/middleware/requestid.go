package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/httputil"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxClientRequestID bounds how much of a caller's own request ID is logged.
const maxClientRequestID = 128

// RequestID tags each request with a fresh server UUID and echoes it in the
// response. A caller-supplied X-Request-ID is kept only as a log correlation
// field; it never replaces the server ID.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(httputil.RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		if theirs := c.GetHeader(RequestIDHeader); theirs != "" {
			if len(theirs) > maxClientRequestID {
				theirs = theirs[:maxClientRequestID]
			}
			c.Set("client_request_id", theirs)
			log.WithFields(logrus.Fields{"request_id": id, "client_request_id": theirs}).Debug("request.correlate")
		}

		c.Next()
	}
}
