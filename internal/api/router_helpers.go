package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/httputil"
	"github.com/persistorai/kinship/internal/middleware"
	"github.com/persistorai/kinship/internal/models"
	"github.com/persistorai/kinship/internal/ws"
)

// Paging bounds for list endpoints.
const (
	defaultPageSize = 50
	maxPageSize     = 1000
	maxPageOffset   = 100000
)

// getTenantID returns the authenticated tenant. A missing or malformed id
// writes a 400 and returns "".
func getTenantID(c *gin.Context) string {
	tid := httputil.TenantID(c)
	if _, err := uuid.Parse(tid); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid tenant id")
		return ""
	}

	return tid
}

// page reads limit and offset query parameters, clamping both into range.
// Unparseable values fall back to the defaults.
func page(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = min(v, maxPageSize)
	}

	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = min(v, maxPageOffset)
	}

	return limit, offset
}

// validatePathID rejects empty or oversized person ids taken from the URL.
func validatePathID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("id must not be empty")
	case len(id) > models.MaxIDLength:
		return models.ErrFieldTooLong("id", models.MaxIDLength)
	}

	return nil
}

// pathPair reads and validates two id path parameters. On failure it has
// already written the error response.
func pathPair(c *gin.Context, first, second string) (a, b string, ok bool) {
	a, b = c.Param(first), c.Param(second)

	for _, id := range []string{a, b} {
		if err := validatePathID(id); err != nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return "", "", false
		}
	}

	return a, b, true
}

// ginLogger writes one structured line per request once the handler chain
// has finished.
func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		})
		if rid := httputil.RequestID(c); rid != "" {
			entry = entry.WithField(httputil.RequestIDKey, rid)
		}
		if tid := httputil.TenantID(c); tid != "" {
			entry = entry.WithField(httputil.TenantIDKey, tid)
		}

		entry.Info("request")
	}
}

// watchHandler upgrades GET /ws to a change stream for the caller's tenant.
// The connection lives until the client leaves, the request ends or appCtx
// is cancelled at shutdown.
func watchHandler(appCtx context.Context, log *logrus.Logger, hub *ws.Hub, origins []string, lookup middleware.TenantLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := getTenantID(c)
		if tenantID == "" {
			return
		}

		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       origins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			log.WithError(err).Warn("websocket accept failed")
			return
		}

		client := ws.NewClient(hub, conn, lookup, middleware.ExtractBearerToken(c))
		client.TenantID = tenantID
		hub.Register(client)

		ctx, cancel := context.WithCancel(appCtx)
		defer cancel()

		stop := context.AfterFunc(c.Request.Context(), cancel)
		defer stop()

		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}
