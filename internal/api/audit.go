package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/models"
)

const defaultRetentionDays = 90

// auditFilter is the query string accepted by GET /audit.
type auditFilter struct {
	EntityType string    `form:"entity_type" binding:"omitempty,oneof=person family"`
	EntityID   string    `form:"entity_id" binding:"max=255"`
	Action     string    `form:"action" binding:"max=64"`
	Since      time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
}

// AuditHandler exposes the tenant's change history.
type AuditHandler struct {
	log *logrus.Logger
	svc AuditLog
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc AuditLog, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{log: log, svc: svc}
}

// Query handles GET /api/v1/audit.
func (h *AuditHandler) Query(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	var f auditFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid audit filter: since must be RFC3339, entity_type person or family")
		return
	}

	opts := models.AuditQueryOpts{EntityType: f.EntityType, EntityID: f.EntityID, Action: f.Action}
	if !f.Since.IsZero() {
		opts.Since = &f.Since
	}
	opts.Limit, opts.Offset = page(c)

	entries, more, err := h.svc.QueryAudit(c.Request.Context(), tenantID, opts)
	if err != nil {
		respondServiceError(c, h.log, err, "query audit log")
		return
	}

	if entries == nil {
		entries = []models.AuditEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "has_more": more})
}

// Purge handles DELETE /api/v1/audit. retention_days defaults to 90.
func (h *AuditHandler) Purge(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	days := defaultRetentionDays
	if raw, ok := c.GetQuery("retention_days"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "retention_days must be a positive integer")
			return
		}
		days = v
	}

	deleted, err := h.svc.PurgeOldEntries(c.Request.Context(), tenantID, days)
	if err != nil {
		respondServiceError(c, h.log, err, "purge audit log")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "retention_days": days})
}
