package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatsHandler serves the family statistics endpoint.
type StatsHandler struct {
	svc StatsService
	log *logrus.Logger
}

// NewStatsHandler creates a StatsHandler with the given dependencies.
func NewStatsHandler(svc StatsService, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, log: log}
}

// GetStats handles GET /api/v1/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	stats, err := h.svc.FamilyStats(c.Request.Context(), tenantID)
	if err != nil {
		respondServiceError(c, h.log, err, "computing family stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
