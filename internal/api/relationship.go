package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/models"
)

// RelationshipHandler serves kinship queries.
type RelationshipHandler struct {
	svc      KinshipService
	log      *logrus.Logger
	maxPairs int
}

// NewRelationshipHandler creates a RelationshipHandler. maxPairs caps batch size.
func NewRelationshipHandler(svc KinshipService, log *logrus.Logger, maxPairs int) *RelationshipHandler {
	return &RelationshipHandler{svc: svc, log: log, maxPairs: maxPairs}
}

// Get handles GET /api/v1/relationship/:from/:to.
func (h *RelationshipHandler) Get(c *gin.Context) {
	fromID, toID, ok := pathPair(c, "from", "to")
	if !ok {
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	res, err := h.svc.Relationship(c.Request.Context(), tenantID, fromID, toID)
	if err != nil {
		respondServiceError(c, h.log, err, "resolving relationship")
		return
	}

	c.JSON(http.StatusOK, res)
}

// Chain handles GET /api/v1/relationship/:from/:to/chain.
func (h *RelationshipHandler) Chain(c *gin.Context) {
	fromID, toID, ok := pathPair(c, "from", "to")
	if !ok {
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	links, err := h.svc.Chain(c.Request.Context(), tenantID, fromID, toID)
	if err != nil {
		respondServiceError(c, h.log, err, "resolving relationship chain")
		return
	}

	c.JSON(http.StatusOK, gin.H{"from": fromID, "to": toID, "chain": links})
}

// Batch handles POST /api/v1/relationship/batch.
func (h *RelationshipHandler) Batch(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if err := req.Validate(h.maxPairs); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	results, err := h.svc.BatchRelationships(c.Request.Context(), tenantID, req.Pairs)
	if err != nil {
		respondServiceError(c, h.log, err, "resolving relationship batch")
		return
	}

	h.log.WithFields(logrus.Fields{"action": "relationship.batch", "tenant_id": tenantID, "pairs": len(req.Pairs)}).Debug("request handled")

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Ancestors handles GET /api/v1/people/:id/ancestors.
func (h *RelationshipHandler) Ancestors(c *gin.Context) {
	personID := c.Param("id")
	if err := validatePathID(personID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	entries, err := h.svc.Ancestors(c.Request.Context(), tenantID, personID)
	if err != nil {
		respondServiceError(c, h.log, err, "listing ancestors")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": personID, "ancestors": entries})
}
