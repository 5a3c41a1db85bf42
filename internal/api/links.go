package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/models"
)

// LinkHandler serves parent and partner link endpoints.
type LinkHandler struct {
	svc LinkService
	log *logrus.Logger
}

// NewLinkHandler creates a LinkHandler.
func NewLinkHandler(svc LinkService, log *logrus.Logger) *LinkHandler {
	return &LinkHandler{svc: svc, log: log}
}

// AddParent handles POST /api/v1/people/:id/parents.
func (h *LinkHandler) AddParent(c *gin.Context) {
	childID := c.Param("id")
	if err := validatePathID(childID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	var req models.ParentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	person, err := h.svc.AddParent(c.Request.Context(), tenantID, childID, req.ParentID)
	if err != nil {
		respondServiceError(c, h.log, err, "adding parent")
		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "link.parent_add", "tenant_id": tenantID,
		"child_id": childID, "parent_id": req.ParentID,
	}).Info("audit")

	c.JSON(http.StatusCreated, person)
}

// RemoveParent handles DELETE /api/v1/people/:id/parents/:parent.
func (h *LinkHandler) RemoveParent(c *gin.Context) {
	childID, parentID, ok := pathPair(c, "id", "parent")
	if !ok {
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	person, err := h.svc.RemoveParent(c.Request.Context(), tenantID, childID, parentID)
	if err != nil {
		respondServiceError(c, h.log, err, "removing parent")
		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "link.parent_remove", "tenant_id": tenantID,
		"child_id": childID, "parent_id": parentID,
	}).Info("audit")

	c.JSON(http.StatusOK, person)
}

// AddPartner handles POST /api/v1/people/:id/partners.
func (h *LinkHandler) AddPartner(c *gin.Context) {
	personID := c.Param("id")
	if err := validatePathID(personID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	var req models.PartnerLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	person, err := h.svc.AddPartner(c.Request.Context(), tenantID, personID, req.PartnerID)
	if err != nil {
		respondServiceError(c, h.log, err, "adding partner")
		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "link.partner_add", "tenant_id": tenantID,
		"person_id": personID, "partner_id": req.PartnerID,
	}).Info("audit")

	c.JSON(http.StatusCreated, person)
}

// RemovePartner handles DELETE /api/v1/people/:id/partners/:partner.
func (h *LinkHandler) RemovePartner(c *gin.Context) {
	personID, partnerID, ok := pathPair(c, "id", "partner")
	if !ok {
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	person, err := h.svc.RemovePartner(c.Request.Context(), tenantID, personID, partnerID)
	if err != nil {
		respondServiceError(c, h.log, err, "removing partner")
		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "link.partner_remove", "tenant_id": tenantID,
		"person_id": personID, "partner_id": partnerID,
	}).Info("audit")

	c.JSON(http.StatusOK, person)
}
