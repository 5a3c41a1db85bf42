package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/models"
)

// PersonHandler serves person CRUD endpoints.
type PersonHandler struct {
	svc PersonService
	log *logrus.Logger
}

// NewPersonHandler creates a PersonHandler with the given service and logger.
func NewPersonHandler(svc PersonService, log *logrus.Logger) *PersonHandler {
	return &PersonHandler{svc: svc, log: log}
}

// List handles GET /api/v1/people.
func (h *PersonHandler) List(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	opts := models.PersonListOpts{Query: c.Query("q")}
	opts.Limit, opts.Offset = page(c)

	if len(opts.Query) > models.MaxNameLength {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, models.ErrFieldTooLong("q", models.MaxNameLength).Error())
		return
	}

	people, hasMore, err := h.svc.ListPeople(c.Request.Context(), tenantID, opts)
	if err != nil {
		respondServiceError(c, h.log, err, "listing people")
		return
	}

	h.log.WithFields(logrus.Fields{"action": "person.list", "tenant_id": tenantID, "count": len(people)}).Debug("request handled")

	c.JSON(http.StatusOK, gin.H{"people": people, "has_more": hasMore})
}

// Get handles GET /api/v1/people/:id.
func (h *PersonHandler) Get(c *gin.Context) {
	personID := c.Param("id")
	if err := validatePathID(personID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	person, err := h.svc.GetPerson(c.Request.Context(), tenantID, personID)
	if err != nil {
		respondServiceError(c, h.log, err, "getting person")
		return
	}

	c.JSON(http.StatusOK, person)
}

// Create handles POST /api/v1/people.
func (h *PersonHandler) Create(c *gin.Context) {
	var req models.CreatePersonRequest
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

	person, err := h.svc.CreatePerson(c.Request.Context(), tenantID, req)
	if err != nil {
		respondServiceError(c, h.log, err, "creating person")
		return
	}

	h.log.WithFields(logrus.Fields{"action": "person.create", "tenant_id": tenantID, "person_id": person.ID}).Info("audit")

	c.JSON(http.StatusCreated, person)
}

// Update handles PUT /api/v1/people/:id.
func (h *PersonHandler) Update(c *gin.Context) {
	personID := c.Param("id")
	if err := validatePathID(personID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	var req models.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	if req.Empty() {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "no fields to update")
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

	person, err := h.svc.UpdatePerson(c.Request.Context(), tenantID, personID, req)
	if err != nil {
		respondServiceError(c, h.log, err, "updating person")
		return
	}

	h.log.WithFields(logrus.Fields{"action": "person.update", "tenant_id": tenantID, "person_id": personID}).Info("audit")

	c.JSON(http.StatusOK, person)
}

// Delete handles DELETE /api/v1/people/:id.
func (h *PersonHandler) Delete(c *gin.Context) {
	personID := c.Param("id")
	if err := validatePathID(personID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	if err := h.svc.DeletePerson(c.Request.Context(), tenantID, personID); err != nil {
		respondServiceError(c, h.log, err, "deleting person")
		return
	}

	h.log.WithFields(logrus.Fields{"action": "person.delete", "tenant_id": tenantID, "person_id": personID}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
