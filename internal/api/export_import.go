package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/models"
)

// ExportImportHandler serves backup and restore endpoints.
type ExportImportHandler struct {
	svc ExportImportService
	log *logrus.Logger
}

// NewExportImportHandler creates an ExportImportHandler.
func NewExportImportHandler(svc ExportImportService, log *logrus.Logger) *ExportImportHandler {
	return &ExportImportHandler{svc: svc, log: log}
}

// Export handles GET /api/v1/export.
// Returns the whole family as a JSON file attachment.
func (h *ExportImportHandler) Export(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	data, err := h.svc.Export(c.Request.Context(), tenantID)
	if err != nil {
		h.log.WithError(err).Error("exporting family")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "export failed")

		return
	}

	ts := time.Now().UTC().Format("20060102T150405Z")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=kinship-export-%s.json", ts))

	h.log.WithFields(logrus.Fields{
		"action":       "export",
		"tenant_id":    tenantID,
		"person_count": data.Stats.PersonCount,
	}).Info("audit")

	c.JSON(http.StatusOK, data)
}

// Import handles POST /api/v1/import?overwrite=true&dry_run=true.
// Validation failures are reported in the result's errors with status 422.
func (h *ExportImportHandler) Import(c *gin.Context) {
	tenantID := getTenantID(c)
	if tenantID == "" {
		return
	}

	var data models.FamilyExport
	if err := c.ShouldBindJSON(&data); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	opts := models.ImportOptions{
		OverwriteExisting: c.Query("overwrite") == "true",
		DryRun:            c.Query("dry_run") == "true",
	}

	result, err := h.svc.Import(c.Request.Context(), tenantID, &data, opts)
	if err != nil {
		respondServiceError(c, h.log, err, "importing family")
		return
	}

	if len(result.Errors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}

	h.log.WithFields(logrus.Fields{
		"action":         "import",
		"tenant_id":      tenantID,
		"people_created": result.PeopleCreated,
		"people_updated": result.PeopleUpdated,
		"dry_run":        opts.DryRun,
	}).Info("audit")

	c.JSON(http.StatusOK, result)
}

// Validate handles POST /api/v1/import/validate.
// Checks the payload for consistency errors without writing anything.
func (h *ExportImportHandler) Validate(c *gin.Context) {
	if tenantID := getTenantID(c); tenantID == "" {
		return
	}

	var data models.FamilyExport
	if err := c.ShouldBindJSON(&data); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	errs := h.svc.ValidateImport(&data)
	if errs == nil {
		errs = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"errors": errs, "valid": len(errs) == 0})
}
