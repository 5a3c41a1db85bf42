package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/kinship/internal/api"
	"github.com/persistorai/kinship/internal/models"
)

func setupExportImportRouter(svc *mockExportImportService) *gin.Engine {
	h := api.NewExportImportHandler(svc, testLogger())
	r := newTestRouter()
	r.GET("/export", h.Export)
	r.POST("/import", h.Import)
	r.POST("/import/validate", h.Validate)

	return r
}

func TestExportHandler(t *testing.T) {
	svc := &mockExportImportService{
		exportFn: func(_ context.Context, tenantID string) (*models.FamilyExport, error) {
			return &models.FamilyExport{TenantID: tenantID, People: []models.ExportPerson{{ID: "ada"}}}, nil
		},
	}

	w := doRequest(setupExportImportRouter(svc), http.MethodGet, "/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=kinship-export-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestExportHandler_Error(t *testing.T) {
	svc := &mockExportImportService{
		exportFn: func(context.Context, string) (*models.FamilyExport, error) { return nil, errors.New("db down") },
	}

	if w := doRequest(setupExportImportRouter(svc), http.MethodGet, "/export", ""); w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestImportHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		result     *models.ImportResult
		err        error
		wantStatus int
		wantOpts   models.ImportOptions
	}{
		{name: "imported", result: &models.ImportResult{PeopleCreated: 1}, wantStatus: http.StatusOK},
		{name: "dry run overwrite", query: "?dry_run=true&overwrite=true", result: &models.ImportResult{PeopleCreated: 1}, wantStatus: http.StatusOK, wantOpts: models.ImportOptions{DryRun: true, OverwriteExisting: true}},
		{name: "validation errors", result: &models.ImportResult{Errors: []string{"bad"}}, wantStatus: http.StatusUnprocessableEntity},
		{name: "cycle at write", err: models.ErrCyclicAncestry, wantStatus: http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotOpts models.ImportOptions
			svc := &mockExportImportService{
				importFn: func(_ context.Context, _ string, _ *models.FamilyExport, opts models.ImportOptions) (*models.ImportResult, error) {
					gotOpts = opts
					return tc.result, tc.err
				},
			}

			w := doRequest(setupExportImportRouter(svc), http.MethodPost, "/import"+tc.query, `{"people":[{"id":"ada","name":"Ada"}]}`)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if gotOpts != tc.wantOpts {
				t.Errorf("opts = %+v, want %+v", gotOpts, tc.wantOpts)
			}
		})
	}
}

func TestValidateHandler(t *testing.T) {
	svc := &mockExportImportService{
		validateFn: func(data *models.FamilyExport) []string {
			if len(data.People) == 0 {
				return []string{"no people"}
			}
			return nil
		},
	}
	r := setupExportImportRouter(svc)

	w := doRequest(r, http.MethodPost, "/import/validate", `{"people":[{"id":"ada","name":"Ada"}]}`)
	var body struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !body.Valid || body.Errors == nil {
		t.Errorf("body = %+v, want valid with empty errors", body)
	}

	w = doRequest(r, http.MethodPost, "/import/validate", `{"people":[]}`)
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Valid || len(body.Errors) != 1 {
		t.Errorf("body = %+v, want one error", body)
	}
}
