package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/persistorai/kinship/internal/models"
)

// Export retrieves the whole family of the authenticated tenant.
func (c *Client) Export(ctx context.Context) (*models.FamilyExport, error) {
	var result models.FamilyExport
	if err := c.get(ctx, "/api/v1/export", nil, &result); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	return &result, nil
}

// Import writes an exported family. A payload that fails validation returns
// both the result, whose Errors list the problems, and an *APIError with
// status 422.
func (c *Client) Import(ctx context.Context, data *models.FamilyExport, opts models.ImportOptions) (*models.ImportResult, error) {
	params := url.Values{}
	if opts.OverwriteExisting {
		params.Set("overwrite", "true")
	}
	if opts.DryRun {
		params.Set("dry_run", "true")
	}

	path := "/api/v1/import"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var result models.ImportResult
	if err := c.post(ctx, path, data, &result); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity &&
			json.Unmarshal([]byte(apiErr.Message), &result) == nil {
			return &result, fmt.Errorf("import: %w", err)
		}
		return nil, fmt.Errorf("import: %w", err)
	}

	return &result, nil
}

// ValidateImport checks an export payload without writing it.
func (c *Client) ValidateImport(ctx context.Context, data *models.FamilyExport) ([]string, error) {
	var result struct {
		Errors []string `json:"errors"`
		Valid  bool     `json:"valid"`
	}

	if err := c.post(ctx, "/api/v1/import/validate", data, &result); err != nil {
		return nil, fmt.Errorf("validate import: %w", err)
	}

	return result.Errors, nil
}
