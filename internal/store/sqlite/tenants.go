package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/persistorai/kinship/internal/models"
	"github.com/persistorai/kinship/internal/security"
)

// GetTenantByAPIKey looks up a tenant ID by API key hash.
func (s *Store) GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var tenantID string

	err := s.db.QueryRowContext(ctx, "SELECT id FROM tenants WHERE api_key_hash = ?", security.HashAPIKey(apiKey)).Scan(&tenantID)
	if err != nil {
		return "", fmt.Errorf("looking up tenant by API key: %w", err)
	}

	return tenantID, nil
}

// CreateTenant creates a tenant and returns its id and a freshly generated API key.
func (s *Store) CreateTenant(ctx context.Context, name string) (id, apiKey string, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	apiKey, err = security.NewAPIKey()
	if err != nil {
		return "", "", err
	}

	id = uuid.NewString()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO tenants (id, name, api_key_hash, created_at) VALUES (?, ?, ?, ?)",
		id, name, security.HashAPIKey(apiKey), time.Now().UTC(),
	)
	if err != nil {
		return "", "", fmt.Errorf("creating tenant: %w", err)
	}

	return id, apiKey, nil
}

// ListTenants returns every tenant, oldest first.
func (s *Store) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, api_key_hash, created_at FROM tenants ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer rows.Close()

	var tenants []models.Tenant

	for rows.Next() {
		var t models.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.APIKeyHash, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}

// RestoreTenant writes t with its id and key hash unchanged, replacing the
// name and hash of an existing tenant with the same id.
func (s *Store) RestoreTenant(ctx context.Context, t models.Tenant) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, api_key_hash, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, api_key_hash = excluded.api_key_hash`,
		t.ID, t.Name, t.APIKeyHash, created.UTC(),
	)
	if err != nil {
		return fmt.Errorf("restoring tenant %s: %w", t.ID, err)
	}

	return nil
}
