package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/kinship/internal/dbpool"
	"github.com/persistorai/kinship/internal/models"
	"github.com/persistorai/kinship/internal/security"
)

// TenantStore handles tenant lookups (API key → tenant ID) and creation.
type TenantStore struct {
	Pool *dbpool.Pool
}

// NewTenantStore creates a new TenantStore.
func NewTenantStore(pool *dbpool.Pool) *TenantStore {
	return &TenantStore{Pool: pool}
}

// GetTenantByAPIKey looks up a tenant ID by API key hash.
func (s *TenantStore) GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var tenantID string

	err := s.Pool.QueryRow(ctx, "SELECT id FROM tenants WHERE api_key_hash = $1", security.HashAPIKey(apiKey)).Scan(&tenantID)
	if err != nil {
		return "", fmt.Errorf("looking up tenant by API key: %w", err)
	}

	return tenantID, nil
}

// CreateTenant creates a tenant and returns its id and a freshly generated API
// key. Only the key's hash is stored, so the key cannot be recovered later.
func (s *TenantStore) CreateTenant(ctx context.Context, name string) (id, apiKey string, err error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	apiKey, err = security.NewAPIKey()
	if err != nil {
		return "", "", err
	}

	err = s.Pool.QueryRow(ctx,
		"INSERT INTO tenants (name, api_key_hash) VALUES ($1, $2) RETURNING id::text",
		name, security.HashAPIKey(apiKey),
	).Scan(&id)
	if err != nil {
		return "", "", fmt.Errorf("creating tenant: %w", err)
	}

	return id, apiKey, nil
}

// ListTenants returns every tenant, oldest first.
func (s *TenantStore) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, "SELECT id::text, name, api_key_hash, created_at FROM tenants ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}

	tenants, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Tenant])
	if err != nil {
		return nil, fmt.Errorf("reading tenants: %w", err)
	}

	return tenants, nil
}

// RestoreTenant writes t with its id and key hash unchanged, replacing the
// name and hash of an existing tenant with the same id.
func (s *TenantStore) RestoreTenant(ctx context.Context, t models.Tenant) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.Pool.Exec(ctx,
		`INSERT INTO tenants (id, name, api_key_hash, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, api_key_hash = EXCLUDED.api_key_hash`,
		t.ID, t.Name, t.APIKeyHash, created,
	)
	if err != nil {
		return fmt.Errorf("restoring tenant %s: %w", t.ID, err)
	}

	return nil
}
