package store

import (
	"context"
	"fmt"

	"github.com/persistorai/kinship/internal/dbpool"
)

// HealthChecker reports PostgreSQL connectivity and schema presence.
type HealthChecker struct {
	Pool *dbpool.Pool
}

// HealthCheck verifies database connectivity.
func (h HealthChecker) HealthCheck(ctx context.Context) error {
	return h.Pool.HealthCheck(ctx)
}

// CheckSchema verifies that migrations have created the core tables.
func (h HealthChecker) CheckSchema(ctx context.Context) error {
	var count int
	if err := h.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM people").Scan(&count); err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	return nil
}
