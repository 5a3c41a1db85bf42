package api

import (
	"context"

	"github.com/persistorai/kinship/internal/domain"
	"github.com/persistorai/kinship/internal/models"
)

// Handler dependencies reuse the canonical domain interfaces.
type (
	PersonService       = domain.PersonService
	LinkService         = domain.LinkService
	KinshipService      = domain.KinshipService
	ExportImportService = domain.ExportImportService
	StatsService        = domain.StatsService
)

// AuditLog is the read and prune side of the change history.
type AuditLog interface {
	QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
	PurgeOldEntries(ctx context.Context, tenantID string, retentionDays int) (int, error)
}

// HealthChecker reports storage connectivity and schema readiness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	CheckSchema(ctx context.Context) error
}
