// Package domain defines the canonical service interfaces shared across API
// layers (REST, websocket, client). Consumers should depend on these interfaces
// rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/persistorai/kinship/internal/models"
)

// PersonService defines person CRUD operations.
type PersonService interface {
	ListPeople(ctx context.Context, tenantID string, opts models.PersonListOpts) ([]models.Person, bool, error)
	GetPerson(ctx context.Context, tenantID, personID string) (*models.Person, error)
	CreatePerson(ctx context.Context, tenantID string, req models.CreatePersonRequest) (*models.Person, error)
	UpdatePerson(ctx context.Context, tenantID, personID string, req models.UpdatePersonRequest) (*models.Person, error)
	DeletePerson(ctx context.Context, tenantID, personID string) error
}

// LinkService manages parent and partner links. Every operation returns the
// child (or the first partner) as it looks after the change.
type LinkService interface {
	AddParent(ctx context.Context, tenantID, childID, parentID string) (*models.Person, error)
	RemoveParent(ctx context.Context, tenantID, childID, parentID string) (*models.Person, error)
	AddPartner(ctx context.Context, tenantID, personID, partnerID string) (*models.Person, error)
	RemovePartner(ctx context.Context, tenantID, personID, partnerID string) (*models.Person, error)
}

// FamilyLoader loads every person of a tenant with their links.
type FamilyLoader interface {
	LoadFamily(ctx context.Context, tenantID string) ([]models.Person, error)
}

// KinshipService answers relationship queries over a tenant's family.
type KinshipService interface {
	Relationship(ctx context.Context, tenantID, fromID, toID string) (*models.RelationshipResult, error)
	Chain(ctx context.Context, tenantID, fromID, toID string) ([]models.ChainLink, error)
	Ancestors(ctx context.Context, tenantID, personID string) ([]models.AncestorEntry, error)
	BatchRelationships(ctx context.Context, tenantID string, pairs []models.PersonPair) ([]models.RelationshipResult, error)
}

// ExportImportService exports and imports whole families.
type ExportImportService interface {
	Export(ctx context.Context, tenantID string) (*models.FamilyExport, error)
	ValidateImport(data *models.FamilyExport) []string
	Import(ctx context.Context, tenantID string, data *models.FamilyExport, opts models.ImportOptions) (*models.ImportResult, error)
}

// StatsService aggregates a tenant's family graph.
type StatsService interface {
	FamilyStats(ctx context.Context, tenantID string) (*models.FamilyStats, error)
}

// AuditService reads and prunes the change history.
type AuditService interface {
	Auditor
	QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
	PurgeOldEntries(ctx context.Context, tenantID string, retentionDays int) (int, error)
}

// Auditor appends one entry to a tenant's change history.
type Auditor interface {
	RecordAudit(ctx context.Context, entry *models.AuditEntry) error
}
