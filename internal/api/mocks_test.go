package api_test

import (
	"context"
	"errors"

	"github.com/persistorai/kinship/internal/models"
)

// mockPersonService implements api.PersonService for testing.
type mockPersonService struct {
	listFn   func(ctx context.Context, tenantID string, opts models.PersonListOpts) ([]models.Person, bool, error)
	getFn    func(ctx context.Context, tenantID, personID string) (*models.Person, error)
	createFn func(ctx context.Context, tenantID string, req models.CreatePersonRequest) (*models.Person, error)
	updateFn func(ctx context.Context, tenantID, personID string, req models.UpdatePersonRequest) (*models.Person, error)
	deleteFn func(ctx context.Context, tenantID, personID string) error
}

func (m *mockPersonService) ListPeople(ctx context.Context, tenantID string, opts models.PersonListOpts) ([]models.Person, bool, error) {
	return m.listFn(ctx, tenantID, opts)
}

func (m *mockPersonService) GetPerson(ctx context.Context, tenantID, personID string) (*models.Person, error) {
	return m.getFn(ctx, tenantID, personID)
}

func (m *mockPersonService) CreatePerson(ctx context.Context, tenantID string, req models.CreatePersonRequest) (*models.Person, error) {
	return m.createFn(ctx, tenantID, req)
}

func (m *mockPersonService) UpdatePerson(ctx context.Context, tenantID, personID string, req models.UpdatePersonRequest) (*models.Person, error) {
	return m.updateFn(ctx, tenantID, personID, req)
}

func (m *mockPersonService) DeletePerson(ctx context.Context, tenantID, personID string) error {
	return m.deleteFn(ctx, tenantID, personID)
}

// mockLinkService implements api.LinkService; every call goes through linkFn.
type mockLinkService struct {
	linkFn func(op, personID, otherID string) (*models.Person, error)
}

func (m *mockLinkService) AddParent(_ context.Context, _, childID, parentID string) (*models.Person, error) {
	return m.linkFn("AddParent", childID, parentID)
}

func (m *mockLinkService) RemoveParent(_ context.Context, _, childID, parentID string) (*models.Person, error) {
	return m.linkFn("RemoveParent", childID, parentID)
}

func (m *mockLinkService) AddPartner(_ context.Context, _, personID, partnerID string) (*models.Person, error) {
	return m.linkFn("AddPartner", personID, partnerID)
}

func (m *mockLinkService) RemovePartner(_ context.Context, _, personID, partnerID string) (*models.Person, error) {
	return m.linkFn("RemovePartner", personID, partnerID)
}

// mockKinshipService implements api.KinshipService for testing.
type mockKinshipService struct {
	relationshipFn func(ctx context.Context, tenantID, fromID, toID string) (*models.RelationshipResult, error)
	chainFn        func(ctx context.Context, tenantID, fromID, toID string) ([]models.ChainLink, error)
	ancestorsFn    func(ctx context.Context, tenantID, personID string) ([]models.AncestorEntry, error)
	batchFn        func(ctx context.Context, tenantID string, pairs []models.PersonPair) ([]models.RelationshipResult, error)
}

func (m *mockKinshipService) Relationship(ctx context.Context, tenantID, fromID, toID string) (*models.RelationshipResult, error) {
	return m.relationshipFn(ctx, tenantID, fromID, toID)
}

func (m *mockKinshipService) Chain(ctx context.Context, tenantID, fromID, toID string) ([]models.ChainLink, error) {
	return m.chainFn(ctx, tenantID, fromID, toID)
}

func (m *mockKinshipService) Ancestors(ctx context.Context, tenantID, personID string) ([]models.AncestorEntry, error) {
	return m.ancestorsFn(ctx, tenantID, personID)
}

func (m *mockKinshipService) BatchRelationships(ctx context.Context, tenantID string, pairs []models.PersonPair) ([]models.RelationshipResult, error) {
	return m.batchFn(ctx, tenantID, pairs)
}

// mockExportImportService implements api.ExportImportService for testing.
type mockExportImportService struct {
	exportFn   func(ctx context.Context, tenantID string) (*models.FamilyExport, error)
	validateFn func(data *models.FamilyExport) []string
	importFn   func(ctx context.Context, tenantID string, data *models.FamilyExport, opts models.ImportOptions) (*models.ImportResult, error)
}

func (m *mockExportImportService) Export(ctx context.Context, tenantID string) (*models.FamilyExport, error) {
	return m.exportFn(ctx, tenantID)
}

func (m *mockExportImportService) ValidateImport(data *models.FamilyExport) []string {
	return m.validateFn(data)
}

func (m *mockExportImportService) Import(ctx context.Context, tenantID string, data *models.FamilyExport, opts models.ImportOptions) (*models.ImportResult, error) {
	return m.importFn(ctx, tenantID, data, opts)
}

// mockStatsService implements api.StatsService for testing.
type mockStatsService struct {
	stats *models.FamilyStats
	err   error
}

func (m *mockStatsService) FamilyStats(_ context.Context, _ string) (*models.FamilyStats, error) {
	return m.stats, m.err
}

// mockHealthChecker implements api.HealthChecker.
type mockHealthChecker struct {
	healthErr error
	schemaErr error
}

func (m *mockHealthChecker) HealthCheck(context.Context) error { return m.healthErr }
func (m *mockHealthChecker) CheckSchema(context.Context) error { return m.schemaErr }

// mockTenantLookup maps one API key to testTenantID.
type mockTenantLookup struct {
	key string
}

func (m *mockTenantLookup) GetTenantByAPIKey(_ context.Context, apiKey string) (string, error) {
	if apiKey == m.key {
		return testTenantID, nil
	}
	return "", errors.New("invalid api key")
}

// mockAuditRepo implements api.AuditLog for testing.
type mockAuditRepo struct {
	entries  []models.AuditEntry
	gotOpts  models.AuditQueryOpts
	purged   int
	gotDays  int
	queryErr error
}

func (m *mockAuditRepo) QueryAudit(_ context.Context, _ string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	m.gotOpts = opts
	return m.entries, false, m.queryErr
}

func (m *mockAuditRepo) PurgeOldEntries(_ context.Context, _ string, retentionDays int) (int, error) {
	m.gotDays = retentionDays
	return m.purged, nil
}
