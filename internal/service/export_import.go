package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/db"
	"github.com/persistorai/kinship/internal/domain"
	"github.com/persistorai/kinship/internal/kinship"
	"github.com/persistorai/kinship/internal/models"
)

// exportImportStore is the minimal store interface consumed by ExportImportService.
// Defined at the consumer (per project convention) so the store package depends
// on no service types.
type exportImportStore interface {
	LoadFamily(ctx context.Context, tenantID string) ([]models.Person, error)
	ImportFamily(ctx context.Context, tenantID string, people []models.Person, overwrite bool) (*models.ImportResult, error)
}

// Compile-time check: *ExportImportService must satisfy domain.ExportImportService.
var _ domain.ExportImportService = (*ExportImportService)(nil)

// ExportImportService implements domain.ExportImportService.
type ExportImportService struct {
	store          exportImportStore
	snapshots      *SnapshotCache
	events         EventPublisher
	auditWorker    AuditEnqueuer
	kinshipVersion string
	log            *logrus.Logger
}

// NewExportImportService creates an ExportImportService. snapshots, events and
// auditWorker may be nil.
func NewExportImportService(
	store exportImportStore,
	snapshots *SnapshotCache,
	events EventPublisher,
	auditWorker AuditEnqueuer,
	kinshipVersion string,
	log *logrus.Logger,
) *ExportImportService {
	return &ExportImportService{
		store:          store,
		snapshots:      snapshots,
		events:         events,
		auditWorker:    auditWorker,
		kinshipVersion: kinshipVersion,
		log:            log,
	}
}

// Export serialises the tenant's whole family into a portable, full-fidelity format.
func (s *ExportImportService) Export(ctx context.Context, tenantID string) (*models.FamilyExport, error) {
	people, err := s.store.LoadFamily(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("exporting family: %w", err)
	}

	out := &models.FamilyExport{
		SchemaVersion:  db.SchemaVersion(),
		KinshipVersion: s.kinshipVersion,
		ExportedAt:     time.Now().UTC(),
		TenantID:       tenantID,
		People:         make([]models.ExportPerson, len(people)),
	}

	for i, p := range people {
		out.People[i] = models.ExportFromPerson(p)
		out.Stats.ParentLinkCount += len(p.Parents)
		out.Stats.PartnerLinkCount += len(p.Partners)
	}

	out.Stats.PersonCount = len(people)
	// Each partnership is listed on both sides.
	out.Stats.PartnerLinkCount /= 2

	return out, nil
}

// ValidateImport checks an export payload without touching storage. The file must
// be self-contained: every parent and partner it names must be one of its people.
// An empty slice means the payload is valid.
func (s *ExportImportService) ValidateImport(data *models.FamilyExport) []string {
	var errs []string

	if current := db.SchemaVersion(); data.SchemaVersion > current {
		errs = append(errs, fmt.Sprintf(
			"export schema version %d is newer than this instance (%d); upgrade kinship before importing",
			data.SchemaVersion, current,
		))
	}

	errs = append(errs, validatePeople(data.People)...)
	if len(errs) > 0 {
		return errs
	}

	return append(errs, validateGraph(data.People)...)
}

// Import writes a previously exported family into the tenant in one transaction.
func (s *ExportImportService) Import(
	ctx context.Context,
	tenantID string,
	data *models.FamilyExport,
	opts models.ImportOptions,
) (*models.ImportResult, error) {
	if errs := s.ValidateImport(data); len(errs) > 0 {
		return &models.ImportResult{Errors: errs}, nil
	}

	if opts.DryRun {
		return dryRunResult(data.People), nil
	}

	people := make([]models.Person, len(data.People))
	for i, e := range data.People {
		people[i] = models.PersonFromExport(e)
	}

	result, err := s.store.ImportFamily(ctx, tenantID, people, opts.OverwriteExisting)
	if err != nil {
		return nil, fmt.Errorf("importing family: %w", err)
	}

	if s.snapshots != nil {
		s.snapshots.Invalidate(tenantID)
	}

	publish(s.events, s.log, EventFamilyImported, tenantID, result)
	if s.auditWorker != nil {
		s.auditWorker.Enqueue(&models.AuditEntry{
			TenantID:   tenantID,
			Action:     models.AuditFamilyImport,
			EntityType: models.AuditEntityFamily,
			EntityID:   tenantID,
			Detail: map[string]any{
				"people_created": result.PeopleCreated,
				"people_updated": result.PeopleUpdated,
				"overwrite":      opts.OverwriteExisting,
			},
		})
	}

	s.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"created":   result.PeopleCreated,
		"updated":   result.PeopleUpdated,
		"skipped":   result.PeopleSkipped,
	}).Info("family.import")

	return result, nil
}

// validatePeople checks required fields, limits and id uniqueness.
func validatePeople(people []models.ExportPerson) []string {
	var errs []string

	seen := make(map[string]struct{}, len(people))

	for i, p := range people {
		switch {
		case p.ID == "":
			errs = append(errs, fmt.Sprintf("person[%d]: %v", i, models.ErrMissingID))
			continue
		case len(p.ID) > models.MaxIDLength:
			errs = append(errs, fmt.Sprintf("person[%d]: %v", i, models.ErrFieldTooLong("id", models.MaxIDLength)))
			continue
		}

		if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Sprintf("person %q: duplicate id", p.ID))
		}
		seen[p.ID] = struct{}{}

		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("person %q: %v", p.ID, models.ErrMissingName))
		}

		if len(p.Name) > models.MaxNameLength {
			errs = append(errs, fmt.Sprintf("person %q: %v", p.ID, models.ErrFieldTooLong("name", models.MaxNameLength)))
		}

		if len(p.BirthDate) > models.MaxBirthDateLength {
			errs = append(errs, fmt.Sprintf("person %q: %v", p.ID, models.ErrFieldTooLong("birth_date", models.MaxBirthDateLength)))
		}
	}

	return errs
}

// validateGraph reports structural defects: dangling or self links, one-sided
// partnerships and parent cycles.
func validateGraph(people []models.ExportPerson) []string {
	nodes := make([]kinship.Person, len(people))
	for i, p := range people {
		nodes[i] = kinship.Person{
			ID:       p.ID,
			Gender:   kinship.ParseGender(p.Gender),
			Parents:  p.Parents,
			Partners: p.Partners,
		}
	}

	g, err := kinship.NewGraph(nodes)
	if err != nil {
		return []string{err.Error()}
	}

	err = g.Validate()
	if err == nil {
		return nil
	}

	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return []string{err.Error()}
	}

	errs := make([]string, 0, len(joined.Unwrap()))
	for _, e := range joined.Unwrap() {
		errs = append(errs, e.Error())
	}

	return errs
}

func dryRunResult(people []models.ExportPerson) *models.ImportResult {
	result := &models.ImportResult{PeopleCreated: len(people)}

	partnerSides := 0
	for _, p := range people {
		result.ParentLinksCreated += len(p.Parents)
		partnerSides += len(p.Partners)
	}

	result.PartnerLinksCreated = partnerSides / 2

	return result
}
