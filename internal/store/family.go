package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/kinship/internal/models"
)

// FamilyStore loads and replaces whole families.
type FamilyStore struct {
	Base
}

// NewFamilyStore creates a new FamilyStore.
func NewFamilyStore(base Base) *FamilyStore {
	return &FamilyStore{Base: base}
}

// LoadFamily returns every person of the tenant with ordered parents and
// partners, sorted by id.
func (s *FamilyStore) LoadFamily(ctx context.Context, tenantID string) ([]models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading family: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only transaction.

	rows, err := tx.Query(ctx, "SELECT "+personColumns+
		" FROM people WHERE tenant_id = current_setting('app.tenant_id')::uuid ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying family: %w", err)
	}

	people, err := collectPeople(rows)
	rows.Close()

	if err != nil {
		return nil, err
	}

	if err := attachLinks(ctx, tx, people, nil); err != nil {
		return nil, err
	}

	return people, nil
}

// cycleQuery returns one person who is their own ancestor, if any.
const cycleQuery = `WITH RECURSIVE walk(start_id, id) AS (
		SELECT child_id, parent_id FROM parent_links
		WHERE tenant_id = current_setting('app.tenant_id')::uuid
		UNION
		SELECT w.start_id, pl.parent_id FROM walk w
		JOIN parent_links pl ON pl.child_id = w.id
		WHERE pl.tenant_id = current_setting('app.tenant_id')::uuid
	)
	SELECT start_id FROM walk WHERE start_id = id LIMIT 1`

// ImportFamily writes people and their links in a single transaction. Existing
// people are skipped unless overwrite is set, in which case their fields are
// updated and their links replaced. Any constraint failure or resulting parent
// cycle rolls the whole import back.
func (s *FamilyStore) ImportFamily(
	ctx context.Context,
	tenantID string,
	people []models.Person,
	overwrite bool,
) (*models.ImportResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("importing family: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", tenantID); err != nil {
		return nil, fmt.Errorf("locking family: %w", err)
	}

	result := &models.ImportResult{}
	written := make([]models.Person, 0, len(people))

	for i := range people {
		action, err := upsertPerson(ctx, tx, tenantID, &people[i], overwrite)
		if err != nil {
			return nil, err
		}

		switch action {
		case "created":
			result.PeopleCreated++
			written = append(written, people[i])
		case "updated":
			result.PeopleUpdated++
			written = append(written, people[i])
		default:
			result.PeopleSkipped++
		}
	}

	for i := range written {
		if err := clearLinks(ctx, tx, tenantID, written[i].ID); err != nil {
			return nil, err
		}
	}

	for i := range written {
		parents, partners, err := insertLinks(ctx, tx, tenantID, &written[i])
		if err != nil {
			return nil, err
		}

		result.ParentLinksCreated += parents
		result.PartnerLinksCreated += partners
	}

	var cyclic string

	err = tx.QueryRow(ctx, cycleQuery).Scan(&cyclic)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %q is their own ancestor", models.ErrCyclicAncestry, cyclic)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("checking for cycles: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}

	s.notify("family.imported", tenantID, "")

	return result, nil
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// upsertPerson returns "created", "updated" or "skipped".
func upsertPerson(ctx context.Context, tx pgx.Tx, tenantID string, p *models.Person, overwrite bool) (string, error) {
	args := []any{p.ID, tenantID, p.Name, p.Gender, nullable(p.BirthDate), timeOrNil(p.CreatedAt), timeOrNil(p.UpdatedAt)}

	if !overwrite {
		tag, err := tx.Exec(ctx, `INSERT INTO people (id, tenant_id, name, gender, birth_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), COALESCE($7, now()))
			ON CONFLICT (tenant_id, id) DO NOTHING`, args...)
		if err != nil {
			return "", fmt.Errorf("inserting person %q: %w", p.ID, err)
		}

		if tag.RowsAffected() == 0 {
			return "skipped", nil
		}

		return "created", nil
	}

	var wasInserted bool

	err := tx.QueryRow(ctx, `INSERT INTO people (id, tenant_id, name, gender, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), COALESCE($7, now()))
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			name       = EXCLUDED.name,
			gender     = EXCLUDED.gender,
			birth_date = EXCLUDED.birth_date,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS was_inserted`, args...).Scan(&wasInserted)
	if err != nil {
		return "", fmt.Errorf("upserting person %q: %w", p.ID, err)
	}

	if wasInserted {
		return "created", nil
	}

	return "updated", nil
}

// clearLinks drops a person's parent links and partnerships.
func clearLinks(ctx context.Context, tx pgx.Tx, tenantID, id string) error {
	if _, err := tx.Exec(ctx, "DELETE FROM parent_links WHERE tenant_id = $1 AND child_id = $2", tenantID, id); err != nil {
		return fmt.Errorf("clearing parents of %q: %w", id, err)
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM partner_links WHERE tenant_id = $1 AND (person_a = $2 OR person_b = $2)", tenantID, id,
	); err != nil {
		return fmt.Errorf("clearing partners of %q: %w", id, err)
	}

	return nil
}

// insertLinks writes p's ordered parent links and its partnerships.
func insertLinks(ctx context.Context, tx pgx.Tx, tenantID string, p *models.Person) (parents, partners int, err error) {
	for pos, parentID := range p.Parents {
		tag, err := tx.Exec(ctx, `INSERT INTO parent_links (tenant_id, child_id, parent_id, position)
			VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`, tenantID, p.ID, parentID, pos)
		if err != nil {
			return 0, 0, importLinkError(p.ID, parentID, err)
		}

		parents += int(tag.RowsAffected())
	}

	for _, partnerID := range p.Partners {
		a, b := partnerPair(p.ID, partnerID)

		tag, err := tx.Exec(ctx, `INSERT INTO partner_links (tenant_id, person_a, person_b)
			VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`, tenantID, a, b)
		if err != nil {
			return 0, 0, importLinkError(p.ID, partnerID, err)
		}

		partners += int(tag.RowsAffected())
	}

	return parents, partners, nil
}

func importLinkError(from, to string, err error) error {
	switch pgCode(err) {
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %q links to unknown person %q", models.ErrInvalidImport, from, to)
	case pgCheckViolation:
		return fmt.Errorf("%w: %q is linked to itself", models.ErrInvalidImport, from)
	}

	return fmt.Errorf("linking %q to %q: %w", from, to, err)
}
