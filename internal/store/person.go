package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/kinship/internal/models"
)

// PersonStore handles person CRUD operations.
type PersonStore struct {
	Base
}

// NewPersonStore creates a new PersonStore.
func NewPersonStore(base Base) *PersonStore {
	return &PersonStore{Base: base}
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreatePerson inserts a new person and returns the created record.
func (s *PersonStore) CreatePerson(
	ctx context.Context,
	tenantID string,
	req models.CreatePersonRequest,
) (*models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("creating person: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	row := tx.QueryRow(ctx, `INSERT INTO people (id, tenant_id, name, gender, birth_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+personColumns,
		req.ID, tenantID, req.Name, req.Gender, nullable(req.BirthDate),
	)

	p, err := scanPerson(row.Scan)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("scanning created person: %w", err)
	}

	p.Parents = []string{}
	p.Partners = []string{}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create person: %w", err)
	}

	s.notify("person.created", tenantID, p.ID)

	return p, nil
}

// UpdatePerson applies the non-nil fields of req and returns the updated person.
func (s *PersonStore) UpdatePerson(
	ctx context.Context,
	tenantID, personID string,
	req models.UpdatePersonRequest,
) (*models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	setClauses := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if req.Name != nil {
		args = append(args, *req.Name)
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", len(args)))
	}

	if req.Gender != nil {
		args = append(args, *req.Gender)
		setClauses = append(setClauses, fmt.Sprintf("gender = $%d", len(args)))
	}

	if req.BirthDate != nil {
		args = append(args, nullable(*req.BirthDate))
		setClauses = append(setClauses, fmt.Sprintf("birth_date = $%d", len(args)))
	}

	if len(setClauses) == 0 {
		return s.GetPerson(ctx, tenantID, personID)
	}

	setClauses = append(setClauses, "updated_at = now()")

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("updating person: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	args = append(args, personID)
	query := fmt.Sprintf(
		"UPDATE people SET %s WHERE tenant_id = current_setting('app.tenant_id')::uuid AND id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), len(args), personColumns,
	)

	p, err := scanPerson(tx.QueryRow(ctx, query, args...).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPersonNotFound
		}

		return nil, fmt.Errorf("scanning updated person: %w", err)
	}

	people := []models.Person{*p}
	if err := attachLinks(ctx, tx, people, []string{personID}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing update person: %w", err)
	}

	s.notify("person.updated", tenantID, personID)

	return &people[0], nil
}

// DeletePerson removes a person together with their partner links and their
// own parent links. A person who is still someone's parent cannot be deleted.
func (s *PersonStore) DeletePerson(ctx context.Context, tenantID, personID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var hasChildren bool

	err = tx.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM parent_links
		WHERE tenant_id = current_setting('app.tenant_id')::uuid AND parent_id = $1
	)`, personID).Scan(&hasChildren)
	if err != nil {
		return fmt.Errorf("checking children: %w", err)
	}

	if hasChildren {
		return models.ErrHasChildren
	}

	// Link rows go with the person through ON DELETE CASCADE.
	tag, err := tx.Exec(ctx,
		"DELETE FROM people WHERE tenant_id = current_setting('app.tenant_id')::uuid AND id = $1", personID)
	if err != nil {
		return fmt.Errorf("executing person delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrPersonNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing delete person: %w", err)
	}

	s.notify("person.deleted", tenantID, personID)

	return nil
}

// GetPerson returns a single person with parents and partners.
func (s *PersonStore) GetPerson(ctx context.Context, tenantID, personID string) (*models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("getting person: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only transaction.

	row := tx.QueryRow(ctx, "SELECT "+personColumns+
		" FROM people WHERE tenant_id = current_setting('app.tenant_id')::uuid AND id = $1", personID)

	p, err := scanPerson(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPersonNotFound
		}

		return nil, fmt.Errorf("scanning person: %w", err)
	}

	people := []models.Person{*p}
	if err := attachLinks(ctx, tx, people, []string{personID}); err != nil {
		return nil, err
	}

	return &people[0], nil
}

// ListPeople returns people ordered by name with an optional case-insensitive
// name filter. The boolean reports whether more rows exist past the page.
func (s *PersonStore) ListPeople(
	ctx context.Context,
	tenantID string,
	opts models.PersonListOpts,
) ([]models.Person, bool, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	limit = min(limit, maxListLimit)
	offset := max(opts.Offset, 0)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, false, fmt.Errorf("listing people: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only transaction.

	query := "SELECT " + personColumns + " FROM people WHERE tenant_id = current_setting('app.tenant_id')::uuid"
	args := make([]any, 0, 3)

	if q := strings.TrimSpace(opts.Query); q != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(q))+"%")
		query += fmt.Sprintf(" AND lower(name) LIKE $%d", len(args))
	}

	args = append(args, limit+1, offset)
	query += fmt.Sprintf(" ORDER BY name, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying people: %w", err)
	}

	people, err := collectPeople(rows)
	rows.Close()

	if err != nil {
		return nil, false, err
	}

	hasMore := len(people) > limit
	if hasMore {
		people = people[:limit]
	}

	ids := make([]string, len(people))
	for i := range people {
		ids[i] = people[i].ID
	}

	if err := attachLinks(ctx, tx, people, ids); err != nil {
		return nil, false, err
	}

	return people, hasMore, nil
}
