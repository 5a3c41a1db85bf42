package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/persistorai/kinship/internal/models"
)

const maxListLimit = 1000

const personColumns = `id, tenant_id, name, gender, birth_date, created_at, updated_at`

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanPerson(scan func(dest ...any) error) (*models.Person, error) {
	var p models.Person
	var tenantID string
	var birthDate sql.NullString

	if err := scan(&p.ID, &tenantID, &p.Name, &p.Gender, &birthDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	p.TenantID, _ = uuid.Parse(tenantID) //nolint:errcheck // tenant ids are written as UUIDs.
	p.BirthDate = birthDate.String

	return &p, nil
}

func collectPeople(rows *sql.Rows) ([]models.Person, error) {
	defer rows.Close()

	people := make([]models.Person, 0, 16)

	for rows.Next() {
		p, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning person row: %w", err)
		}

		people = append(people, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating person rows: %w", err)
	}

	return people, nil
}

// attachLinks fills Parents and Partners. ids limits the query to those
// people; nil loads links for the whole tenant.
func attachLinks(ctx context.Context, q querier, tenantID string, people []models.Person, ids []string) error {
	index := make(map[string]int, len(people))
	for i := range people {
		index[people[i].ID] = i
		people[i].Parents = []string{}
		people[i].Partners = []string{}
	}

	if ids != nil && len(ids) == 0 {
		return nil
	}

	parentQuery := "SELECT child_id, parent_id FROM parent_links WHERE tenant_id = ?"
	partnerQuery := "SELECT person_a, person_b FROM partner_links WHERE tenant_id = ?"
	parentArgs := []any{tenantID}
	partnerArgs := []any{tenantID}

	if ids != nil {
		in := placeholders(len(ids))
		parentQuery += " AND child_id IN (" + in + ")"
		partnerQuery += " AND (person_a IN (" + in + ") OR person_b IN (" + in + "))"

		for _, id := range ids {
			parentArgs = append(parentArgs, id)
		}
		partnerArgs = append(partnerArgs, parentArgs[1:]...)
		partnerArgs = append(partnerArgs, parentArgs[1:]...)
	}

	err := eachPair(ctx, q, parentQuery+" ORDER BY child_id, position", parentArgs, func(child, parent string) {
		if i, ok := index[child]; ok {
			people[i].Parents = append(people[i].Parents, parent)
		}
	})
	if err != nil {
		return fmt.Errorf("loading parent links: %w", err)
	}

	err = eachPair(ctx, q, partnerQuery+" ORDER BY seq", partnerArgs, func(a, b string) {
		if i, ok := index[a]; ok {
			people[i].Partners = append(people[i].Partners, b)
		}
		if i, ok := index[b]; ok {
			people[i].Partners = append(people[i].Partners, a)
		}
	})
	if err != nil {
		return fmt.Errorf("loading partner links: %w", err)
	}

	return nil
}

func eachPair(ctx context.Context, q querier, query string, args []any, fn func(a, b string)) error {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return err
		}
		fn(a, b)
	}

	return rows.Err()
}

func getPerson(ctx context.Context, q querier, tenantID, personID string) (*models.Person, error) {
	row := q.QueryRowContext(ctx, "SELECT "+personColumns+" FROM people WHERE tenant_id = ? AND id = ?", tenantID, personID)

	p, err := scanPerson(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPersonNotFound
		}

		return nil, fmt.Errorf("scanning person: %w", err)
	}

	people := []models.Person{*p}
	if err := attachLinks(ctx, q, tenantID, people, []string{personID}); err != nil {
		return nil, err
	}

	return &people[0], nil
}

// CreatePerson inserts a new person and returns the created record.
func (s *Store) CreatePerson(ctx context.Context, tenantID string, req models.CreatePersonRequest) (*models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO people ("+personColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		req.ID, tenantID, req.Name, req.Gender, nullable(req.BirthDate), now, now,
	)
	if err != nil {
		switch constraint(err) {
		case "unique":
			return nil, models.ErrDuplicateKey
		case "foreign_key":
			return nil, fmt.Errorf("unknown tenant %q: %w", tenantID, err)
		}

		return nil, fmt.Errorf("inserting person: %w", err)
	}

	return getPerson(ctx, s.db, tenantID, req.ID)
}

// UpdatePerson applies the non-nil fields of req and returns the updated person.
func (s *Store) UpdatePerson(ctx context.Context, tenantID, personID string, req models.UpdatePersonRequest) (*models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	setClauses := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if req.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *req.Name)
	}

	if req.Gender != nil {
		setClauses = append(setClauses, "gender = ?")
		args = append(args, *req.Gender)
	}

	if req.BirthDate != nil {
		setClauses = append(setClauses, "birth_date = ?")
		args = append(args, nullable(*req.BirthDate))
	}

	if len(setClauses) == 0 {
		return s.GetPerson(ctx, tenantID, personID)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC(), tenantID, personID)

	var p *models.Person

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE people SET "+strings.Join(setClauses, ", ")+" WHERE tenant_id = ? AND id = ?", args...)
		if err != nil {
			return fmt.Errorf("updating person: %w", err)
		}

		if n, _ := res.RowsAffected(); n == 0 {
			return models.ErrPersonNotFound
		}

		p, err = getPerson(ctx, tx, tenantID, personID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

// DeletePerson removes a person and their links. A person who is still
// someone's parent cannot be deleted.
func (s *Store) DeletePerson(ctx context.Context, tenantID, personID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var hasChildren bool

		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM parent_links WHERE tenant_id = ? AND parent_id = ?)",
			tenantID, personID,
		).Scan(&hasChildren)
		if err != nil {
			return fmt.Errorf("checking children: %w", err)
		}

		if hasChildren {
			return models.ErrHasChildren
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM people WHERE tenant_id = ? AND id = ?", tenantID, personID)
		if err != nil {
			return fmt.Errorf("deleting person: %w", err)
		}

		if n, _ := res.RowsAffected(); n == 0 {
			return models.ErrPersonNotFound
		}

		return nil
	})
}

// GetPerson returns a single person with parents and partners.
func (s *Store) GetPerson(ctx context.Context, tenantID, personID string) (*models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return getPerson(ctx, s.db, tenantID, personID)
}

// ListPeople returns people ordered by name with an optional case-insensitive
// name filter. The boolean reports whether more rows exist past the page.
func (s *Store) ListPeople(ctx context.Context, tenantID string, opts models.PersonListOpts) ([]models.Person, bool, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	limit = min(limit, maxListLimit)
	offset := max(opts.Offset, 0)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := "SELECT " + personColumns + " FROM people WHERE tenant_id = ?"
	args := []any{tenantID}

	if q := strings.TrimSpace(opts.Query); q != "" {
		query += " AND instr(lower(name), ?) > 0"
		args = append(args, strings.ToLower(q))
	}

	query += " ORDER BY name, id LIMIT ? OFFSET ?"
	args = append(args, limit+1, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying people: %w", err)
	}

	people, err := collectPeople(rows)
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

	if err := attachLinks(ctx, s.db, tenantID, people, ids); err != nil {
		return nil, false, err
	}

	return people, hasMore, nil
}
