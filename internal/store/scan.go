package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/persistorai/kinship/internal/models"
)

// personColumns lists the columns selected for person queries.
const personColumns = `id, tenant_id, name, gender, birth_date, created_at, updated_at`

// scanPerson scans a single row into a models.Person without links.
func scanPerson(scan func(dest ...any) error) (*models.Person, error) {
	var p models.Person
	var tenantID uuid.UUID
	var birthDate *string

	if err := scan(&p.ID, &tenantID, &p.Name, &p.Gender, &birthDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	p.TenantID = tenantID
	if birthDate != nil {
		p.BirthDate = *birthDate
	}

	return &p, nil
}

// collectPeople scans all rows into a person slice.
func collectPeople(rows pgx.Rows) ([]models.Person, error) {
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

// attachLinks fills Parents and Partners for the given people. ids limits the
// query to those people; nil loads links for the whole tenant.
func attachLinks(ctx context.Context, tx pgx.Tx, people []models.Person, ids []string) error {
	index := make(map[string]int, len(people))
	for i := range people {
		index[people[i].ID] = i
		people[i].Parents = []string{}
		people[i].Partners = []string{}
	}

	parentQuery := `SELECT child_id, parent_id FROM parent_links
		WHERE tenant_id = current_setting('app.tenant_id')::uuid`
	partnerQuery := `SELECT person_a, person_b FROM partner_links
		WHERE tenant_id = current_setting('app.tenant_id')::uuid`

	var args []any
	if ids != nil {
		parentQuery += ` AND child_id = ANY($1)`
		partnerQuery += ` AND (person_a = ANY($1) OR person_b = ANY($1))`
		args = append(args, ids)
	}

	parentQuery += ` ORDER BY child_id, position`
	partnerQuery += ` ORDER BY seq`

	err := eachPair(ctx, tx, parentQuery, args, func(child, parent string) {
		if i, ok := index[child]; ok {
			people[i].Parents = append(people[i].Parents, parent)
		}
	})
	if err != nil {
		return fmt.Errorf("loading parent links: %w", err)
	}

	err = eachPair(ctx, tx, partnerQuery, args, func(a, b string) {
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

func eachPair(ctx context.Context, tx pgx.Tx, query string, args []any, fn func(a, b string)) error {
	rows, err := tx.Query(ctx, query, args...)
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
