package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/persistorai/kinship/internal/models"
)

// LoadFamily returns every person of the tenant with ordered parents and
// partners, sorted by id.
func (s *Store) LoadFamily(ctx context.Context, tenantID string) ([]models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT "+personColumns+" FROM people WHERE tenant_id = ? ORDER BY id", tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying family: %w", err)
	}

	people, err := collectPeople(rows)
	if err != nil {
		return nil, err
	}

	if err := attachLinks(ctx, s.db, tenantID, people, nil); err != nil {
		return nil, err
	}

	return people, nil
}

const cycleQuery = `WITH RECURSIVE walk(start_id, id) AS (
		SELECT child_id, parent_id FROM parent_links WHERE tenant_id = ?
		UNION
		SELECT w.start_id, pl.parent_id FROM walk w
		JOIN parent_links pl ON pl.child_id = w.id
		WHERE pl.tenant_id = ?
	)
	SELECT start_id FROM walk WHERE start_id = id LIMIT 1`

// ImportFamily writes people and their links in a single transaction. Existing
// people are skipped unless overwrite is set, in which case their fields are
// updated and their links replaced.
func (s *Store) ImportFamily(ctx context.Context, tenantID string, people []models.Person, overwrite bool) (*models.ImportResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result := &models.ImportResult{}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		written := make([]models.Person, 0, len(people))

		for i := range people {
			action, err := upsertPerson(ctx, tx, tenantID, &people[i], overwrite)
			if err != nil {
				return err
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

		for _, p := range written {
			if _, err := tx.ExecContext(ctx, "DELETE FROM parent_links WHERE tenant_id = ? AND child_id = ?", tenantID, p.ID); err != nil {
				return fmt.Errorf("clearing parents of %q: %w", p.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM partner_links WHERE tenant_id = ? AND (person_a = ? OR person_b = ?)", tenantID, p.ID, p.ID,
			); err != nil {
				return fmt.Errorf("clearing partners of %q: %w", p.ID, err)
			}
		}

		for i := range written {
			parents, partners, err := insertLinks(ctx, tx, tenantID, &written[i])
			if err != nil {
				return err
			}

			result.ParentLinksCreated += parents
			result.PartnerLinksCreated += partners
		}

		var cyclic string

		err := tx.QueryRowContext(ctx, cycleQuery, tenantID, tenantID).Scan(&cyclic)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %q is their own ancestor", models.ErrCyclicAncestry, cyclic)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("checking for cycles: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func orNow(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t.UTC()
}

// upsertPerson returns "created", "updated" or "skipped".
func upsertPerson(ctx context.Context, tx *sql.Tx, tenantID string, p *models.Person, overwrite bool) (string, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM people WHERE tenant_id = ? AND id = ?)", tenantID, p.ID,
	).Scan(&exists); err != nil {
		return "", fmt.Errorf("looking up person %q: %w", p.ID, err)
	}

	now := time.Now().UTC()

	switch {
	case exists && !overwrite:
		return "skipped", nil
	case exists:
		_, err := tx.ExecContext(ctx,
			"UPDATE people SET name = ?, gender = ?, birth_date = ?, updated_at = ? WHERE tenant_id = ? AND id = ?",
			p.Name, p.Gender, nullable(p.BirthDate), orNow(p.UpdatedAt, now), tenantID, p.ID,
		)
		if err != nil {
			return "", fmt.Errorf("updating person %q: %w", p.ID, err)
		}

		return "updated", nil
	default:
		_, err := tx.ExecContext(ctx,
			"INSERT INTO people ("+personColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			p.ID, tenantID, p.Name, p.Gender, nullable(p.BirthDate), orNow(p.CreatedAt, now), orNow(p.UpdatedAt, now),
		)
		if err != nil {
			return "", fmt.Errorf("inserting person %q: %w", p.ID, err)
		}

		return "created", nil
	}
}

func insertLinks(ctx context.Context, tx *sql.Tx, tenantID string, p *models.Person) (parents, partners int, err error) {
	for pos, parentID := range p.Parents {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO parent_links (tenant_id, child_id, parent_id, position)
			VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`,
			tenantID, p.ID, parentID, pos,
		)
		if err != nil {
			return 0, 0, importLinkError(p.ID, parentID, err)
		}

		n, _ := res.RowsAffected()
		parents += int(n)
	}

	for _, partnerID := range p.Partners {
		a, b := partnerPair(p.ID, partnerID)

		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM partner_links WHERE tenant_id = ? AND person_a = ? AND person_b = ?)",
			tenantID, a, b,
		).Scan(&exists); err != nil {
			return 0, 0, fmt.Errorf("looking up partnership: %w", err)
		}

		if exists {
			continue
		}

		if err := insertPartner(ctx, tx, tenantID, a, b); err != nil {
			return 0, 0, importLinkError(p.ID, partnerID, err)
		}

		partners++
	}

	return parents, partners, nil
}

func importLinkError(from, to string, err error) error {
	switch constraint(err) {
	case "foreign_key":
		return fmt.Errorf("%w: %q links to unknown person %q", models.ErrInvalidImport, from, to)
	case "check":
		return fmt.Errorf("%w: %q is linked to itself", models.ErrInvalidImport, from)
	}

	return fmt.Errorf("linking %q to %q: %w", from, to, err)
}
