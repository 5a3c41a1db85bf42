package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/persistorai/kinship/internal/models"
)

const ancestorCheckQuery = `WITH RECURSIVE up(id) AS (
		SELECT ?
		UNION
		SELECT pl.parent_id FROM parent_links pl
		JOIN up ON pl.child_id = up.id
		WHERE pl.tenant_id = ?
	)
	SELECT EXISTS (SELECT 1 FROM up WHERE id = ?)`

// AddParent appends parentID to childID's ordered parent list. The link is
// rejected with ErrCyclicAncestry when childID is already an ancestor of parentID.
func (s *Store) AddParent(ctx context.Context, tenantID, childID, parentID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var cyclic bool
		if err := tx.QueryRowContext(ctx, ancestorCheckQuery, parentID, tenantID, childID).Scan(&cyclic); err != nil {
			return fmt.Errorf("checking ancestry: %w", err)
		}

		if cyclic {
			return models.ErrCyclicAncestry
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO parent_links (tenant_id, child_id, parent_id, position)
			SELECT ?, ?, ?, COALESCE(MAX(position) + 1, 0)
			FROM parent_links WHERE tenant_id = ? AND child_id = ?`,
			tenantID, childID, parentID, tenantID, childID,
		)

		return translateLinkError(err)
	})
}

// RemoveParent deletes a parent link.
func (s *Store) RemoveParent(ctx context.Context, tenantID, childID, parentID string) error {
	return s.deleteLink(ctx,
		"DELETE FROM parent_links WHERE tenant_id = ? AND child_id = ? AND parent_id = ?",
		tenantID, childID, parentID,
	)
}

// AddPartner records a symmetric partnership between two people.
func (s *Store) AddPartner(ctx context.Context, tenantID, personID, partnerID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	a, b := partnerPair(personID, partnerID)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		return translateLinkError(insertPartner(ctx, tx, tenantID, a, b))
	})
}

// RemovePartner deletes a partnership in either direction.
func (s *Store) RemovePartner(ctx context.Context, tenantID, personID, partnerID string) error {
	a, b := partnerPair(personID, partnerID)

	return s.deleteLink(ctx,
		"DELETE FROM partner_links WHERE tenant_id = ? AND person_a = ? AND person_b = ?",
		tenantID, a, b,
	)
}

// insertPartner adds a canonical partnership with the next sequence number.
func insertPartner(ctx context.Context, q querier, tenantID, a, b string) error {
	_, err := q.ExecContext(ctx, `INSERT INTO partner_links (tenant_id, person_a, person_b, seq)
		SELECT ?, ?, ?, COALESCE(MAX(seq) + 1, 0) FROM partner_links`,
		tenantID, a, b,
	)

	return err
}

func (s *Store) deleteLink(ctx context.Context, query string, args ...any) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrLinkNotFound
	}

	return nil
}

func translateLinkError(err error) error {
	if err == nil {
		return nil
	}

	switch constraint(err) {
	case "unique":
		return models.ErrDuplicateKey
	case "foreign_key":
		return models.ErrPersonNotFound
	case "check":
		return models.ErrSelfLink
	}

	return fmt.Errorf("inserting link: %w", err)
}
