package store

import (
	"context"
	"fmt"

	"github.com/persistorai/kinship/internal/models"
)

// LinkStore manages parent and partner links.
type LinkStore struct {
	Base
}

// NewLinkStore creates a new LinkStore.
func NewLinkStore(base Base) *LinkStore {
	return &LinkStore{Base: base}
}

// ancestorCheckQuery reports whether $2 is an ancestor of $1 (or $1 itself).
const ancestorCheckQuery = `WITH RECURSIVE up(id) AS (
		SELECT $1::text
		UNION
		SELECT pl.parent_id FROM parent_links pl
		JOIN up ON pl.child_id = up.id
		WHERE pl.tenant_id = current_setting('app.tenant_id')::uuid
	)
	SELECT EXISTS (SELECT 1 FROM up WHERE id = $2)`

// AddParent appends parentID to childID's ordered parent list. The link is
// rejected with ErrCyclicAncestry when childID is already an ancestor of parentID.
func (s *LinkStore) AddParent(ctx context.Context, tenantID, childID, parentID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("adding parent: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	// Serialise link writes per tenant so two concurrent inserts cannot close a cycle.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", tenantID); err != nil {
		return fmt.Errorf("locking family: %w", err)
	}

	var cyclic bool
	if err := tx.QueryRow(ctx, ancestorCheckQuery, parentID, childID).Scan(&cyclic); err != nil {
		return fmt.Errorf("checking ancestry: %w", err)
	}

	if cyclic {
		return models.ErrCyclicAncestry
	}

	_, err = tx.Exec(ctx, `INSERT INTO parent_links (tenant_id, child_id, parent_id, position)
		SELECT $1::uuid, $2::text, $3::text, COALESCE(MAX(position) + 1, 0)
		FROM parent_links WHERE tenant_id = $1::uuid AND child_id = $2::text`,
		tenantID, childID, parentID,
	)
	if err != nil {
		return translateLinkError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing add parent: %w", err)
	}

	s.notify("link.added", tenantID, childID)

	return nil
}

// RemoveParent deletes a parent link.
func (s *LinkStore) RemoveParent(ctx context.Context, tenantID, childID, parentID string) error {
	return s.deleteLink(ctx, tenantID, childID,
		`DELETE FROM parent_links
		WHERE tenant_id = current_setting('app.tenant_id')::uuid AND child_id = $1 AND parent_id = $2`,
		childID, parentID,
	)
}

// AddPartner records a symmetric partnership between two people.
func (s *LinkStore) AddPartner(ctx context.Context, tenantID, personID, partnerID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	a, b := partnerPair(personID, partnerID)

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("adding partner: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if _, err := tx.Exec(ctx,
		"INSERT INTO partner_links (tenant_id, person_a, person_b) VALUES ($1, $2, $3)",
		tenantID, a, b,
	); err != nil {
		return translateLinkError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing add partner: %w", err)
	}

	s.notify("link.added", tenantID, personID)

	return nil
}

// RemovePartner deletes a partnership in either direction.
func (s *LinkStore) RemovePartner(ctx context.Context, tenantID, personID, partnerID string) error {
	a, b := partnerPair(personID, partnerID)

	return s.deleteLink(ctx, tenantID, personID,
		`DELETE FROM partner_links
		WHERE tenant_id = current_setting('app.tenant_id')::uuid AND person_a = $1 AND person_b = $2`,
		a, b,
	)
}

func (s *LinkStore) deleteLink(ctx context.Context, tenantID, entityID, query string, args ...any) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("removing link: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("executing link delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return models.ErrLinkNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing link delete: %w", err)
	}

	s.notify("link.removed", tenantID, entityID)

	return nil
}

// translateLinkError maps constraint violations to model errors.
func translateLinkError(err error) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return models.ErrDuplicateKey
	case pgForeignKeyViolation:
		return models.ErrPersonNotFound
	case pgCheckViolation:
		return models.ErrSelfLink
	}

	return fmt.Errorf("inserting link: %w", err)
}

