package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/persistorai/kinship/internal/models"
)

// RecordAudit appends entry to its tenant's log.
func (s *Store) RecordAudit(ctx context.Context, entry *models.AuditEntry) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var detail sql.NullString
	if entry.Detail != nil {
		raw, err := json.Marshal(entry.Detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
		detail = sql.NullString{String: string(raw), Valid: true}
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (tenant_id, action, entity_type, entity_id, actor, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.TenantID, entry.Action, entry.EntityType, entry.EntityID, nullable(entry.Actor), detail, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return nil
}

// QueryAudit returns matching entries newest first, and whether more exist
// past the requested page.
func (s *Store) QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := "SELECT id, tenant_id, action, entity_type, entity_id, COALESCE(actor, ''), detail, created_at FROM audit_log WHERE tenant_id = ?"
	args := []any{tenantID}

	if filter, more := opts.Where(2, func(int) string { return "?" }); filter != "" {
		query += " AND " + filter
		args = append(args, more...)
	}

	limit := opts.PageSize()
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit+1, max(opts.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry

	for rows.Next() {
		var (
			e      models.AuditEntry
			detail sql.NullString
		)

		if err := rows.Scan(&e.ID, &e.TenantID, &e.Action, &e.EntityType, &e.EntityID, &e.Actor, &detail, &e.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scanning audit entry: %w", err)
		}

		if detail.Valid {
			if err := json.Unmarshal([]byte(detail.String), &e.Detail); err != nil {
				s.log.WithError(err).WithField("audit_id", e.ID).Warn("unreadable audit detail")
			}
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating audit rows: %w", err)
	}

	if len(entries) > limit {
		return entries[:limit], true, nil
	}

	return entries, false, nil
}

// PurgeOldEntries deletes audit entries older than retentionDays.
func (s *Store) PurgeOldEntries(ctx context.Context, tenantID string, retentionDays int) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	res, err := s.db.ExecContext(ctx, "DELETE FROM audit_log WHERE tenant_id = ? AND created_at < ?", tenantID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging audit entries: %w", err)
	}

	n, _ := res.RowsAffected()

	return int(n), nil
}
