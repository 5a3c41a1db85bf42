package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/kinship/internal/models"
)

// auditPurgeBatch bounds the rows one purge transaction deletes so a large
// backlog never holds long locks on audit_log.
const auditPurgeBatch = 5000

const auditColumns = "id, tenant_id, action, entity_type, entity_id, COALESCE(actor, ''), detail, created_at"

// AuditStore reads and writes the audit_log table.
type AuditStore struct {
	Base
}

// NewAuditStore creates an AuditStore.
func NewAuditStore(base Base) *AuditStore {
	return &AuditStore{Base: base}
}

// RecordAudit appends entry to its tenant's log.
func (s *AuditStore) RecordAudit(ctx context.Context, entry *models.AuditEntry) error {
	var detail []byte
	if entry.Detail != nil {
		raw, err := json.Marshal(entry.Detail)
		if err != nil {
			return fmt.Errorf("marshaling audit detail: %w", err)
		}
		detail = raw
	}

	return s.inTx(ctx, entry.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO audit_log (tenant_id, action, entity_type, entity_id, actor, detail)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			entry.TenantID, entry.Action, entry.EntityType, entry.EntityID, nullable(entry.Actor), detail,
		)
		if err != nil {
			return fmt.Errorf("inserting audit entry: %w", err)
		}

		return nil
	})
}

// QueryAudit returns matching entries newest first, and whether more exist
// past the requested page.
func (s *AuditStore) QueryAudit(ctx context.Context, tenantID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx, tenantID)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only.

	filter, args := opts.Where(1, func(n int) string { return "$" + strconv.Itoa(n) })

	query := "SELECT " + auditColumns + " FROM audit_log WHERE tenant_id = current_setting('app.tenant_id')::uuid"
	if filter != "" {
		query += " AND " + filter
	}

	limit := opts.PageSize()
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit+1, max(opts.Offset, 0))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying audit log: %w", err)
	}

	entries, err := pgx.CollectRows(rows, s.scanAuditEntry)
	if err != nil {
		return nil, false, fmt.Errorf("reading audit log: %w", err)
	}

	if len(entries) > limit {
		return entries[:limit], true, nil
	}

	return entries, false, nil
}

func (s *AuditStore) scanAuditEntry(row pgx.CollectableRow) (models.AuditEntry, error) {
	var (
		e      models.AuditEntry
		detail []byte
	)

	if err := row.Scan(&e.ID, &e.TenantID, &e.Action, &e.EntityType, &e.EntityID, &e.Actor, &detail, &e.CreatedAt); err != nil {
		return e, err
	}

	if detail != nil {
		if err := json.Unmarshal(detail, &e.Detail); err != nil {
			s.Log.WithError(err).WithField("audit_id", e.ID).Warn("unreadable audit detail")
		}
	}

	return e, nil
}

// PurgeOldEntries deletes entries older than retentionDays, one bounded batch
// per transaction, and returns how many were removed.
func (s *AuditStore) PurgeOldEntries(ctx context.Context, tenantID string, retentionDays int) (int, error) {
	total := 0

	for {
		var n int64

		err := s.inTx(ctx, tenantID, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx,
				`DELETE FROM audit_log WHERE id IN (
					SELECT id FROM audit_log
					WHERE tenant_id = current_setting('app.tenant_id')::uuid
					  AND created_at < NOW() - make_interval(days => $1)
					LIMIT $2
				)`,
				retentionDays, auditPurgeBatch,
			)
			if err != nil {
				return fmt.Errorf("purging audit entries: %w", err)
			}

			n = tag.RowsAffected()

			return nil
		})
		if err != nil {
			return total, err
		}

		total += int(n)
		if n < auditPurgeBatch {
			return total, nil
		}
	}
}
