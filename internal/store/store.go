// Package store provides focused, single-concern PostgreSQL data access
// stores for the kinship family graph.
//
// Each store owns one concern (people, links, whole-family snapshots,
// tenants, audit) and embeds shared helpers (Pool, logger, origin) via the
// Base struct. Stores never import each other; shared logic lives in this
// file or in dedicated helper files (scan.go, helpers.go).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/db"
	"github.com/persistorai/kinship/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
	// Origin identifies this process in change notifications.
	Origin string
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// begin opens a transaction scoped to tenantID. Row-level security reads the
// tenant from app.tenant_id, so every statement in the transaction is
// confined to that tenant's rows.
func (b *Base) begin(ctx context.Context, tenantID string, mode pgx.TxAccessMode) (pgx.Tx, error) {
	if _, err := uuid.Parse(tenantID); err != nil {
		return nil, fmt.Errorf("invalid tenant ID format: %w", err)
	}

	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: mode})
	if err != nil {
		return nil, fmt.Errorf("beginning %s transaction: %w", mode, err)
	}

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		tx.Rollback(ctx) //nolint:errcheck // the set_config error is the one to report.
		return nil, fmt.Errorf("setting tenant context: %w", err)
	}

	return tx, nil
}

func (b *Base) beginTx(ctx context.Context, tenantID string) (pgx.Tx, error) {
	return b.begin(ctx, tenantID, pgx.ReadWrite)
}

func (b *Base) beginReadTx(ctx context.Context, tenantID string) (pgx.Tx, error) {
	return b.begin(ctx, tenantID, pgx.ReadOnly)
}

// inTx runs fn in a read-write tenant transaction and commits when fn
// returns nil.
func (b *Base) inTx(ctx context.Context, tenantID string, fn func(pgx.Tx) error) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := b.beginTx(ctx, tenantID)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit.

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// notify sends a pg_notify on the family_changes channel (best-effort, post-commit).
func (b *Base) notify(eventType, tenantID, entityID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, _ := json.Marshal(db.ChangePayload{ //nolint:errcheck // plain strings, cannot fail.
		Type:     eventType,
		TenantID: tenantID,
		EntityID: entityID,
		Origin:   b.Origin,
	})
	if _, err := b.Pool.Exec(ctx, "SELECT pg_notify($1, $2)", db.ListenChannel, string(payload)); err != nil {
		b.Log.WithError(err).Warn("failed to send " + eventType + " notification")
	}
}
