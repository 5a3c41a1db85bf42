package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/dbpool"
)

// ListenChannel is the channel stores notify after committing a change.
const ListenChannel = "family_changes"

// changedEvent is broadcast for notifications that carry no type.
const changedEvent = "family.changed"

// Broadcaster sends events to connected clients.
type Broadcaster interface {
	BroadcastEvent(eventType, tenantID string, data json.RawMessage)
}

// Invalidator drops cached family snapshots.
type Invalidator interface {
	Invalidate(tenantID string)
}

// ChangePayload is the JSON body of a family_changes notification.
type ChangePayload struct {
	Type     string `json:"type"`
	TenantID string `json:"tenant_id"`
	EntityID string `json:"entity_id,omitempty"`
	Origin   string `json:"origin,omitempty"`
}

// NotifyBridge keeps several server instances over one database coherent.
// It listens on ListenChannel; a change committed by another instance drops
// the tenant's cached snapshot here and is relayed to local WebSocket
// subscribers. Changes this instance made itself are skipped.
type NotifyBridge struct {
	log    *logrus.Logger
	pool   *dbpool.Pool
	hub    Broadcaster
	cache  Invalidator
	origin string
}

// NewNotifyBridge creates a NotifyBridge. origin is this instance's id in
// notification payloads; cache may be nil.
func NewNotifyBridge(log *logrus.Logger, pool *dbpool.Pool, hub Broadcaster, cache Invalidator, origin string) *NotifyBridge {
	return &NotifyBridge{log: log, pool: pool, hub: hub, cache: cache, origin: origin}
}

// Start checks the database is reachable, then listens in the background
// until ctx is done, reconnecting with exponential backoff.
func (b *NotifyBridge) Start(ctx context.Context) error {
	if err := b.pool.Ping(ctx); err != nil {
		return fmt.Errorf("notify bridge: database not reachable: %w", err)
	}

	go b.run(ctx)

	return nil
}

func (b *NotifyBridge) run(ctx context.Context) {
	retry := newReconnectBackoff()

	for ctx.Err() == nil {
		started := time.Now()

		err := b.listen(ctx)
		if ctx.Err() != nil {
			return
		}

		// A connection that stayed up a while earns a fresh backoff.
		if time.Since(started) > time.Minute {
			retry.Reset()
		}

		wait := retry.NextBackOff()
		b.log.WithError(err).WithField("retry_in", wait).Warn("notify bridge connection lost, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func newReconnectBackoff() *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.MaxInterval = 30 * time.Second
	eb.Multiplier = 2
	eb.RandomizationFactor = 0.25

	return eb
}

// listen holds one connection on the channel and applies notifications
// until the connection fails or ctx ends.
func (b *NotifyBridge) listen(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ListenChannel}.Sanitize()); err != nil {
		return fmt.Errorf("executing LISTEN: %w", err)
	}

	b.log.WithField("channel", ListenChannel).Info("notify bridge listening")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("waiting for notification: %w", err)
		}

		b.handleNotification(n)
	}
}

// handleNotification applies a single notification from another instance.
func (b *NotifyBridge) handleNotification(n *pgconn.Notification) {
	var p ChangePayload
	if err := json.Unmarshal([]byte(n.Payload), &p); err != nil || p.TenantID == "" {
		b.log.WithField("pid", n.PID).Warn("dropping notification without tenant_id")
		return
	}

	if p.Origin != "" && p.Origin == b.origin {
		return
	}

	b.log.WithFields(logrus.Fields{"tenant_id": p.TenantID, "type": p.Type, "pid": n.PID}).Debug("remote change")

	if b.cache != nil {
		b.cache.Invalidate(p.TenantID)
	}

	eventType := p.Type
	if eventType == "" {
		eventType = changedEvent
	}

	b.hub.BroadcastEvent(eventType, p.TenantID, json.RawMessage(n.Payload))
}
