// Package ws fans family change events out to WebSocket subscribers.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/metrics"
)

// Hub channel buffer sizes.
const (
	broadcastBuffer = 256
	registerBuffer  = 64
)

// maxEventPayload caps the encoded size of one event.
const maxEventPayload = 4096

// Options bounds the hub. Zero fields take the defaults.
type Options struct {
	MaxClients   int
	MaxPerTenant int
	ReplayLen    int
	ReplayAge    time.Duration
	SweepEvery   time.Duration
	DrainTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxClients <= 0 {
		o.MaxClients = 1000
	}
	if o.MaxPerTenant <= 0 {
		o.MaxPerTenant = 50
	}
	if o.ReplayLen <= 0 {
		o.ReplayLen = 1000
	}
	if o.ReplayAge <= 0 {
		o.ReplayAge = time.Hour
	}
	if o.SweepEvery <= 0 {
		o.SweepEvery = 10 * time.Minute
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = 3 * time.Second
	}

	return o
}

// Hub tracks connected clients per tenant and delivers events to them.
// The client set is only touched by the Run goroutine.
type Hub struct {
	opts        Options
	clients     map[*Client]struct{}
	tenantCount map[string]int
	register    chan *Client
	unregister  chan *Client
	broadcast   chan *Event
	shutdown    chan struct{}
	done        chan struct{}
	count       atomic.Int64
	log         *logrus.Logger
	seq         *EventSequence
	buffer      *EventBuffer
}

// NewHub creates a Hub with default limits.
func NewHub(log *logrus.Logger) *Hub {
	return NewHubWithOptions(log, Options{})
}

// NewHubWithOptions creates a Hub with the given limits.
func NewHubWithOptions(log *logrus.Logger, opts Options) *Hub {
	opts = opts.withDefaults()

	return &Hub{
		opts:        opts,
		clients:     make(map[*Client]struct{}),
		tenantCount: make(map[string]int),
		register:    make(chan *Client, registerBuffer),
		unregister:  make(chan *Client, registerBuffer),
		broadcast:   make(chan *Event, broadcastBuffer),
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		log:         log,
		seq:         NewEventSequence(),
		buffer:      NewEventBuffer(opts.ReplayLen, opts.ReplayAge),
	}
}

// Run is the hub event loop. It returns after Shutdown or when ctx ends,
// having drained connected clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	sweep := time.NewTicker(h.opts.SweepEvery)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			h.drainClients()
			return
		case <-h.shutdown:
			h.drainClients()
			return
		case <-sweep.C:
			h.buffer.Sweep()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case evt := <-h.broadcast:
			h.deliver(evt)
		}
	}
}

func (h *Hub) add(c *Client) {
	if len(h.clients) >= h.opts.MaxClients {
		h.log.Warn("global connection limit reached, dropping client")
		c.closeSend()
		return
	}

	if h.tenantCount[c.TenantID] >= h.opts.MaxPerTenant {
		h.log.WithField("tenant_id", c.TenantID).Warn("per-tenant connection limit reached, dropping client")
		c.closeSend()
		return
	}

	h.clients[c] = struct{}{}
	h.tenantCount[c.TenantID]++
	h.updateCount()
	h.log.WithFields(logrus.Fields{"tenant_id": c.TenantID, "total": len(h.clients)}).Info("client registered")
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	h.drop(c)
	h.updateCount()
	h.log.WithFields(logrus.Fields{"tenant_id": c.TenantID, "total": len(h.clients)}).Info("client unregistered")
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	c.closeSend()

	h.tenantCount[c.TenantID]--
	if h.tenantCount[c.TenantID] <= 0 {
		delete(h.tenantCount, c.TenantID)
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// deliver sends evt to the tenant's matching clients. Slow clients whose
// send buffer is full are disconnected.
func (h *Hub) deliver(evt *Event) {
	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	for c := range h.clients {
		if c.TenantID != evt.TenantID || !c.filter().Match(evt) {
			continue
		}

		select {
		case c.send <- msg:
		default:
			h.log.WithField("tenant_id", c.TenantID).Warn("client send buffer full, disconnecting")
			h.drop(c)
		}
	}

	h.updateCount()
}

// BroadcastEvent records a change for the tenant and queues it for delivery.
// Oversized payloads are dropped.
func (h *Hub) BroadcastEvent(eventType, tenantID string, data json.RawMessage) {
	if len(data) > maxEventPayload {
		h.log.WithFields(logrus.Fields{
			"tenant_id":    tenantID,
			"type":         eventType,
			"payload_size": len(data),
		}).Warn("dropping oversized event payload")
		return
	}

	evt := &Event{
		Type:     eventType,
		ID:       h.seq.Next(tenantID),
		TenantID: tenantID,
		Data:     data,
		Time:     time.Now(),
		people:   peopleIn(data),
	}

	h.buffer.Append(tenantID, evt)

	select {
	case h.broadcast <- evt:
	default:
		h.log.Warn("broadcast channel full, dropping event")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Shutdown tells connected clients the server is going away, waits for their
// buffers to flush and closes them. It blocks until Run has returned.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for c := range h.clients {
		select {
		case c.send <- shutdownMsg:
		default:
		}
	}

	deadline := time.After(h.opts.DrainTimeout)
	poll := time.NewTicker(50 * time.Millisecond)
	defer poll.Stop()

wait:
	for h.pending() {
		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")
			break wait
		case <-poll.C:
		}
	}

	for c := range h.clients {
		h.drop(c)
	}

	h.updateCount()
}

func (h *Hub) pending() bool {
	for c := range h.clients {
		if len(c.send) > 0 {
			return true
		}
	}

	return false
}

// Replay queues the client's missed events after lastEventID that pass its
// filter. It returns false when the buffer no longer reaches back that far.
func (h *Hub) Replay(c *Client, lastEventID uint64) (int, bool) {
	oldest := h.buffer.OldestID(c.TenantID)
	if oldest > 0 && lastEventID > 0 && lastEventID+1 < oldest {
		return 0, false
	}

	sent := 0
	for _, evt := range h.buffer.Since(c.TenantID, lastEventID, c.filter()) {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}

		select {
		case c.send <- msg:
			sent++
		default:
			return sent, true
		}
	}

	return sent, true
}
