package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout         = 10 * time.Second
	wsReadLimit          = 4096
	clientSendBuffer     = 256
	maxConnLifetime      = 4 * time.Hour
	tokenRefreshInterval = 15 * time.Minute
	tokenRefreshTimeout  = 10 * time.Second
	pingInterval         = 30 * time.Second
	pingTimeout          = 10 * time.Second
	maxMissedPongs       = 2
	maxFilterEntries     = 100
)

// TenantValidator validates that an API key still maps to a valid tenant.
type TenantValidator interface {
	GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// Client is one subscriber connection owned by the Hub.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	log         *logrus.Logger
	TenantID    string
	apiKey      string
	validator   TenantValidator
	watch       atomic.Pointer[Filter]
	closeOnce   sync.Once
	connectedAt time.Time
}

// NewClient creates a Client for conn. validator may be nil to skip periodic
// API key re-validation.
func NewClient(hub *Hub, conn *websocket.Conn, validator TenantValidator, apiKey string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, clientSendBuffer),
		log:         hub.log,
		apiKey:      apiKey,
		validator:   validator,
		connectedAt: time.Now(),
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// filter returns the client's current subscription filter; nil matches all.
func (c *Client) filter() *Filter {
	return c.watch.Load()
}

// ReadPump reads subscribe requests until the connection closes, then
// unregisters the client.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
	}()

	c.conn.SetReadLimit(wsReadLimit)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.WithField("status", websocket.CloseStatus(err)).Debug("client disconnected")
			}

			return
		}

		c.handleMessage(data)
	}
}

// handleMessage applies a subscribe request: it replaces the filter and
// replays missed events, or sends a reset when they are gone.
func (c *Client) handleMessage(data []byte) {
	var msg SubscribeMsg
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "subscribe" {
		return
	}

	if len(msg.Types) > maxFilterEntries || len(msg.People) > maxFilterEntries {
		c.reply(ResetMsg{Type: "error", Reason: "too many filter entries"})
		return
	}

	if len(msg.Types) > 0 || len(msg.People) > 0 {
		c.watch.Store(NewFilter(msg.Types, msg.People))
	} else {
		c.watch.Store(nil)
	}

	replayed, ok := c.hub.Replay(c, msg.LastEventID)
	if !ok {
		c.reply(ResetMsg{Type: "reset", Reason: "requested events no longer available, reload the family"})
		return
	}

	c.reply(SubscribedMsg{Type: "subscribed", Replayed: replayed})
}

func (c *Client) reply(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}

	select {
	case c.send <- msg:
	default:
	}
}

// WritePump writes queued messages to the connection until the send channel
// closes or the connection is retired.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	keepalive := time.NewTicker(pingInterval)
	defer keepalive.Stop()

	recheck := time.NewTicker(tokenRefreshInterval)
	defer recheck.Stop()

	missed := 0

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusGoingAway, "") //nolint:errcheck // best-effort
				return
			}

			if err := c.write(ctx, msg); err != nil {
				c.log.WithError(err).Debug("write failed")
				return
			}

		case <-keepalive.C:
			if c.ping(ctx) == nil {
				missed = 0
				continue
			}

			if missed++; missed >= maxMissedPongs {
				c.log.WithField("tenant_id", c.TenantID).Debug("closing: peer stopped answering pings")
				return
			}

		case <-recheck.C:
			if code, reason := c.expired(ctx); reason != "" {
				c.log.WithFields(logrus.Fields{"tenant_id": c.TenantID, "reason": reason}).Info("closing watch connection")
				c.conn.Close(code, reason) //nolint:errcheck // best-effort

				return
			}
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return c.conn.Write(ctx, websocket.MessageText, msg)
}

func (c *Client) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return c.conn.Ping(ctx)
}

// expired reports why the connection must be retired, or an empty reason if it
// may stay open: either it outlived maxConnLifetime or its API key no longer
// resolves to the tenant it was opened for.
func (c *Client) expired(ctx context.Context) (websocket.StatusCode, string) {
	if time.Since(c.connectedAt) >= maxConnLifetime {
		return websocket.StatusNormalClosure, "max connection lifetime exceeded"
	}

	if c.validator == nil {
		return 0, ""
	}

	ctx, cancel := context.WithTimeout(ctx, tokenRefreshTimeout)
	defer cancel()

	tenantID, err := c.validator.GetTenantByAPIKey(ctx, c.apiKey)
	if err != nil || tenantID != c.TenantID {
		return websocket.StatusPolicyViolation, "authentication expired"
	}

	return 0, ""
}
