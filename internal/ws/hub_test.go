package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/ws"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// startHub runs a hub behind an httptest server. The tenant comes from the
// "tenant" query parameter.
func startHub(t *testing.T, opts ws.Options) (*ws.Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHubWithOptions(testLogger(), opts)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}

		c := ws.NewClient(hub, conn, nil, "")
		c.TenantID = r.URL.Query().Get("tenant")
		hub.Register(c)

		go c.WritePump(ctx)
		c.ReadPump(ctx)
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, tenant string) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?tenant=" + tenant
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() }) //nolint:errcheck // test teardown

	return conn
}

func waitForClients(t *testing.T, hub *ws.Hub, n int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type message struct {
	Type     string          `json:"type"`
	ID       uint64          `json:"id"`
	Data     json.RawMessage `json:"data"`
	Replayed int             `json:"replayed"`
}

func read(t *testing.T, conn *websocket.Conn) message {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var m message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}

	return m
}

func subscribe(t *testing.T, conn *websocket.Conn, msg ws.SubscribeMsg) {
	t.Helper()

	msg.Type = "subscribe"
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestHub_DeliversToTenantOnly(t *testing.T) {
	hub, srv := startHub(t, ws.Options{})

	mine := dial(t, srv, "t1")
	other := dial(t, srv, "t2")
	waitForClients(t, hub, 2)

	hub.BroadcastEvent("person.created", "t1", json.RawMessage(`{"id":"ada"}`))
	hub.BroadcastEvent("person.created", "t2", json.RawMessage(`{"id":"zed"}`))

	if m := read(t, mine); m.Type != "person.created" || m.ID != 1 || !strings.Contains(string(m.Data), "ada") {
		t.Errorf("t1 got %+v", m)
	}
	if m := read(t, other); !strings.Contains(string(m.Data), "zed") {
		t.Errorf("t2 got %+v", m)
	}
}

func TestHub_SubscribeFilters(t *testing.T) {
	hub, srv := startHub(t, ws.Options{})

	conn := dial(t, srv, "t1")
	waitForClients(t, hub, 1)

	subscribe(t, conn, ws.SubscribeMsg{Types: []string{"link.added"}, People: []string{"mum"}})
	if m := read(t, conn); m.Type != "subscribed" {
		t.Fatalf("ack = %+v", m)
	}

	hub.BroadcastEvent("person.created", "t1", json.RawMessage(`{"id":"mum"}`))
	hub.BroadcastEvent("link.added", "t1", json.RawMessage(`{"kind":"parent","person_id":"bob","other_id":"dad"}`))
	hub.BroadcastEvent("link.added", "t1", json.RawMessage(`{"kind":"parent","person_id":"ada","other_id":"mum"}`))

	m := read(t, conn)
	if m.Type != "link.added" || m.ID != 3 {
		t.Errorf("got %+v, want the link event touching mum", m)
	}
}

func TestHub_ReplayMissedEvents(t *testing.T) {
	hub, srv := startHub(t, ws.Options{})

	for _, id := range []string{"a", "b", "c"} {
		hub.BroadcastEvent("person.created", "t1", json.RawMessage(`{"id":"`+id+`"}`))
	}

	conn := dial(t, srv, "t1")
	waitForClients(t, hub, 1)

	subscribe(t, conn, ws.SubscribeMsg{LastEventID: 1})

	if m := read(t, conn); m.ID != 2 {
		t.Errorf("first replay = %+v", m)
	}
	if m := read(t, conn); m.ID != 3 {
		t.Errorf("second replay = %+v", m)
	}
	if m := read(t, conn); m.Type != "subscribed" || m.Replayed != 2 {
		t.Errorf("ack = %+v", m)
	}
}

func TestHub_ResetWhenReplayGone(t *testing.T) {
	hub, srv := startHub(t, ws.Options{ReplayLen: 2})

	for range 5 {
		hub.BroadcastEvent("person.updated", "t1", json.RawMessage(`{"id":"ada"}`))
	}

	conn := dial(t, srv, "t1")
	waitForClients(t, hub, 1)

	subscribe(t, conn, ws.SubscribeMsg{LastEventID: 1})

	if m := read(t, conn); m.Type != "reset" {
		t.Errorf("got %+v, want reset", m)
	}
}

func TestHub_PerTenantLimit(t *testing.T) {
	hub, srv := startHub(t, ws.Options{MaxPerTenant: 1})

	dial(t, srv, "t1")
	waitForClients(t, hub, 1)

	second := dial(t, srv, "t1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, _, err := second.Read(ctx); err == nil {
		t.Error("second client should be closed")
	}
	if hub.ClientCount() != 1 {
		t.Errorf("client count = %d, want 1", hub.ClientCount())
	}
}

func TestHub_DropsOversizedPayload(t *testing.T) {
	hub, srv := startHub(t, ws.Options{})

	conn := dial(t, srv, "t1")
	waitForClients(t, hub, 1)

	big := `{"id":"` + strings.Repeat("x", 5000) + `"}`
	hub.BroadcastEvent("person.created", "t1", json.RawMessage(big))
	hub.BroadcastEvent("person.deleted", "t1", json.RawMessage(`{"id":"ada"}`))

	if m := read(t, conn); m.Type != "person.deleted" {
		t.Errorf("got %+v, want oversized event skipped", m)
	}
}

func TestHub_ShutdownNotifiesClients(t *testing.T) {
	hub := ws.NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		c := ws.NewClient(hub, conn, nil, "")
		c.TenantID = "t1"
		hub.Register(c)
		go c.WritePump(ctx)
		c.ReadPump(ctx)
	}))
	defer srv.Close()

	conn := dial(t, srv, "t1")
	waitForClients(t, hub, 1)

	hub.Shutdown()

	if m := read(t, conn); m.Type != "shutdown" {
		t.Errorf("got %+v, want shutdown", m)
	}
	if hub.ClientCount() != 0 {
		t.Errorf("client count after shutdown = %d", hub.ClientCount())
	}
}
