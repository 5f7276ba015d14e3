package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/finmodel/ddmcalc/internal/store"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

// waitFor polls cond until it holds or the deadline passes. Hub state
// changes land asynchronously in the Run loop, so assertions on
// ClientCount go through here.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func newTestClient(h *WSHub, buffer int) *WSClient {
	return &WSClient{hub: h, send: make(chan WSMessage, buffer)}
}

func recvMessage(t *testing.T, ch chan WSMessage) WSMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a hub message")
		return WSMessage{}
	}
}

// ════════════════════════════════════════════════════════════════════
// Hub
// ════════════════════════════════════════════════════════════════════

func TestWSHubRegisterAndUnregister(t *testing.T) {
	h := NewWSHub()
	go h.Run()

	c := newTestClient(h, 1)
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount() == 1 },
		"client not registered")

	h.Unregister(c)
	waitFor(t, func() bool { return h.ClientCount() == 0 },
		"client not unregistered")

	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after unregister")
	}
}

func TestWSHubBroadcastReachesAllClients(t *testing.T) {
	h := NewWSHub()
	go h.Run()

	c1 := newTestClient(h, 4)
	c2 := newTestClient(h, 4)
	h.Register(c1)
	h.Register(c2)
	waitFor(t, func() bool { return h.ClientCount() == 2 },
		"clients not registered")

	h.Broadcast(WSMessage{Type: "valuation"})

	for i, c := range []*WSClient{c1, c2} {
		if msg := recvMessage(t, c.send); msg.Type != "valuation" {
			t.Errorf("client %d got message type %q, want valuation", i, msg.Type)
		}
	}
}

func TestWSHubDisconnectsSlowClients(t *testing.T) {
	h := NewWSHub()
	go h.Run()

	slow := newTestClient(h, 1)
	h.Register(slow)
	waitFor(t, func() bool { return h.ClientCount() == 1 },
		"client not registered")

	// Fill the client's buffer so the next delivery cannot go through.
	slow.send <- WSMessage{Type: "valuation"}
	h.Broadcast(WSMessage{Type: "valuation"})

	waitFor(t, func() bool { return h.ClientCount() == 0 },
		"slow client should be dropped when its buffer is full")

	// The buffered message is still readable, then the channel is closed.
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Error("send channel should be closed after the drop")
	}
}

func TestWSHubConcurrentRegisterUnregister(t *testing.T) {
	h := NewWSHub()
	go h.Run()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient(h, 1)
			h.Register(c)
			h.Broadcast(WSMessage{Type: "valuation"})
			h.Unregister(c)
		}()
	}
	wg.Wait()

	waitFor(t, func() bool { return h.ClientCount() == 0 },
		"all clients should be gone after concurrent churn")
}

// ════════════════════════════════════════════════════════════════════
// Store → Hub bridge
// ════════════════════════════════════════════════════════════════════

func TestValuationNotifiesWebSocketClients(t *testing.T) {
	srv := testServer(t)

	c := newTestClient(srv.wsHub, 16)
	srv.wsHub.Register(c)
	waitFor(t, func() bool { return srv.wsHub.ClientCount() == 1 },
		"client not registered")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/valuation", goodRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	msg := recvMessage(t, c.send)
	if msg.Type != "valuation" {
		t.Fatalf("message type = %q, want valuation", msg.Type)
	}
	snap, ok := msg.Data.(store.Snapshot)
	if !ok {
		t.Fatalf("message data has type %T, want store.Snapshot", msg.Data)
	}
	if snap.Request.Dividend != 5 {
		t.Errorf("pushed dividend = %v, want 5", snap.Request.Dividend)
	}
	if !snap.Result.Growth.Valid() {
		t.Error("pushed growth result should be valid")
	}
}

// ════════════════════════════════════════════════════════════════════
// WebSocket endpoint
// ════════════════════════════════════════════════════════════════════

// dialWS connects a real WebSocket client to a server backed by srv's
// router.
func dialWS(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn, out interface{}) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading message: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decoding message: %v\nraw: %s", err, raw)
	}
}

func TestWebSocketConnectSendsCurrentSnapshot(t *testing.T) {
	srv := testServer(t)

	// Populate the state before anyone connects.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/valuation", goodRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	conn := dialWS(t, srv)

	var msg struct {
		Type string      `json:"type"`
		Data snapshotOut `json:"data"`
	}
	readWS(t, conn, &msg)

	if msg.Type != "valuation" {
		t.Fatalf("first message type = %q, want valuation", msg.Type)
	}
	if msg.Data.Request.Dividend != 5 {
		t.Errorf("snapshot dividend = %v, want 5", msg.Data.Request.Dividend)
	}
	if msg.Data.Result.Constant.Price == nil ||
		math.Abs(*msg.Data.Result.Constant.Price-50) > 1e-9 {
		t.Errorf("snapshot constant price = %v, want 50", msg.Data.Result.Constant.Price)
	}
}

func TestWebSocketPingPong(t *testing.T) {
	srv := testServer(t)
	conn := dialWS(t, srv)

	// Fresh server: no snapshot push on connect, so the first reply is
	// the pong.
	if err := conn.WriteJSON(WSMessage{Type: "ping"}); err != nil {
		t.Fatalf("writing ping: %v", err)
	}

	var msg WSMessage
	readWS(t, conn, &msg)
	if msg.Type != "pong" {
		t.Errorf("reply type = %q, want pong", msg.Type)
	}
}
