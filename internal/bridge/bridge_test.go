package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/baaaaaaaka/eledminer/internal/router"
)

type echoSubmitter struct {
	mu   sync.Mutex
	cmds []router.Command
}

func (e *echoSubmitter) Submit(cmd router.Command, sink router.Sink) bool {
	e.mu.Lock()
	e.cmds = append(e.cmds, cmd)
	e.mu.Unlock()
	sink.Send(router.Reply{Type: router.ReplyType("ECHO"), Payload: string(cmd.Type)})
	return true
}

type wireReply struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func startBridge(t *testing.T) (*Server, *router.Broadcast, *echoSubmitter, string) {
	t.Helper()
	sub := &echoSubmitter{}
	events := router.NewBroadcast()
	b := New(sub, events, func(context.Context) any { return "running" })
	ts := httptest.NewServer(b.Handler())
	t.Cleanup(ts.Close)
	return b, events, sub, ts.URL
}

func dial(t *testing.T, base string, header http.Header) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(base, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) wireReply {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var r wireReply
	if err := conn.ReadJSON(&r); err != nil {
		t.Fatalf("read: %v", err)
	}
	return r
}

func TestCommandRoundTrip(t *testing.T) {
	_, _, sub, base := startBridge(t)
	conn := dial(t, base, nil)

	frame := Frame{Type: "REMOVE_CONNECTION", Payload: json.RawMessage(`"abc"`)}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := readReply(t, conn)
	if r.Type != "ECHO" || string(r.Payload) != `"REMOVE_CONNECTION"` {
		t.Fatalf("reply=%+v payload=%s", r, r.Payload)
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if len(sub.cmds) != 1 || sub.cmds[0].ID != "abc" {
		t.Fatalf("cmds=%+v", sub.cmds)
	}
}

func TestUnknownCommandGetsProtocolError(t *testing.T) {
	_, _, sub, base := startBridge(t)
	conn := dial(t, base, nil)

	if err := conn.WriteJSON(Frame{Type: "DROP_TABLES"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := readReply(t, conn)
	if r.Type != string(ReplyProtocolError) {
		t.Fatalf("reply=%+v", r)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	r = readReply(t, conn)
	if r.Type != string(ReplyProtocolError) {
		t.Fatalf("reply=%+v", r)
	}

	// The connection survives bad frames.
	if err := conn.WriteJSON(Frame{Type: "HOME_LOADED"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if r := readReply(t, conn); r.Type != "ECHO" {
		t.Fatalf("reply=%+v", r)
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if len(sub.cmds) != 1 {
		t.Fatalf("cmds=%+v", sub.cmds)
	}
}

func TestTruncatedFramesKeepConnectionOpen(t *testing.T) {
	_, _, sub, base := startBridge(t)
	conn := dial(t, base, nil)

	for _, raw := range []string{"", "{", `{"type":"NAVIGATE_HOME"`, "null"} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("write %q: %v", raw, err)
		}
		if r := readReply(t, conn); r.Type != string(ReplyProtocolError) {
			t.Fatalf("frame %q reply=%+v", raw, r)
		}
	}

	if err := conn.WriteJSON(Frame{Type: "HOME_LOADED"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if r := readReply(t, conn); r.Type != "ECHO" {
		t.Fatalf("reply=%+v", r)
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if len(sub.cmds) != 1 {
		t.Fatalf("cmds=%+v", sub.cmds)
	}
}

func TestEventsReachEveryClient(t *testing.T) {
	b, events, _, base := startBridge(t)
	c1 := dial(t, base, nil)
	c2 := dial(t, base, nil)

	deadline := time.Now().Add(3 * time.Second)
	for {
		b.mu.Lock()
		n := len(b.clients)
		b.mu.Unlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("clients=%d", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	events.Send(router.Reply{Type: router.EventServerState, Payload: router.ServerStatus{State: "running"}})
	for _, c := range []*websocket.Conn{c1, c2} {
		r := readReply(t, c)
		if r.Type != string(router.EventServerState) {
			t.Fatalf("reply=%+v", r)
		}
		var st router.ServerStatus
		if err := json.Unmarshal(r.Payload, &st); err != nil || st.State != "running" {
			t.Fatalf("payload=%s err=%v", r.Payload, err)
		}
	}
}

func TestForeignOriginRejected(t *testing.T) {
	_, _, _, base := startBridge(t)
	u := "ws" + strings.TrimPrefix(base, "http") + "/ws"

	h := http.Header{}
	h.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(u, h)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("resp=%v", resp)
	}

	h.Set("Origin", "http://localhost:3000")
	conn := dial(t, base, h)
	_ = conn
}

func TestHealthz(t *testing.T) {
	_, _, _, base := startBridge(t)
	resp, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		OK     bool   `json:"ok"`
		Server string `json:"server"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.Server != "running" {
		t.Fatalf("body=%+v", body)
	}

	post, err := http.Post(base+"/healthz", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", post.StatusCode)
	}
}

func TestLoopbackOrigin(t *testing.T) {
	cases := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"null", true},
		{"http://127.0.0.1:8000", true},
		{"http://[::1]:8000", true},
		{"http://localhost", true},
		{"http://192.168.1.10", false},
		{"https://example.com", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		if got := loopbackOrigin(r); got != tc.want {
			t.Fatalf("origin %q: got %v want %v", tc.origin, got, tc.want)
		}
	}
}

func TestStartAndClose(t *testing.T) {
	b := New(&echoSubmitter{}, nil, nil)
	addr, err := b.Start("127.0.0.1:0")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	conn := dial(t, "http://"+addr, nil)
	if err := b.Close(t.Context()); err != nil {
		t.Fatalf("close: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected closed connection")
	}
}
