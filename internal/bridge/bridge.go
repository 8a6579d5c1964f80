package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/baaaaaaaka/eledminer/internal/logging"
	"github.com/baaaaaaaka/eledminer/internal/router"
)

const subsystem = "bridge"

// ReplyProtocolError answers frames that cannot be decoded.
const ReplyProtocolError router.ReplyType = "PROTOCOL_ERROR"

const (
	writeWait    = 5 * time.Second
	sendBuffer   = 64
	maxFrameSize = 1 << 20
)

// Frame is one websocket message in either direction.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Submitter interface {
	Submit(router.Command, router.Sink) bool
}

// Events is where the bridge subscribes its clients to published events.
type Events interface {
	Add(router.Sink) (remove func())
}

// Server exposes the command protocol over a loopback websocket.
type Server struct {
	submit Submitter
	events Events
	status StatusFunc

	upgrader websocket.Upgrader

	mu      sync.Mutex
	httpSrv *http.Server
	ln      net.Listener
	clients map[*client]struct{}
}

// StatusFunc describes the PHP server for /healthz. The result is encoded as
// JSON.
type StatusFunc func(ctx context.Context) any

// New returns a bridge. status may be nil.
func New(submit Submitter, events Events, status StatusFunc) *Server {
	s := &Server{
		submit:  submit,
		events:  events,
		status:  status,
		clients: map[*client]struct{}{},
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     loopbackOrigin,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.serveWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.serveHealth).Methods(http.MethodGet)
	return r
}

// Start listens on addr and serves in the background. It returns the bound
// address.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	s.mu.Lock()
	s.httpSrv = srv
	s.ln = ln
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(subsystem, err, "bridge server stopped")
		}
	}()
	logging.Info(subsystem, "listening on %s", ln.Addr())
	return ln.Addr().String(), nil
}

// Close stops accepting connections and disconnects every client.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	var server any
	if s.status != nil {
		server = s.status(r.Context())
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "server": server})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(subsystem, "upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	conn.SetReadLimit(maxFrameSize)

	c := &client{conn: conn, send: make(chan router.Reply, sendBuffer), done: make(chan struct{})}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	remove := func() {}
	if s.events != nil {
		remove = s.events.Add(c)
	}
	defer func() {
		remove()
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.close()
	}()

	go c.writeLoop()
	s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug(subsystem, "read: %v", err)
			}
			return
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			logging.Debug(subsystem, "malformed frame: %v", err)
			c.Send(router.Reply{Type: ReplyProtocolError, Payload: "malformed frame"})
			continue
		}

		cmd, err := router.DecodeCommand(f.Type, f.Payload)
		if err != nil {
			logging.Warn(subsystem, "rejecting frame: %v", err)
			c.Send(router.Reply{Type: ReplyProtocolError, Payload: err.Error()})
			continue
		}
		if !s.submit.Submit(cmd, c) {
			return
		}
	}
}

type client struct {
	conn *websocket.Conn
	send chan router.Reply

	closeOnce sync.Once
	done      chan struct{}
}

// Send never blocks; a client that cannot keep up loses replies.
func (c *client) Send(r router.Reply) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- r:
	default:
		logging.Warn(subsystem, "client send buffer full, dropping %s", r.Type)
	}
}

func (c *client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case r := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(r); err != nil {
				logging.Debug(subsystem, "write: %v", err)
				c.close()
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		_ = c.conn.Close()
	})
}

// loopbackOrigin admits non-browser clients and pages served from loopback.
func loopbackOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == "null" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
