// Package remote exposes playback control to out-of-process surfaces: a
// WebSocket server for phones on the same network and a small companion
// HTTP server serving status and one-shot commands. Remote commands map
// 1:1 onto the player's control handlers.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/config"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/player"
)

// Command is one remote instruction.
type Command struct {
	Action string  `json:"action"`
	Value  float64 `json:"value,omitempty"`
}

// Status extends the player snapshot with connection info.
type Status struct {
	player.Status
	ConnectedClients int `json:"connectedClients"`
}

// writeWait bounds a single status write to a client.
const writeWait = 5 * time.Second

// client is one connected phone. All writes to the connection go through
// send and are drained by a single pump goroutine; gorilla connections
// tolerate only one concurrent writer, and status pushes arrive from the
// tick loop, the read loop and HTTP handlers at the same time.
type client struct {
	conn *websocket.Conn
	send chan Status
}

// Server hosts the remote-control surface. The HTTP server listens on
// the configured port; the WebSocket server on port+1, matching what the
// QR code encodes.
type Server struct {
	player *player.Player
	cfg    config.RemoteConfig

	mu      sync.Mutex
	clients map[*client]bool

	httpSrv *http.Server
	wsSrv   *http.Server

	upgrader websocket.Upgrader
}

// New creates a remote server over the player.
func New(p *player.Player, cfg config.RemoteConfig) *Server {
	return &Server{
		player:  p,
		cfg:     cfg,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Remote clients are phones on the LAN; there is no
			// origin that makes sense to enforce.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start launches both listeners and subscribes to player ticks so status
// changes reach connected clients.
func (s *Server) Start() error {
	if !s.cfg.Enabled {
		slog.Info("Remote control disabled")
		return nil
	}

	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/", s.handleWS)
	s.wsSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port+1),
		Handler: wsMux,
	}

	httpMux := http.NewServeMux()
	httpMux.HandleFunc("GET /status", s.handleStatus)
	httpMux.HandleFunc("POST /command", s.handleCommand)
	httpMux.HandleFunc("GET /", s.handleIndex)
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: httpMux,
	}

	go s.serve(s.wsSrv, "remote websocket")
	go s.serve(s.httpSrv, "remote http")

	// Push status on every player state change.
	s.player.Subscribe(func(player.Tick) {
		s.broadcastStatus()
	})

	slog.Info("Remote control started", "http_port", s.cfg.Port, "ws_port", s.cfg.Port+1)
	return nil
}

func (s *Server) serve(srv *http.Server, name string) {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Remote server failed", "server", name, "error", err)
	}
}

// Shutdown closes all client connections and both listeners.
func (s *Server) Shutdown(ctx context.Context) {
	s.mu.Lock()
	for c := range s.clients {
		close(c.send)
		c.conn.Close()
	}
	s.clients = make(map[*client]bool)
	s.mu.Unlock()

	if s.wsSrv != nil {
		s.wsSrv.Shutdown(ctx)
	}
	if s.httpSrv != nil {
		s.httpSrv.Shutdown(ctx)
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) status() Status {
	return Status{
		Status:           s.player.Status(),
		ConnectedClients: s.ClientCount(),
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Remote websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan Status, 8)}
	s.mu.Lock()
	s.clients[c] = true
	n := len(s.clients)
	s.mu.Unlock()
	slog.Info("Remote client connected", "remote", r.RemoteAddr, "clients", n)

	go s.writePump(c)
	go s.readLoop(c)

	// Everyone sees the new client count; the new client gets its first
	// status frame through the same path.
	s.broadcastStatus()
}

// writePump is the sole writer for one connection. It exits when the
// send channel closes or a write fails.
func (s *Server) writePump(c *client) {
	for st := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(st); err != nil {
			c.conn.Close()
			return
		}
	}
	c.conn.Close()
}

func (s *Server) readLoop(c *client) {
	defer func() {
		s.mu.Lock()
		if s.clients[c] {
			delete(s.clients, c)
			close(c.send)
		}
		s.mu.Unlock()
		s.broadcastStatus()
		slog.Info("Remote client disconnected")
	}()

	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			return
		}
		s.Apply(cmd)
	}
}

// Apply executes a remote command against the player. Unknown actions
// are logged and ignored so a newer remote page never wedges the server.
func (s *Server) Apply(cmd Command) {
	switch cmd.Action {
	case "play":
		s.player.Play()
	case "pause":
		s.player.Pause()
	case "stop":
		s.player.Stop()
	case "next_segment":
		s.player.SkipNext()
	case "prev_segment":
		s.player.SkipPrev()
	case "set_speed":
		s.player.SetSpeed(cmd.Value)
	case "seek":
		s.player.Seek(cmd.Value)
	case "reset_position":
		s.player.ResetPosition()
	case "toggle_mirror":
		s.player.ToggleMirror()
	case "go_live":
		s.player.GoLive()
	case "exit_live":
		s.player.ExitLive()
	default:
		slog.Warn("Unknown remote command", "action", cmd.Action)
		return
	}
	s.broadcastStatus()
}

// broadcastStatus enqueues the current status to every client. A client
// whose buffer is full skips this frame; the next tick supersedes it, so
// a stalled phone never blocks the tick loop.
func (s *Server) broadcastStatus() {
	st := s.status()

	s.mu.Lock()
	for c := range s.clients {
		select {
		case c.send <- st:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status())
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid command payload", http.StatusBadRequest)
		return
	}
	s.Apply(cmd)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status())
}

// handleIndex serves a minimal control page so a phone can drive playback
// straight from the QR-scanned URL without installing anything.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, remotePage, s.cfg.Port+1)
}
