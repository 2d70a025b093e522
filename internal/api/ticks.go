package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/player"
)

// TickHandler streams playback ticks over a WebSocket so time-display
// widgets update without polling the editor store.
type TickHandler struct {
	player   *player.Player
	upgrader websocket.Upgrader
}

// NewTickHandler creates a new TickHandler.
func NewTickHandler(p *player.Player) *TickHandler {
	return &TickHandler{
		player: p,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handle handles GET /ws/ticks
func (h *TickHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Tick stream upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	// Buffered so a slow client drops frames instead of stalling the
	// player's emit path.
	ticks := make(chan player.Tick, 8)
	unsubscribe := h.player.Subscribe(func(t player.Tick) {
		select {
		case ticks <- t:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		unsubscribe()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case t := <-ticks:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(t); err != nil {
				return
			}
		}
	}
}
