package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/config"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/player"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/remote"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/store"
)

// PlaybackHandler handles playback control endpoints. The state store is
// optional; with one attached, volume changes survive restarts.
type PlaybackHandler struct {
	player    *player.Player
	remoteCfg config.RemoteConfig
	state     store.StateStore
}

// NewPlaybackHandler creates a new PlaybackHandler.
func NewPlaybackHandler(p *player.Player, remoteCfg config.RemoteConfig, st store.StateStore) *PlaybackHandler {
	return &PlaybackHandler{player: p, remoteCfg: remoteCfg, state: st}
}

// PlaybackControlRequest represents a playback control command.
type PlaybackControlRequest struct {
	Action string  `json:"action"`
	Value  float64 `json:"value,omitempty"`
}

// HandleControl handles POST /api/playback/control
func (h *PlaybackHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	var req PlaybackControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "toggle":
		h.player.TogglePlay()
	case "play":
		h.player.Play()
	case "pause":
		h.player.Pause()
	case "stop":
		h.player.Stop()
	case "next":
		h.player.SkipNext()
	case "prev":
		h.player.SkipPrev()
	case "seek":
		h.player.Seek(req.Value)
	case "seek-fraction":
		h.player.SeekFraction(req.Value)
	case "speed":
		h.player.SetSpeed(req.Value)
	case "volume":
		h.player.SetVolume(req.Value)
		if h.state != nil {
			val := strconv.FormatFloat(h.player.Volume(), 'f', -1, 64)
			if err := h.state.SetState(r.Context(), "volume", val); err != nil {
				slog.Debug("Failed to persist volume", "error", err)
			}
		}
	case "mute":
		h.player.ToggleMute()
	case "mirror":
		h.player.ToggleMirror()
	case "reset":
		h.player.ResetPosition()
	case "go-live":
		h.player.GoLive()
	case "exit-live":
		h.player.ExitLive()
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	slog.Debug("Playback control", "action", req.Action, "state", h.player.State())
	writeJSON(w, h.player.Status())
}

// HandleStatus handles GET /api/playback/status
func (h *PlaybackHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.player.Status())
}

// HandleQR handles GET /api/playback/qr, the remote-control QR code.
func (h *PlaybackHandler) HandleQR(w http.ResponseWriter, r *http.Request) {
	if !h.remoteCfg.Enabled {
		http.Error(w, "remote control disabled", http.StatusNotFound)
		return
	}
	png, err := remote.QRPNG(h.remoteCfg.Port, 256)
	if err != nil {
		slog.Warn("Failed to build remote QR", "error", err)
		http.Error(w, "no network interface for remote control", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		slog.Error("Failed to write QR response", "error", err)
	}
}
