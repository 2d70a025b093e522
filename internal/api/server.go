package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/version"
)

// NewServer creates and configures the HTTP server.
// It accepts handlers for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, projectH *ProjectHandler, editorH *EditorHandler, canvasH *CanvasHandler, playbackH *PlaybackHandler, frameH *FrameHandler, assetH *AssetHandler, importH *ImportHandler, ticksH *TickHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 1b. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Project Endpoints
	mux.HandleFunc("GET /api/projects", projectH.HandleList)
	mux.HandleFunc("POST /api/projects", projectH.HandleSave)
	mux.HandleFunc("GET /api/projects/{id}", projectH.HandleLoad)
	mux.HandleFunc("DELETE /api/projects/{id}", projectH.HandleDelete)
	mux.HandleFunc("POST /api/projects/import", projectH.HandleImport)
	mux.HandleFunc("POST /api/projects/{id}/export", projectH.HandleExport)
	mux.HandleFunc("POST /api/projects/reset", projectH.HandleReset)

	// 3. Editor Endpoints
	mux.HandleFunc("GET /api/editor/state", editorH.HandleState)
	mux.HandleFunc("POST /api/editor/segments", editorH.HandleAddSegment)
	mux.HandleFunc("PATCH /api/editor/segments/{id}", editorH.HandleUpdateSegment)
	mux.HandleFunc("POST /api/editor/segments/delete", editorH.HandleDeleteSegments)
	mux.HandleFunc("POST /api/editor/segments/{id}/duplicate", editorH.HandleDuplicate)
	mux.HandleFunc("POST /api/editor/segments/{id}/move", editorH.HandleMove)
	mux.HandleFunc("POST /api/editor/segments/{id}/visibility", editorH.HandleToggleVisibility)
	mux.HandleFunc("POST /api/editor/segments/show-all", editorH.HandleShowAll)
	mux.HandleFunc("POST /api/editor/selection", editorH.HandleSelect)
	mux.HandleFunc("POST /api/editor/clipboard/copy", editorH.HandleCopy)
	mux.HandleFunc("POST /api/editor/clipboard/paste", editorH.HandlePaste)
	mux.HandleFunc("POST /api/editor/times", editorH.HandleTimes)
	mux.HandleFunc("POST /api/editor/aspect", editorH.HandleAspect)
	mux.HandleFunc("POST /api/editor/chain-mode", editorH.HandleChainMode)
	mux.HandleFunc("POST /api/editor/pages/{index}/remove", editorH.HandleRemovePage)
	mux.HandleFunc("POST /api/editor/pages/{index}/select", editorH.HandleSetCurrentPage)
	mux.HandleFunc("POST /api/editor/undo", editorH.HandleUndo)
	mux.HandleFunc("POST /api/editor/redo", editorH.HandleRedo)

	// 3b. Canvas Gestures
	if canvasH != nil {
		mux.HandleFunc("POST /api/canvas/gesture", canvasH.HandleGesture)
	}

	// 4. Playback Endpoints
	mux.HandleFunc("POST /api/playback/control", playbackH.HandleControl)
	mux.HandleFunc("GET /api/playback/status", playbackH.HandleStatus)
	mux.HandleFunc("GET /api/playback/qr", playbackH.HandleQR)
	if frameH != nil {
		mux.HandleFunc("GET /api/playback/frame", frameH.HandleFrame)
	}

	// 5. Asset Endpoints
	if assetH != nil {
		mux.HandleFunc("GET /api/assets/{id}", assetH.HandleGet)
	}

	// 6. Import Endpoints
	if importH != nil {
		mux.HandleFunc("POST /api/import/image", importH.HandleImage)
		mux.HandleFunc("POST /api/import/pdf", importH.HandlePDF)
		mux.HandleFunc("POST /api/import/audio", importH.HandleAudio)
	}

	// 7. Tick Stream
	if ticksH != nil {
		mux.HandleFunc("GET /ws/ticks", ticksH.Handle)
	}

	// 8. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
