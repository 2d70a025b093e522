package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/assets"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/importer"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/model"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/waveform"
)

// Uploads are page images or audio tracks; 256 MB covers both with room
// to spare.
const maxUploadBytes = 256 << 20

// ImportHandler handles media import endpoints.
type ImportHandler struct {
	importer *importer.Importer
	editor   *editor.Store
	assets   *assets.Store
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(im *importer.Importer, ed *editor.Store, as *assets.Store) *ImportHandler {
	return &ImportHandler{importer: im, editor: ed, assets: as}
}

// ImportPathRequest imports from a local filesystem path (native shell
// file pickers hand the app a path, not bytes).
type ImportPathRequest struct {
	Path string `json:"path"`
	DPI  int    `json:"dpi,omitempty"`
}

// HandleImage handles POST /api/import/image. Accepts either a JSON path
// payload or a multipart upload with a "file" part.
func (h *ImportHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if isMultipart(r) {
		data, name, err := readUpload(r)
		if err != nil {
			http.Error(w, "invalid upload", http.StatusBadRequest)
			return
		}
		if err := h.importer.ImportImageBytes(r.Context(), data, name); err != nil {
			slog.Warn("Image import failed", "name", name, "error", err)
			http.Error(w, "import failed", http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
		return
	}

	var req ImportPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.importer.ImportImage(r.Context(), req.Path); err != nil {
		slog.Warn("Image import failed", "path", req.Path, "error", err)
		http.Error(w, "import failed", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandlePDF handles POST /api/import/pdf
func (h *ImportHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	var req ImportPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.importer.ImportPDF(r.Context(), req.Path, req.DPI); err != nil {
		slog.Warn("PDF import failed", "path", req.Path, "error", err)
		http.Error(w, "import failed", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// AudioImportResponse returns the attached file plus its waveform peaks.
type AudioImportResponse struct {
	AudioFile *model.AudioFile `json:"audioFile"`
	Peaks     *waveform.Peaks  `json:"peaks,omitempty"`
}

// HandleAudio handles POST /api/import/audio. The file is committed to
// the asset store, attached to the project, and its waveform extracted.
// A failed waveform degrades to no waveform, not a failed import.
func (h *ImportHandler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	var req ImportPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	peaks, err := waveform.Extract(r.Context(), req.Path, 1000)
	if err != nil {
		slog.Warn("Waveform extraction failed", "path", req.Path, "error", err)
		peaks = nil
	}

	af := &model.AudioFile{
		Name:      req.Path,
		SourceRef: req.Path,
	}
	if peaks != nil {
		af.Duration = peaks.Duration.Seconds()
	}
	if data, err := readFileLimited(req.Path); err == nil {
		if id, err := h.assets.SaveAsset(r.Context(), data, req.Path); err == nil {
			af.ID = id
		}
	}
	h.editor.SetAudioFile(af)

	writeJSON(w, AudioImportResponse{AudioFile: af, Peaks: peaks})
}

func readFileLimited(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxUploadBytes {
		return nil, os.ErrInvalid
	}
	return os.ReadFile(filepath.Clean(path))
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= 19 && ct[:19] == "multipart/form-data"
}

func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}
