package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/Burhanali2211/SegiTelep-sub000/pkg/assets"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/editor"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/history"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/project"
	"github.com/Burhanali2211/SegiTelep-sub000/pkg/store"
)

// ProjectHandler handles project persistence endpoints.
type ProjectHandler struct {
	projects *project.Manager
	editor   *editor.Store
	history  *history.Manager
	assets   *assets.Store
	store    store.Store
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(pm *project.Manager, ed *editor.Store, hist *history.Manager, as *assets.Store, st store.Store) *ProjectHandler {
	return &ProjectHandler{
		projects: pm,
		editor:   ed,
		history:  hist,
		assets:   as,
		store:    st,
	}
}

// HandleList handles GET /api/projects
func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	infos, err := h.projects.List()
	if err != nil {
		slog.Error("Failed to list projects", "error", err)
		http.Error(w, "failed to list projects", http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.orderByRecency(r.Context(), infos))
}

// orderByRecency reorders the file listing by the sqlite index, which
// tracks last-opened times the files themselves do not carry. Projects
// the index does not know keep their file order, after the known ones.
func (h *ProjectHandler) orderByRecency(ctx context.Context, infos []project.Info) []project.Info {
	if h.store == nil || len(infos) < 2 {
		return infos
	}
	recs, err := h.store.ListRecentProjects(ctx, len(infos))
	if err != nil {
		slog.Debug("Failed to read project index, keeping file order", "error", err)
		return infos
	}
	rank := make(map[string]int, len(recs))
	for i, rec := range recs {
		rank[rec.ID] = i
	}
	sort.SliceStable(infos, func(i, j int) bool {
		ri, iok := rank[infos[i].ID]
		rj, jok := rank[infos[j].ID]
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return ri < rj
	})
	return infos
}

// HandleSave handles POST /api/projects. It saves the live editor state.
func (h *ProjectHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	p := h.editor.ExportProject()
	if err := h.projects.Save(p); err != nil {
		slog.Error("Failed to save project", "id", p.ID, "error", err)
		http.Error(w, "failed to save project", http.StatusInternalServerError)
		return
	}
	if h.store != nil {
		segCount := 0
		for _, page := range p.Pages {
			segCount += len(page.Segments)
		}
		rec := &store.ProjectRecord{
			ID:           p.ID,
			Name:         p.Name,
			PageCount:    len(p.Pages),
			SegmentCount: segCount,
			UpdatedAt:    time.UnixMilli(p.UpdatedAt),
		}
		if err := h.store.UpsertProjectRecord(r.Context(), rec); err != nil {
			slog.Error("Failed to update project index", "id", p.ID, "error", err)
		}
		if err := h.store.SetState(r.Context(), "last_project", p.ID); err != nil {
			slog.Debug("Failed to persist last project", "id", p.ID, "error", err)
		}
	}
	writeJSON(w, map[string]string{"status": "ok", "id": p.ID})
}

// HandleLoad handles GET /api/projects/{id} and loads it into the editor.
func (h *ProjectHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := h.projects.Load(id)
	if err != nil {
		slog.Warn("Failed to load project", "id", id, "error", err)
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	h.editor.LoadProject(p)
	h.history.Clear()
	if h.store != nil {
		if err := h.store.TouchProjectOpened(r.Context(), id); err != nil {
			slog.Debug("Failed to touch project index", "id", id, "error", err)
		}
		if err := h.store.SetState(r.Context(), "last_project", id); err != nil {
			slog.Debug("Failed to persist last project", "id", id, "error", err)
		}
	}
	writeJSON(w, p)
}

// HandleDelete handles DELETE /api/projects/{id}
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.projects.Delete(id); err != nil {
		slog.Error("Failed to delete project", "id", id, "error", err)
		http.Error(w, "failed to delete project", http.StatusInternalServerError)
		return
	}
	if h.store != nil {
		if err := h.store.DeleteProjectRecord(r.Context(), id); err != nil {
			slog.Debug("Failed to delete project index entry", "id", id, "error", err)
		}
		// A deleted project must not come back on next launch.
		if last, ok := h.store.GetState(r.Context(), "last_project"); ok && last == id {
			h.store.DeleteState(r.Context(), "last_project")
		}
	}
	// Assets referenced only by the deleted project are now orphans.
	if h.assets != nil {
		if used, err := h.projects.UsedAssetIDs(); err == nil {
			h.assets.CleanupOrphans(used)
		}
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// ProjectImportRequest points at a project JSON outside the projects dir.
type ProjectImportRequest struct {
	Path string `json:"path"`
}

// HandleImport handles POST /api/projects/import
func (h *ProjectHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var req ProjectImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.projects.Import(req.Path)
	if err != nil {
		slog.Warn("Project import failed", "path", req.Path, "error", err)
		http.Error(w, "import failed", http.StatusBadRequest)
		return
	}
	writeJSON(w, p)
}

// ProjectExportRequest names the output path for an export.
type ProjectExportRequest struct {
	Path string `json:"path"`
}

// HandleExport handles POST /api/projects/{id}/export
func (h *ProjectHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req ProjectExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.projects.Load(id)
	if err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	if err := h.projects.Export(p, req.Path); err != nil {
		slog.Error("Project export failed", "id", id, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// HandleReset handles POST /api/projects/reset, clearing the editor.
func (h *ProjectHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.editor.Reset()
	h.history.Clear()
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
