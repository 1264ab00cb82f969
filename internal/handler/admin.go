package handler

import (
	"log/slog"
	"net/http"
	"strings"

	models "library/internal/domain/models/library"
	libsvc "library/internal/domain/services/library"
	"library/internal/httputil"
)

// AdminHandler serves the admin dashboard helpers
type AdminHandler struct {
	folders libsvc.FolderService
	content libsvc.ContentService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(folders libsvc.FolderService, content libsvc.ContentService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		folders: folders,
		content: content,
		logger:  logger,
	}
}

// Stats returns library totals
// GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.content.Stats(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}

// Export returns every folder and item as one JSON document
// GET /api/admin/export
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	export, err := h.content.Export(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Disposition",
		`attachment; filename="library-export-`+export.ExportedAt.Format("2006-01-02")+`.json"`)
	httputil.RespondJSON(w, http.StatusOK, export)
}

// SuggestURL proposes a URL for a folder or content item that is being created
// GET /api/admin/suggest-url?kind=folder&title=&folder_type=&parent_id=
// GET /api/admin/suggest-url?kind=content&title=&folder_id=
func (h *AdminHandler) SuggestURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		suggestion string
		err        error
	)
	switch kind := q.Get("kind"); kind {
	case "folder", "":
		req := &libsvc.SuggestFolderURLRequest{
			Title:      q.Get("title"),
			FolderType: models.FolderType(q.Get("folder_type")),
		}
		if parentID := strings.TrimSpace(q.Get("parent_id")); parentID != "" {
			req.ParentID = &parentID
		}
		suggestion, err = h.folders.SuggestURL(r.Context(), req)
	case "content":
		suggestion, err = h.content.SuggestURL(r.Context(), q.Get("folder_id"), q.Get("title"))
	default:
		httputil.RespondError(w, http.StatusBadRequest, "kind must be folder or content")
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"url": suggestion})
}
