package handler

import (
	"log/slog"
	"net/http"

	models "library/internal/domain/models/library"
	libsvc "library/internal/domain/services/library"
	"library/internal/httputil"
)

// ViewerHandler serves the read-only library surface
type ViewerHandler struct {
	viewer libsvc.ViewerService
	logger *slog.Logger
}

// NewViewerHandler creates a new viewer handler
func NewViewerHandler(viewer libsvc.ViewerService, logger *slog.Logger) *ViewerHandler {
	return &ViewerHandler{
		viewer: viewer,
		logger: logger,
	}
}

// Library resolves the initial view from the shared link parameters
// GET /api/library?folder=&content=
func (h *ViewerHandler) Library(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entry, err := h.viewer.ResolveEntry(r.Context(), libsvc.EntryQuery{
		Folder:  q.Get("folder"),
		Content: q.Get("content"),
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, entry)
}

// Open records a view and returns how to present the item
// POST /api/content/{id}/open
func (h *ViewerHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	result, err := h.viewer.Open(r.Context(), &libsvc.OpenRequest{
		ContentID: id,
		SessionID: httputil.ViewerSession(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// GetPreferences returns the session's viewer preferences
// GET /api/viewer/preferences
func (h *ViewerHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.viewer.GetPreferences(r.Context(), httputil.ViewerSession(r))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, prefs)
}

// SavePreferences replaces the session's viewer preferences
// PUT /api/viewer/preferences
func (h *ViewerHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.ViewerPreferences
	if err := httputil.ParseJSON(w, r, &prefs); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.viewer.SavePreferences(r.Context(), httputil.ViewerSession(r), &prefs); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, prefs)
}

type playbackRequest struct {
	Position *int `json:"position"`
}

// SavePlayback remembers where the viewer stopped in an item
// PUT /api/viewer/playback/{id}
func (h *ViewerHandler) SavePlayback(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	var req playbackRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Position == nil {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "position is required",
			map[string]interface{}{"field": "position"})
		return
	}

	if err := h.viewer.SavePlayback(r.Context(), httputil.ViewerSession(r), id, *req.Position); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
