package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"library/internal/config"
	models "library/internal/domain/models/library"
	libsvc "library/internal/domain/services/library"
	"library/internal/httputil"
	"library/internal/service/pdfview"
)

// PageRenderer builds the overlay view of one PDF page
type PageRenderer interface {
	PageView(ctx context.Context, item *models.Content, n int, scale float64) (*pdfview.View, error)
}

// PDFHandler serves link overlays for the PDF viewer. Page is stateless; the session
// routes keep page, zoom and overlay generation per viewer in the navigator.
type PDFHandler struct {
	content  libsvc.ContentService
	viewer   libsvc.ViewerService
	renderer PageRenderer
	sessions *pdfview.Navigator
	logger   *slog.Logger
}

// NewPDFHandler creates a new PDF handler
func NewPDFHandler(
	content libsvc.ContentService,
	viewer libsvc.ViewerService,
	renderer PageRenderer,
	sessions *pdfview.Navigator,
	logger *slog.Logger,
) *PDFHandler {
	return &PDFHandler{
		content:  content,
		viewer:   viewer,
		renderer: renderer,
		sessions: sessions,
		logger:   logger,
	}
}

// Page returns page n of a PDF item with its link overlays at the requested scale
// GET /api/content/{id}/pdf/page/{n}?scale=1.5
func (h *PDFHandler) Page(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "page must be a positive integer",
			map[string]interface{}{"field": "page"})
		return
	}

	scale, err := httputil.QueryFloat(r, "scale", config.DefaultZoom)
	if err != nil {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(),
			map[string]interface{}{"field": "scale"})
		return
	}

	item, err := h.content.GetContent(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	view, err := h.renderer.PageView(r.Context(), item, n, scale)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// OpenSession opens the viewer's PDF session at its remembered page
// POST /api/content/{id}/pdf/session?scale=1.5
func (h *PDFHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}
	viewerID := httputil.ViewerSession(r)

	scale, err := httputil.QueryFloat(r, "scale", config.DefaultZoom)
	if err != nil {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(),
			map[string]interface{}{"field": "scale"})
		return
	}

	item, err := h.content.GetContent(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	page := h.viewer.InitialPage(r.Context(), viewerID, item)
	session, err := h.sessions.Open(r.Context(), viewerID, item, page, h.recordPage(viewerID, item.ID))
	if err != nil {
		handleError(w, err)
		return
	}

	view := session.View()
	if scale != view.Scale {
		if view, err = session.SetScale(scale); err != nil {
			handleError(w, err)
			return
		}
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// Navigate applies one navigation action to the viewer's open session
// POST /api/content/{id}/pdf/session/nav
func (h *PDFHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	var action pdfview.Action
	if err := httputil.ParseJSON(w, r, &action); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.sessions.Session(httputil.ViewerSession(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	view, err := session.Apply(r.Context(), action)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

type overlaysResponse struct {
	Generation uint64            `json:"generation"`
	Overlays   []pdfview.Overlay `json:"overlays"`
}

// Overlays returns the overlay set of the session's current page and scale. A request
// for an older generation is answered 409 so stale overlays are never drawn.
// GET /api/content/{id}/pdf/session/overlays?generation=3
func (h *PDFHandler) Overlays(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	generation, err := strconv.ParseUint(r.URL.Query().Get("generation"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "generation must be a non-negative integer",
			map[string]interface{}{"field": "generation"})
		return
	}

	session, err := h.sessions.Session(httputil.ViewerSession(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	overlays, err := session.Overlays(generation)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, overlaysResponse{Generation: generation, Overlays: overlays})
}

// CloseSession forgets the viewer's session
// DELETE /api/content/{id}/pdf/session
func (h *PDFHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}
	h.sessions.Close(httputil.ViewerSession(r), id)
	w.WriteHeader(http.StatusNoContent)
}

// recordPage saves the playback position whenever a session changes page
func (h *PDFHandler) recordPage(viewerID, contentID string) pdfview.PageChangeFunc {
	return func(ctx context.Context, page int) {
		if err := h.viewer.SavePlayback(ctx, viewerID, contentID, page); err != nil {
			h.logger.Warn("failed to save pdf playback position",
				"content_id", contentID,
				"page", page,
				"error", err,
			)
		}
	}
}
