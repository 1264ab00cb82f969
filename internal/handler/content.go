package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"library/internal/domain"
	models "library/internal/domain/models/library"
	libsvc "library/internal/domain/services/library"
	"library/internal/httputil"
)

// ContentHandler handles content HTTP requests for both surfaces
type ContentHandler struct {
	content        libsvc.ContentService
	admin          libsvc.AdminWorkflow
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewContentHandler creates a new content handler. maxUploadBytes bounds multipart
// form submissions.
func NewContentHandler(content libsvc.ContentService, admin libsvc.AdminWorkflow, maxUploadBytes int64, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		content:        content,
		admin:          admin,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// GetContent retrieves one item
// GET /api/content/{id}
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	item, err := h.content.GetContent(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, item)
}

// ListContent lists items of one type, or every item in folder order
// GET /api/content?type=pdf
func (h *ContentHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.Content
		err   error
	)
	if t := strings.TrimSpace(r.URL.Query().Get("type")); t != "" {
		items, err = h.content.ListByType(r.Context(), models.ContentType(t))
	} else {
		items, err = h.content.ListAll(r.Context())
	}
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// SearchContent matches title and description
// GET /api/content/search?q=
func (h *ContentHandler) SearchContent(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// PopularContent returns the most viewed items
// GET /api/content/popular?limit=
func (h *ContentHandler) PopularContent(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.content.Popular(r.Context(), limit)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// CreateContent submits the content form, as multipart (with file and thumbnail
// parts) or as JSON
// POST /api/admin/content
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	form, cleanup, err := h.parseForm(w, r)
	if err != nil {
		handleError(w, err)
		return
	}
	defer cleanup()
	// Edit mode goes through PATCH
	form.ID = ""

	result, err := h.admin.SaveContent(r.Context(), form)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// ReplaceContent resubmits the content form for an existing item, optionally with a
// new file or thumbnail
// PUT /api/admin/content/{id}
func (h *ContentHandler) ReplaceContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	form, cleanup, err := h.parseForm(w, r)
	if err != nil {
		handleError(w, err)
		return
	}
	defer cleanup()
	form.ID = id

	result, err := h.admin.SaveContent(r.Context(), form)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// UpdateContent applies a partial update
// PATCH /api/admin/content/{id}
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	var req libsvc.UpdateContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.content.UpdateContent(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, item)
}

// DeleteContent removes one item
// DELETE /api/admin/content/{id}?folder_id=
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	if _, err := h.content.DeleteContent(r.Context(), id, r.URL.Query().Get("folder_id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveUp swaps the item with its predecessor
// POST /api/admin/content/{id}/move-up?folder_id=
func (h *ContentHandler) MoveUp(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, models.DirectionUp)
}

// MoveDown swaps the item with its successor
// POST /api/admin/content/{id}/move-down?folder_id=
func (h *ContentHandler) MoveDown(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, models.DirectionDown)
}

func (h *ContentHandler) move(w http.ResponseWriter, r *http.Request, dir models.Direction) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	item, err := h.content.MoveContent(r.Context(), id, r.URL.Query().Get("folder_id"), dir)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, item)
}

// ContentStats returns an item's analytics
// GET /api/admin/content/{id}/stats
func (h *ContentHandler) ContentStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Content ID")
	if !ok {
		return
	}

	stats, err := h.content.ContentStats(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}

// parseForm reads a ContentForm from multipart or JSON. The returned cleanup releases
// temporary files of the multipart form.
func (h *ContentHandler) parseForm(w http.ResponseWriter, r *http.Request) (*libsvc.ContentForm, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var form libsvc.ContentForm
		if err := httputil.ParseJSON(w, r, &form); err != nil {
			return nil, noop, domain.NewValidationError("Invalid request body")
		}
		return &form, noop, nil
	}

	// Room for the text fields next to the largest allowed file and thumbnail
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxUploadBytes+httputil.MaxJSONBodyBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, noop, err
		}
		return nil, noop, domain.NewValidationError("Invalid multipart form")
	}

	form := &libsvc.ContentForm{
		FolderID:    r.FormValue("folder_id"),
		Title:       r.FormValue("title"),
		Type:        models.ContentType(r.FormValue("type")),
		URL:         r.FormValue("url"),
		ExternalURL: r.FormValue("external_url"),
		Description: r.FormValue("description"),
		CustomURL:   r.FormValue("custom_url"),
	}

	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
		_ = r.MultipartForm.RemoveAll()
	}

	for _, part := range []struct {
		name string
		dst  **libsvc.UploadFile
	}{
		{"file", &form.File},
		{"thumbnail", &form.Thumbnail},
	} {
		f, header, err := r.FormFile(part.name)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			cleanup()
			return nil, noop, &domain.ValidationError{Field: part.name, Message: "Invalid " + part.name + " upload"}
		}
		closers = append(closers, f.Close)
		*part.dst = &libsvc.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        f,
		}
	}

	return form, cleanup, nil
}
