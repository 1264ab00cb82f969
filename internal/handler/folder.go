package handler

import (
	"log/slog"
	"net/http"

	libsvc "library/internal/domain/services/library"
	"library/internal/httputil"
)

// FolderHandler handles folder HTTP requests for both surfaces
type FolderHandler struct {
	folders libsvc.FolderService
	content libsvc.ContentService
	admin   libsvc.AdminWorkflow
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folders libsvc.FolderService, content libsvc.ContentService, admin libsvc.AdminWorkflow, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folders: folders,
		content: content,
		admin:   admin,
		logger:  logger,
	}
}

// ListFolders returns every folder with path, depth and item count
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.ListFolders(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folders)
}

// GetFolder resolves a folder by id or slug
// GET /api/folders/{idOrSlug}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathID(w, r, "idOrSlug", "Folder ID or slug")
	if !ok {
		return
	}

	folder, err := h.folders.GetFolder(r.Context(), ref)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ListFolderContent returns a folder's items in display order
// GET /api/folders/{idOrSlug}/content
func (h *FolderHandler) ListFolderContent(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathID(w, r, "idOrSlug", "Folder ID or slug")
	if !ok {
		return
	}

	items, err := h.content.ListByFolder(r.Context(), ref)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// CreateFolder submits the folder form
// POST /api/admin/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var form libsvc.FolderForm
	if err := httputil.ParseJSON(w, r, &form); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// Edit mode goes through PATCH
	form.ID = ""

	folder, err := h.admin.SaveFolder(r.Context(), &form)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// UpdateFolder applies a partial update
// PATCH /api/admin/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	var req libsvc.UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.folders.UpdateFolder(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with its sub-folders and content
// DELETE /api/admin/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	if err := h.folders.DeleteFolder(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
