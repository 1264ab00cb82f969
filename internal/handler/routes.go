package handler

import (
	"net/http"
)

// API groups the handlers of the library server
type API struct {
	Folders *FolderHandler
	Content *ContentHandler
	Admin   *AdminHandler
	Viewer  *ViewerHandler
	PDF     *PDFHandler
	Health  *HealthHandler
}

// Register mounts every route on mux. requireAdmin wraps the admin routes; pass nil to
// leave them open.
func (a *API) Register(mux *http.ServeMux, requireAdmin func(http.Handler) http.Handler) {
	admin := func(h http.HandlerFunc) http.Handler {
		if requireAdmin == nil {
			return h
		}
		return requireAdmin(h)
	}

	mux.HandleFunc("GET /health", a.Health.HealthCheck)

	// Viewer
	mux.HandleFunc("GET /api/library", a.Viewer.Library)
	mux.HandleFunc("GET /api/folders", a.Folders.ListFolders)
	mux.HandleFunc("GET /api/folders/{idOrSlug}", a.Folders.GetFolder)
	mux.HandleFunc("GET /api/folders/{idOrSlug}/content", a.Folders.ListFolderContent)
	mux.HandleFunc("GET /api/content", a.Content.ListContent)
	mux.HandleFunc("GET /api/content/search", a.Content.SearchContent)
	mux.HandleFunc("GET /api/content/popular", a.Content.PopularContent)
	mux.HandleFunc("GET /api/content/{id}", a.Content.GetContent)
	mux.HandleFunc("POST /api/content/{id}/open", a.Viewer.Open)
	mux.HandleFunc("GET /api/content/{id}/pdf/page/{n}", a.PDF.Page)
	mux.HandleFunc("POST /api/content/{id}/pdf/session", a.PDF.OpenSession)
	mux.HandleFunc("DELETE /api/content/{id}/pdf/session", a.PDF.CloseSession)
	mux.HandleFunc("POST /api/content/{id}/pdf/session/nav", a.PDF.Navigate)
	mux.HandleFunc("GET /api/content/{id}/pdf/session/overlays", a.PDF.Overlays)
	mux.HandleFunc("GET /api/viewer/preferences", a.Viewer.GetPreferences)
	mux.HandleFunc("PUT /api/viewer/preferences", a.Viewer.SavePreferences)
	mux.HandleFunc("PUT /api/viewer/playback/{id}", a.Viewer.SavePlayback)

	// Admin
	mux.Handle("POST /api/admin/folders", admin(a.Folders.CreateFolder))
	mux.Handle("PATCH /api/admin/folders/{id}", admin(a.Folders.UpdateFolder))
	mux.Handle("DELETE /api/admin/folders/{id}", admin(a.Folders.DeleteFolder))
	mux.Handle("POST /api/admin/content", admin(a.Content.CreateContent))
	mux.Handle("PUT /api/admin/content/{id}", admin(a.Content.ReplaceContent))
	mux.Handle("PATCH /api/admin/content/{id}", admin(a.Content.UpdateContent))
	mux.Handle("DELETE /api/admin/content/{id}", admin(a.Content.DeleteContent))
	mux.Handle("POST /api/admin/content/{id}/move-up", admin(a.Content.MoveUp))
	mux.Handle("POST /api/admin/content/{id}/move-down", admin(a.Content.MoveDown))
	mux.Handle("GET /api/admin/content/{id}/stats", admin(a.Content.ContentStats))
	mux.Handle("GET /api/admin/stats", admin(a.Admin.Stats))
	mux.Handle("GET /api/admin/export", admin(a.Admin.Export))
	mux.Handle("GET /api/admin/suggest-url", admin(a.Admin.SuggestURL))
}

// Register mounts the relay routes on mux
func (h *RelayHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /upload", h.Upload)
	mux.HandleFunc("DELETE /delete", h.Delete)
	mux.HandleFunc("GET /list", h.List)
	mux.HandleFunc("GET /info/{filename...}", h.Info)
	mux.HandleFunc("GET /health", h.Health)
}
