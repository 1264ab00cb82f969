package library

import (
	"context"

	models "library/internal/domain/models/library"
)

// ViewerService backs the read-only library surface
type ViewerService interface {
	// ResolveEntry picks the initial view from the folder/content query parameters
	ResolveEntry(ctx context.Context, query EntryQuery) (*Entry, error)

	// Open records the view and tells the client how to present the item
	Open(ctx context.Context, req *OpenRequest) (*OpenResult, error)

	GetPreferences(ctx context.Context, sessionID string) (*models.ViewerPreferences, error)
	SavePreferences(ctx context.Context, sessionID string, prefs *models.ViewerPreferences) error
	SavePlayback(ctx context.Context, sessionID, contentID string, position int) error

	// InitialPage is where a PDF reopens for the session
	InitialPage(ctx context.Context, sessionID string, item *models.Content) int
}

// EntryQuery holds the viewer URL parameters
type EntryQuery struct {
	Folder  string `json:"folder"`  // id or slug
	Content string `json:"content"` // id
}

// EntryMode is one of the three initial viewer states
type EntryMode string

const (
	EntrySingleContent EntryMode = "content"
	EntryFolder        EntryMode = "folder"
	EntryAll           EntryMode = "all"
)

// Entry is the resolved initial view
type Entry struct {
	Mode     EntryMode        `json:"mode"`
	Title    string           `json:"title"`
	Folder   *models.Folder   `json:"folder,omitempty"`
	Folders  []models.Folder  `json:"folders"`
	Items    []models.Content `json:"items"`
	AutoOpen *models.Content  `json:"auto_open,omitempty"` // Set for single-content links
}

// OpenRequest identifies the item being opened and the viewer opening it
type OpenRequest struct {
	ContentID string
	SessionID string
	UserAgent string
}

// PresentationKind is how the client presents an opened item
type PresentationKind string

const (
	PresentEmbed    PresentationKind = "embed"
	PresentPDF      PresentationKind = "pdf"
	PresentNavigate PresentationKind = "navigate"
)

// OpenResult tells the client what to do with an opened item
type OpenResult struct {
	Content *models.Content  `json:"content"`
	Kind    PresentationKind `json:"kind"`
	Player  string           `json:"player,omitempty"` // video | audio | image for embeds
	URL     string           `json:"url"`

	// InitialPage is set for PDFs
	InitialPage int `json:"initial_page,omitempty"`

	// ReferencePrompt asks the client to offer the external reference in an overlay
	ReferencePrompt bool   `json:"reference_prompt"`
	ReferenceURL    string `json:"reference_url,omitempty"`
}
