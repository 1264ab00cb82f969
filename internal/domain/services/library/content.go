package library

import (
	"context"

	models "library/internal/domain/models/library"
	"library/internal/httputil"
)

// ContentService handles content business logic. Every operation resolves the owning
// folder's table before touching storage.
type ContentService interface {
	CreateContent(ctx context.Context, req *CreateContentRequest) (*models.Content, error)
	GetContent(ctx context.Context, id string) (*models.Content, error)
	ListByFolder(ctx context.Context, folderIDOrSlug string) ([]models.Content, error)
	UpdateContent(ctx context.Context, id string, req *UpdateContentRequest) (*models.Content, error)

	// DeleteContent removes one item; sibling orders are not renumbered. folderID scopes
	// the lookup to the folder's table and may be empty.
	DeleteContent(ctx context.Context, id, folderID string) (*models.Content, error)

	// MoveContent swaps the item with its neighbour in the given direction. Moving past
	// either end of the folder is a no-op that returns the item unchanged.
	MoveContent(ctx context.Context, id, folderID string, dir models.Direction) (*models.Content, error)

	Search(ctx context.Context, query string) ([]models.Content, error)
	ListByType(ctx context.Context, t models.ContentType) ([]models.Content, error)
	Popular(ctx context.Context, limit int) ([]models.Content, error)
	ListAll(ctx context.Context) ([]models.Content, error)
	Stats(ctx context.Context) (*models.Stats, error)
	ContentStats(ctx context.Context, id string) (*models.ContentStats, error)
	Export(ctx context.Context) (*models.Export, error)

	// SuggestURL proposes a URL for new content in a folder
	SuggestURL(ctx context.Context, folderID, title string) (string, error)
}

// CreateContentRequest represents a content creation request
type CreateContentRequest struct {
	FolderID     string             `json:"folder_id"`
	Title        string             `json:"title"`
	Type         models.ContentType `json:"type"` // Defaults to pdf
	URL          *string            `json:"url,omitempty"`
	ExternalURL  *string            `json:"external_url,omitempty"`
	ThumbnailURL *string            `json:"thumbnail_url,omitempty"`
	Description  string             `json:"description"`
	FileSize     *int64             `json:"file_size,omitempty"`
	CustomURL    *string            `json:"custom_url,omitempty"`
}

// UpdateContentRequest represents a partial content update
type UpdateContentRequest struct {
	FolderID     string                  `json:"folder_id,omitempty"` // Scopes the lookup, never moves the item
	Title        *string                 `json:"title,omitempty"`
	Type         *models.ContentType     `json:"type,omitempty"`
	Description  *string                 `json:"description,omitempty"`
	FileSize     *int64                  `json:"file_size,omitempty"`
	URL          httputil.OptionalString `json:"url"`
	ExternalURL  httputil.OptionalString `json:"external_url"`
	ThumbnailURL httputil.OptionalString `json:"thumbnail_url"`
	CustomURL    httputil.OptionalString `json:"custom_url"`
}
