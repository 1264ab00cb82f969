package library

import (
	"context"

	models "library/internal/domain/models/library"
	"library/internal/httputil"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder validates the request, generates a slug and persists the folder
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder resolves a folder by id or slug, with depth, path and item count
	GetFolder(ctx context.Context, idOrSlug string) (*models.Folder, error)

	// ListFolders returns every folder, newest first
	ListFolders(ctx context.Context) ([]models.Folder, error)

	// UpdateFolder applies a partial update; a title change regenerates the slug
	UpdateFolder(ctx context.Context, id string, req *UpdateFolderRequest) (*models.Folder, error)

	// DeleteFolder removes a folder, its sub-folders and all their content
	DeleteFolder(ctx context.Context, id string) error

	// SuggestURL proposes a URL for a folder that has not been created yet
	SuggestURL(ctx context.Context, req *SuggestFolderURLRequest) (string, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TableName   string            `json:"table_name"`
	IsPublic    *bool             `json:"is_public,omitempty"` // Defaults to public
	ParentID    *string           `json:"parent_id,omitempty"`
	FolderType  models.FolderType `json:"folder_type"` // Defaults to root
	CustomURL   *string           `json:"custom_url,omitempty"`
}

// UpdateFolderRequest represents a partial folder update
type UpdateFolderRequest struct {
	Title       *string                 `json:"title,omitempty"`
	Description *string                 `json:"description,omitempty"`
	TableName   *string                 `json:"table_name,omitempty"`
	IsPublic    *bool                   `json:"is_public,omitempty"`
	FolderType  *models.FolderType      `json:"folder_type,omitempty"`
	ParentID    httputil.OptionalString `json:"parent_id"`  // null detaches from parent
	CustomURL   httputil.OptionalString `json:"custom_url"` // null clears the override
}

// SuggestFolderURLRequest carries the fields the URL suggestion depends on
type SuggestFolderURLRequest struct {
	Title      string            `json:"title"`
	FolderType models.FolderType `json:"folder_type"`
	ParentID   *string           `json:"parent_id,omitempty"`
}
