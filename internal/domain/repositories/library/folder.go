package library

import (
	"context"

	models "library/internal/domain/models/library"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a folder; ID and timestamps are filled from the database
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetBySlug retrieves a folder by its generated slug or its custom URL
	GetBySlug(ctx context.Context, slug string) (*models.Folder, error)

	// Update writes every mutable column of folder
	Update(ctx context.Context, folder *models.Folder) error

	// Delete deletes a folder row
	Delete(ctx context.Context, id string) error

	// List returns all folders, newest first
	List(ctx context.Context) ([]models.Folder, error)

	// ListChildren lists sub_root folders whose parent is parentID
	ListChildren(ctx context.Context, parentID string) ([]models.Folder, error)

	// SlugExists reports whether any folder other than excludeID uses slug
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// LockForUpdate takes a row lock on the folder for the rest of the transaction
	LockForUpdate(ctx context.Context, id string) error

	// Count returns the number of folders
	Count(ctx context.Context) (int, error)
}
