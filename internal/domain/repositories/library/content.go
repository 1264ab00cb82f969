package library

import (
	"context"

	models "library/internal/domain/models/library"
)

// ContentStore is one physical content table. Every read and write of content goes
// through the store selected by a ContentRouter.
type ContentStore interface {
	// Visibility is the routing flag this store serves
	Visibility() models.Visibility

	Create(ctx context.Context, content *models.Content) error
	GetByID(ctx context.Context, id string) (*models.Content, error)
	Update(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id string) error

	// DeleteByFolder removes every item of a folder and returns how many were removed
	DeleteByFolder(ctx context.Context, folderID string) (int, error)

	// ListByFolder returns a folder's items ordered by display_order ascending
	ListByFolder(ctx context.Context, folderID string) ([]models.Content, error)

	// MaxDisplayOrder returns the highest display_order in the folder, ok=false when empty
	MaxDisplayOrder(ctx context.Context, folderID string) (max int, ok bool, err error)

	// Neighbor returns the closest sibling above (DirectionUp) or below (DirectionDown)
	// order, or nil when the item is at that boundary
	Neighbor(ctx context.Context, folderID string, order int, dir models.Direction) (*models.Content, error)

	// SwapOrder exchanges display_order of a and b in one statement, conditional on both
	// rows still holding the given orders. It reports whether the swap happened.
	SwapOrder(ctx context.Context, folderID string, a, b OrderSlot) (bool, error)

	// Search matches query case-insensitively against title or description
	Search(ctx context.Context, query string) ([]models.Content, error)

	ListByType(ctx context.Context, t models.ContentType) ([]models.Content, error)
	Popular(ctx context.Context, limit int) ([]models.Content, error)
	Count(ctx context.Context) (int, error)
	CountByFolder(ctx context.Context, folderID string) (int, error)
	SumViews(ctx context.Context) (int, error)

	// SlugExists reports whether slug is taken in this table by an item other than excludeID
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	IncrementViewCount(ctx context.Context, id string) error
	UpdateLastPage(ctx context.Context, id string, page int) error

	// MoveFolderTo copies a folder's items into dst and removes them here; used when a
	// folder changes visibility
	MoveFolderTo(ctx context.Context, folderID string, dst ContentStore) (int, error)
}

// OrderSlot pins a row to the display_order it is expected to hold.
type OrderSlot struct {
	ID    string
	Order int
}

// ContentRouter selects the physical content table for a folder.
type ContentRouter interface {
	// ForFolder returns the store backing folder's content
	ForFolder(folder *models.Folder) ContentStore

	// ForVisibility returns the store for a routing flag
	ForVisibility(v models.Visibility) ContentStore

	// All returns every store, public first
	All() []ContentStore

	// Locate finds an item by id when its folder is unknown, searching public then private
	Locate(ctx context.Context, contentID string) (ContentStore, *models.Content, error)
}
