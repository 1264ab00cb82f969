package library

import (
	"time"
)

// FolderType controls nesting: root folders sit at the top level, sub_root folders
// hang off exactly one root folder.
type FolderType string

const (
	FolderTypeRoot    FolderType = "root"
	FolderTypeSubRoot FolderType = "sub_root"
)

// Valid reports whether t is a known folder type.
func (t FolderType) Valid() bool {
	return t == FolderTypeRoot || t == FolderTypeSubRoot
}

// Visibility selects which physical content table backs a folder.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type Folder struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	CustomURL   *string    `json:"custom_url" db:"custom_url"`
	Description string     `json:"description" db:"description"`
	IsPublic    bool       `json:"is_public" db:"is_public"`
	TableName   string     `json:"table_name" db:"table_name"`
	ParentID    *string    `json:"parent_id" db:"parent_id"` // NULL = root level
	FolderType  FolderType `json:"folder_type" db:"folder_type"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// Computed, not stored
	Depth     int    `json:"depth"`
	Path      string `json:"path,omitempty"`
	ItemCount int    `json:"item_count"`
}

// Visibility returns the folder's routing flag as a Visibility.
func (f *Folder) Visibility() Visibility {
	if f.IsPublic {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// DisplayURL is the custom URL override when present, the slug otherwise.
func (f *Folder) DisplayURL() string {
	if f.CustomURL != nil && *f.CustomURL != "" {
		return *f.CustomURL
	}
	return f.Slug
}

// ComputeLocation fills Depth and Path from the folder's parent (nil for root folders).
func (f *Folder) ComputeLocation(parent *Folder) {
	if parent == nil {
		f.Depth = 0
		f.Path = f.Slug
		return
	}
	f.Depth = parent.Depth + 1
	f.Path = parent.Slug + "/" + f.Slug
}
