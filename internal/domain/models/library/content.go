package library

import (
	"time"
)

type Content struct {
	ID           string      `json:"id" db:"id"`
	FolderID     string      `json:"folder_id" db:"folder_id"`
	Title        string      `json:"title" db:"title"`
	Type         ContentType `json:"type" db:"type"`
	URL          *string     `json:"url" db:"url"`
	ExternalURL  *string     `json:"external_url" db:"external_url"`
	ThumbnailURL *string     `json:"thumbnail_url" db:"thumbnail_url"`
	Description  string      `json:"description" db:"description"`
	FileSize     *int64      `json:"file_size" db:"file_size"`
	DisplayOrder int         `json:"display_order" db:"display_order"`
	ViewCount    int         `json:"view_count" db:"view_count"`
	LastPage     *int        `json:"last_page" db:"last_page"`
	LastViewedAt *time.Time  `json:"last_viewed_at" db:"last_viewed_at"`
	CustomURL    *string     `json:"custom_url" db:"custom_url"`
	Slug         string      `json:"slug" db:"slug"`
	TableName    string      `json:"table_name" db:"table_name"` // Owning folder's table_name tag
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// HasURL reports whether a stored file URL is set.
func (c *Content) HasURL() bool {
	return c.URL != nil && *c.URL != ""
}

// HasExternalURL reports whether an external reference URL is set.
func (c *Content) HasExternalURL() bool {
	return c.ExternalURL != nil && *c.ExternalURL != ""
}

// HasLocation reports whether the item points anywhere. Every persisted item must.
func (c *Content) HasLocation() bool {
	return c.HasURL() || c.HasExternalURL()
}

// DisplayURL is the custom URL override when present, the slug otherwise.
func (c *Content) DisplayURL() string {
	if c.CustomURL != nil && *c.CustomURL != "" {
		return *c.CustomURL
	}
	return c.Slug
}

// Direction is the way an item moves in its folder's order.
type Direction int

const (
	DirectionUp Direction = iota
	DirectionDown
)

func (d Direction) String() string {
	if d == DirectionUp {
		return "up"
	}
	return "down"
}
