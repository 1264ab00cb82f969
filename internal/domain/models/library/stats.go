package library

import "time"

// Stats summarises the whole library.
type Stats struct {
	TotalFolders int `json:"total_folders"`
	TotalContent int `json:"total_content"`
	TotalViews   int `json:"total_views"`
}

// ContentStats is the analytics view of a single item.
type ContentStats struct {
	Content      *Content      `json:"content"`
	TotalViews   int           `json:"total_views"`
	LastViewed   *time.Time    `json:"last_viewed"`
	Interactions []Interaction `json:"interactions"`
}

// Export is a full backup of folders and content.
type Export struct {
	Folders    []Folder  `json:"folders"`
	Content    []Content `json:"content"`
	ExportedAt time.Time `json:"exported_at"`
}
