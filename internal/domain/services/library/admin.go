package library

import (
	"context"

	models "library/internal/domain/models/library"
)

// AdminWorkflow drives the admin forms: validate, upload attachments, persist, reset
type AdminWorkflow interface {
	// SaveContent creates (no ID) or updates (ID set) a content item from a form.
	// The form is never modified; on error the caller still holds what was submitted.
	SaveContent(ctx context.Context, form *ContentForm) (*SaveContentResult, error)

	// SaveFolder creates (no ID) or updates (ID set) a folder from a form
	SaveFolder(ctx context.Context, form *FolderForm) (*models.Folder, error)
}

// ContentForm is the state of the content form at submit time
type ContentForm struct {
	ID          string             `json:"id,omitempty"` // Set in edit mode
	FolderID    string             `json:"folder_id"`
	Title       string             `json:"title"`
	Type        models.ContentType `json:"type"`
	URL         string             `json:"url"`
	ExternalURL string             `json:"external_url"`
	Description string             `json:"description"`
	CustomURL   string             `json:"custom_url"`

	File      *UploadFile `json:"-"`
	Thumbnail *UploadFile `json:"-"`
}

// EditMode reports whether the form edits an existing item
func (f *ContentForm) EditMode() bool {
	return f.ID != ""
}

// SaveContentResult is the persisted item plus the form to show next
type SaveContentResult struct {
	Content *models.Content `json:"content"`
	Form    *ContentForm    `json:"form"` // Reset form
}

// FolderForm is the state of the folder form at submit time
type FolderForm struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TableName   string            `json:"table_name"`
	IsPublic    bool              `json:"is_public"`
	ParentID    string            `json:"parent_id"`
	FolderType  models.FolderType `json:"folder_type"`
	CustomURL   string            `json:"custom_url"`
}
