package library

import (
	"context"
	"io"
)

// UploadFile is a file attached to an admin form
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult describes an object stored by the relay
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"` // Object key, needed to delete it later
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// FileUploader sends files to object storage
type FileUploader interface {
	// UploadContent stores a content file under content/<category>
	UploadContent(ctx context.Context, file *UploadFile) (*UploadResult, error)

	// UploadThumbnail stores a thumbnail image under thumbnails/
	UploadThumbnail(ctx context.Context, file *UploadFile) (*UploadResult, error)

	Delete(ctx context.Context, filename string) error
}
