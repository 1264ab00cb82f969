package library

import "fmt"

// ContentType is the closed set of display types a content item can have.
type ContentType string

const (
	ContentTypePDF   ContentType = "pdf"
	ContentTypeVideo ContentType = "video"
	ContentTypeAudio ContentType = "audio"
	ContentTypeImage ContentType = "image"
	ContentTypeLink  ContentType = "link"
)

// ContentTypes lists every content type in display order.
var ContentTypes = []ContentType{
	ContentTypePDF,
	ContentTypeVideo,
	ContentTypeAudio,
	ContentTypeImage,
	ContentTypeLink,
}

// ParseContentType converts a raw string to a ContentType.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown content type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypePDF, ContentTypeVideo, ContentTypeAudio, ContentTypeImage, ContentTypeLink:
		return true
	}
	return false
}

// Paginated reports whether the type is viewed page by page.
func (t ContentType) Paginated() bool {
	return t == ContentTypePDF
}
