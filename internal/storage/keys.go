package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Upload defaults when the form omits them
const (
	DefaultFolder = "uploads"
	DefaultType   = "content"
)

// ObjectKey names an uploaded object: <folder>/<type>-<unixMillis>-<nonce>.<ext>.
// The extension comes from the original filename, "bin" when it has none.
func ObjectKey(folder, kind, filename string, now time.Time) string {
	return objectKey(folder, kind, filename, now, uuid.NewString()[:8])
}

func objectKey(folder, kind, filename string, now time.Time, nonce string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = DefaultFolder
	}
	if kind == "" {
		kind = DefaultType
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		ext = "bin"
	}

	return fmt.Sprintf("%s/%s-%d-%s.%s", folder, kind, now.UnixMilli(), nonce, ext)
}
