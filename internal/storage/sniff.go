package storage

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectContentType returns declared unless it is empty or generic, in which case the
// type is sniffed from the first bytes of the file.
func DetectContentType(declared string, head []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if len(head) == 0 {
		return "application/octet-stream"
	}

	detected := mimetype.Detect(head).String()
	if base, _, ok := strings.Cut(detected, ";"); ok {
		detected = strings.TrimSpace(base)
	}
	return detected
}
