package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// AllowedTypes maps an upload category (pdf, video, image, audio) to the MIME types
// accepted for it.
type AllowedTypes map[string][]string

// DefaultAllowedTypes mirrors the types the library has always accepted.
func DefaultAllowedTypes() AllowedTypes {
	return AllowedTypes{
		"pdf":   {"application/pdf"},
		"video": {"video/mp4", "video/webm", "video/ogg"},
		"image": {"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"},
		"audio": {"audio/mpeg", "audio/wav", "audio/ogg"},
	}
}

type storageTypesFile struct {
	AllowedTypes AllowedTypes `yaml:"allowed_types"`
}

// LoadAllowedTypes returns the defaults, or the contents of path when it is set.
//
// File format:
//
//	allowed_types:
//	  pdf: [application/pdf]
//	  video: [video/mp4]
func LoadAllowedTypes(path string) (AllowedTypes, error) {
	if path == "" {
		return DefaultAllowedTypes(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read storage types file: %w", err)
	}

	var f storageTypesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse storage types file: %w", err)
	}
	if len(f.AllowedTypes) == 0 {
		return nil, fmt.Errorf("storage types file %s defines no allowed_types", path)
	}

	return f.AllowedTypes, nil
}

// Category returns the category a MIME type belongs to, or "" when it is not allowed.
// Categories are checked in name order so the result is stable.
func (a AllowedTypes) Category(mimeType string) string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, m := range a[name] {
			if m == mimeType {
				return name
			}
		}
	}
	return ""
}
