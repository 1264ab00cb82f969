package library

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	slugStrip     = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	slugSeparator = regexp.MustCompile(`[\s_-]+`)
)

// fallbackSlug is used when nothing survives slugification (e.g. a title of "!!!")
const fallbackSlug = "untitled"

// maxSlugSuffix is the highest numbered suffix tried before a random one is used
const maxSlugSuffix = 100

// Slugify lowercases title and reduces it to letters, digits and single underscores,
// with no leading or trailing underscore. "My Chats!!" becomes "my_chats".
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSeparator.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return fallbackSlug
	}
	return s
}

// tableNameFromTitle derives a table_name tag (lowercase letters and underscores) from
// a title, for folders created without one
func tableNameFromTitle(title string) string {
	s := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || r == '_' {
			return r
		}
		return -1
	}, Slugify(title))
	s = strings.Trim(s, "_")
	if s == "" {
		return "content"
	}
	return s
}

// slugTaken reports whether slug is already used in the scope being checked
type slugTaken func(ctx context.Context, slug string) (bool, error)

// uniqueSlug returns base, or base_2, base_3... whichever is free first
func uniqueSlug(ctx context.Context, base string, taken slugTaken) (string, error) {
	candidate := base
	for n := 1; n <= maxSlugSuffix; n++ {
		if n > 1 {
			candidate = fmt.Sprintf("%s_%d", base, n)
		}
		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
	// Every numbered suffix is used; a random one is unique in practice
	return fmt.Sprintf("%s_%s", base, uuid.NewString()[:8]), nil
}
