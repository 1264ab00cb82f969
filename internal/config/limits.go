package config

const (
	// MaxTitleLength is the maximum length for folder and content titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxTitleLength = 255

	// MaxDescriptionLength bounds free-text descriptions.
	MaxDescriptionLength = 5000

	// MaxCustomURLLength bounds the custom URL override for folders and content.
	MaxCustomURLLength = 255

	// MaxTableNameLength bounds the folder table_name tag.
	MaxTableNameLength = 63

	// DefaultMaxUploadBytes is the largest file accepted by the relay (100MB).
	DefaultMaxUploadBytes = 100 * 1024 * 1024

	// DefaultListLimit and MaxListLimit bound the relay /list endpoint.
	DefaultListLimit = 100
	MaxListLimit     = 1000

	// DefaultPopularLimit is the number of items returned by the popular content query.
	DefaultPopularLimit = 10

	// PDF viewer zoom bounds.
	MinZoom     = 0.5
	MaxZoom     = 3.0
	ZoomStep    = 0.25
	DefaultZoom = 1.5

	// MaxReorderAttempts is how many times a move-up/move-down swap is retried when a
	// concurrent writer changed the pair between read and update.
	MaxReorderAttempts = 3
)
