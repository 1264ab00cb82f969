package library

import (
	"context"

	models "library/internal/domain/models/library"
)

// ViewerStateStore keeps per-session viewer state: display preferences and the
// playback position of each item
type ViewerStateStore interface {
	GetPreferences(ctx context.Context, sessionID string) (*models.ViewerPreferences, error)
	SavePreferences(ctx context.Context, sessionID string, prefs *models.ViewerPreferences) error

	// GetPlayback returns nil when no position was saved
	GetPlayback(ctx context.Context, sessionID, contentID string) (*models.PlaybackPosition, error)
	SavePlayback(ctx context.Context, sessionID string, pos *models.PlaybackPosition) error
}
