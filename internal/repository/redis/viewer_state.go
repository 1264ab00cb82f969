package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
)

// stateTTL is how long an idle session's viewer state is kept
const stateTTL = 90 * 24 * time.Hour

// ViewerStateRepository stores per-session viewer state in Redis
type ViewerStateRepository struct {
	client *redis.Client
	logger *slog.Logger
}

// NewViewerStateRepository creates a Redis-backed viewer state store
func NewViewerStateRepository(client *redis.Client, logger *slog.Logger) libraryRepo.ViewerStateStore {
	return &ViewerStateRepository{client: client, logger: logger}
}

func preferencesKey(sessionID string) string {
	return fmt.Sprintf("viewer:%s:preferences", sessionID)
}

func playbackKey(sessionID, contentID string) string {
	return fmt.Sprintf("viewer:%s:playback_%s", sessionID, contentID)
}

// GetPreferences returns the saved preferences, or defaults when none are stored
func (r *ViewerStateRepository) GetPreferences(ctx context.Context, sessionID string) (*models.ViewerPreferences, error) {
	prefs := &models.ViewerPreferences{}
	found, err := r.get(ctx, preferencesKey(sessionID), prefs)
	if err != nil {
		return nil, err
	}
	if !found {
		return &models.ViewerPreferences{}, nil
	}
	return prefs, nil
}

// SavePreferences overwrites the session's preferences
func (r *ViewerStateRepository) SavePreferences(ctx context.Context, sessionID string, prefs *models.ViewerPreferences) error {
	return r.set(ctx, preferencesKey(sessionID), prefs)
}

// GetPlayback returns the saved position for contentID, or nil
func (r *ViewerStateRepository) GetPlayback(ctx context.Context, sessionID, contentID string) (*models.PlaybackPosition, error) {
	pos := &models.PlaybackPosition{}
	found, err := r.get(ctx, playbackKey(sessionID, contentID), pos)
	if err != nil || !found {
		return nil, err
	}
	return pos, nil
}

// SavePlayback overwrites the position for pos.ContentID
func (r *ViewerStateRepository) SavePlayback(ctx context.Context, sessionID string, pos *models.PlaybackPosition) error {
	return r.set(ctx, playbackKey(sessionID, pos.ContentID), pos)
}

func (r *ViewerStateRepository) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt entries are treated as missing and overwritten on the next save
		r.logger.Warn("discarding unreadable viewer state", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (r *ViewerStateRepository) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode viewer state: %w", err)
	}
	if err := r.client.Set(ctx, key, data, stateTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
