// Package memory holds in-process implementations of repository interfaces, used when
// no external store is configured and in tests.
package memory

import (
	"context"
	"sync"

	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
)

// ViewerStateRepository keeps viewer state in process memory. State is lost on restart.
type ViewerStateRepository struct {
	mu       sync.RWMutex
	prefs    map[string]models.ViewerPreferences
	playback map[string]models.PlaybackPosition
}

// NewViewerStateRepository creates an empty in-memory viewer state store
func NewViewerStateRepository() libraryRepo.ViewerStateStore {
	return &ViewerStateRepository{
		prefs:    make(map[string]models.ViewerPreferences),
		playback: make(map[string]models.PlaybackPosition),
	}
}

func (r *ViewerStateRepository) GetPreferences(ctx context.Context, sessionID string) (*models.ViewerPreferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.prefs[sessionID]
	return &p, nil
}

func (r *ViewerStateRepository) SavePreferences(ctx context.Context, sessionID string, prefs *models.ViewerPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[sessionID] = *prefs
	return nil
}

func (r *ViewerStateRepository) GetPlayback(ctx context.Context, sessionID, contentID string) (*models.PlaybackPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pos, ok := r.playback[sessionID+"/playback_"+contentID]
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

func (r *ViewerStateRepository) SavePlayback(ctx context.Context, sessionID string, pos *models.PlaybackPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playback[sessionID+"/playback_"+pos.ContentID] = *pos
	return nil
}
