package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
)

// InteractionRepository is an in-memory interaction log
type InteractionRepository struct {
	db *DB
}

// NewInteractionRepository creates an interaction log over db
func NewInteractionRepository(db *DB) libraryRepo.InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Append(ctx context.Context, entry *models.Interaction) error {
	defer r.db.lockWrite(ctx)()

	entry.ID = uuid.NewString()
	entry.CreatedAt = r.db.now()
	r.db.interactions = append(r.db.interactions, *entry)
	return nil
}

func (r *InteractionRepository) ListByContent(ctx context.Context, contentID string) ([]models.Interaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	entries := []models.Interaction{}
	for _, e := range r.db.interactions {
		if e.ContentID == contentID {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}
