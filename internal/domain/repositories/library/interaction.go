package library

import (
	"context"

	models "library/internal/domain/models/library"
)

// InteractionRepository is the append-only interaction log
type InteractionRepository interface {
	Append(ctx context.Context, entry *models.Interaction) error
	ListByContent(ctx context.Context, contentID string) ([]models.Interaction, error)
}
