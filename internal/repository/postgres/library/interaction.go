package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
	"library/internal/repository/postgres"
)

// PostgresInteractionRepository implements the InteractionRepository interface
type PostgresInteractionRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(config *postgres.RepositoryConfig) libraryRepo.InteractionRepository {
	return &PostgresInteractionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Append adds an entry to the log
func (r *PostgresInteractionRepository) Append(ctx context.Context, entry *models.Interaction) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (content_id, interaction_type, last_page, duration, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Interactions)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		entry.ContentID,
		entry.InteractionType,
		entry.LastPage,
		entry.Duration,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	return nil
}

// ListByContent returns an item's interactions, newest first
func (r *PostgresInteractionRepository) ListByContent(ctx context.Context, contentID string) ([]models.Interaction, error) {
	query := fmt.Sprintf(`
		SELECT id, content_id, interaction_type, last_page, duration, user_agent, created_at
		FROM %s
		WHERE content_id = $1
		ORDER BY created_at DESC
	`, r.tables.Interactions)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, contentID)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	entries := []models.Interaction{}
	for rows.Next() {
		var e models.Interaction
		if err := rows.Scan(&e.ID, &e.ContentID, &e.InteractionType, &e.LastPage, &e.Duration, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	return entries, nil
}
