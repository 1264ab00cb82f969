package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
	"library/internal/repository/postgres"
)

// contentColumns are the stored columns, in insert order
const contentColumns = `id, folder_id, title, type, url, external_url, thumbnail_url, description,
	file_size, display_order, view_count, last_page, last_viewed_at, custom_url, slug,
	created_at, updated_at`

// PostgresContentRepository is one physical content table. The public and private
// tables share a schema, so both are served by this type.
type PostgresContentRepository struct {
	pool       *pgxpool.Pool
	tables     *postgres.TableNames
	table      string
	visibility models.Visibility
	logger     *slog.Logger
}

// NewContentRepository creates the store for the table backing visibility v
func NewContentRepository(config *postgres.RepositoryConfig, v models.Visibility) libraryRepo.ContentStore {
	table := config.Tables.ContentPublic
	if v == models.VisibilityPrivate {
		table = config.Tables.ContentPrivate
	}
	return &PostgresContentRepository{
		pool:       config.Pool,
		tables:     config.Tables,
		table:      table,
		visibility: v,
		logger:     config.Logger,
	}
}

// Visibility is the routing flag this table serves
func (r *PostgresContentRepository) Visibility() models.Visibility {
	return r.visibility
}

// selectQuery selects content joined with the owning folder's table_name tag
func (r *PostgresContentRepository) selectQuery(where string) string {
	return fmt.Sprintf(`
		SELECT c.id, c.folder_id, c.title, c.type, c.url, c.external_url, c.thumbnail_url,
			c.description, c.file_size, c.display_order, c.view_count, c.last_page,
			c.last_viewed_at, c.custom_url, c.slug, f.table_name, c.created_at, c.updated_at
		FROM %s c
		JOIN %s f ON f.id = c.folder_id
		%s
	`, r.table, r.tables.Folders, where)
}

// Create creates a new content item
func (r *PostgresContentRepository) Create(ctx context.Context, content *models.Content) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, title, type, url, external_url, thumbnail_url, description,
			file_size, display_order, custom_url, slug)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, view_count, created_at, updated_at
	`, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		content.FolderID,
		content.Title,
		content.Type,
		content.URL,
		content.ExternalURL,
		content.ThumbnailURL,
		content.Description,
		content.FileSize,
		content.DisplayOrder,
		content.CustomURL,
		content.Slug,
	).Scan(&content.ID, &content.ViewCount, &content.CreatedAt, &content.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("content slug '%s' or display order %d is already in use", content.Slug, content.DisplayOrder),
				ResourceType: "content",
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return &domain.NotFoundError{ResourceType: "folder", ID: content.FolderID}
		}
		if verr := postgres.CheckViolation(err, "url"); verr != nil {
			return verr
		}
		return fmt.Errorf("create content: %w", err)
	}

	return nil
}

// GetByID retrieves a content item by ID
func (r *PostgresContentRepository) GetByID(ctx context.Context, id string) (*models.Content, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	content, err := scanContent(executor.QueryRow(ctx, r.selectQuery("WHERE c.id = $1"), id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{ResourceType: "content", ID: id}
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return content, nil
}

// Update writes the editable columns of content. display_order and counters are
// owned by their own operations and are left alone.
func (r *PostgresContentRepository) Update(ctx context.Context, content *models.Content) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, type = $2, url = $3, external_url = $4, thumbnail_url = $5,
			description = $6, file_size = $7, custom_url = $8, slug = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		content.Title,
		content.Type,
		content.URL,
		content.ExternalURL,
		content.ThumbnailURL,
		content.Description,
		content.FileSize,
		content.CustomURL,
		content.Slug,
		content.ID,
	).Scan(&content.UpdatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return &domain.NotFoundError{ResourceType: "content", ID: content.ID}
		}
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("content slug '%s' is already in use", content.Slug),
				ResourceType: "content",
				ResourceID:   content.ID,
			}
		}
		if verr := postgres.CheckViolation(err, "url"); verr != nil {
			return verr
		}
		return fmt.Errorf("update content: %w", err)
	}

	return nil
}

// Delete deletes a content item
func (r *PostgresContentRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{ResourceType: "content", ID: id}
	}
	return nil
}

// DeleteByFolder removes every item of a folder
func (r *PostgresContentRepository) DeleteByFolder(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE folder_id = $1`, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folderID)
	if err != nil {
		return 0, fmt.Errorf("delete folder content: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// ListByFolder returns a folder's items in display order
func (r *PostgresContentRepository) ListByFolder(ctx context.Context, folderID string) ([]models.Content, error) {
	return r.queryContent(ctx, r.selectQuery("WHERE c.folder_id = $1 ORDER BY c.display_order ASC"), folderID)
}

// MaxDisplayOrder returns the highest display_order in a folder
func (r *PostgresContentRepository) MaxDisplayOrder(ctx context.Context, folderID string) (int, bool, error) {
	query := fmt.Sprintf(`SELECT MAX(display_order) FROM %s WHERE folder_id = $1`, r.table)

	var max *int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, folderID).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("max display order: %w", err)
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// Neighbor returns the closest sibling before or after order
func (r *PostgresContentRepository) Neighbor(ctx context.Context, folderID string, order int, dir models.Direction) (*models.Content, error) {
	where := "WHERE c.folder_id = $1 AND c.display_order < $2 ORDER BY c.display_order DESC LIMIT 1"
	if dir == models.DirectionDown {
		where = "WHERE c.folder_id = $1 AND c.display_order > $2 ORDER BY c.display_order ASC LIMIT 1"
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	content, err := scanContent(executor.QueryRow(ctx, r.selectQuery(where), folderID, order))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get neighbor: %w", err)
	}
	return content, nil
}

// SwapOrder exchanges the display_order of a and b in a single statement. Each row is
// only touched while it still holds its expected order, so a concurrent reorder makes
// fewer than two rows match and the swap reports false. The (folder_id, display_order)
// constraint is deferrable, so the intermediate duplicate inside the statement is allowed.
func (r *PostgresContentRepository) SwapOrder(ctx context.Context, folderID string, a, b libraryRepo.OrderSlot) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET display_order = CASE id WHEN $1::uuid THEN $4::int ELSE $2::int END,
			updated_at = NOW()
		WHERE folder_id = $5
			AND ((id = $1::uuid AND display_order = $2::int) OR (id = $3::uuid AND display_order = $4::int))
	`, r.table)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, a.ID, a.Order, b.ID, b.Order, folderID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return false, nil
		}
		return false, fmt.Errorf("swap display order: %w", err)
	}

	return result.RowsAffected() == 2, nil
}

// Search matches query against title and description, most viewed first
func (r *PostgresContentRepository) Search(ctx context.Context, query string) ([]models.Content, error) {
	pattern := "%" + escapeLike(query) + "%"
	return r.queryContent(ctx, r.selectQuery(`
		WHERE c.title ILIKE $1 OR c.description ILIKE $1
		ORDER BY c.view_count DESC, c.created_at DESC
	`), pattern)
}

// ListByType returns items of one type, newest first
func (r *PostgresContentRepository) ListByType(ctx context.Context, t models.ContentType) ([]models.Content, error) {
	return r.queryContent(ctx, r.selectQuery("WHERE c.type = $1 ORDER BY c.created_at DESC"), t)
}

// Popular returns the most viewed items
func (r *PostgresContentRepository) Popular(ctx context.Context, limit int) ([]models.Content, error) {
	return r.queryContent(ctx, r.selectQuery("ORDER BY c.view_count DESC, c.created_at DESC LIMIT $1"), limit)
}

// Count returns the number of items in the table
func (r *PostgresContentRepository) Count(ctx context.Context) (int, error) {
	return r.scanInt(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table))
}

// CountByFolder returns the number of items in a folder
func (r *PostgresContentRepository) CountByFolder(ctx context.Context, folderID string) (int, error) {
	return r.scanInt(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE folder_id = $1`, r.table), folderID)
}

// SumViews returns the total view count of the table
func (r *PostgresContentRepository) SumViews(ctx context.Context) (int, error) {
	return r.scanInt(ctx, fmt.Sprintf(`SELECT COALESCE(SUM(view_count), 0)::int FROM %s`, r.table))
}

// SlugExists reports whether slug is used in this table by an item other than excludeID
func (r *PostgresContentRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND ($2 = '' OR id::text <> $2))
	`, r.table)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check content slug: %w", err)
	}
	return exists, nil
}

// IncrementViewCount bumps view_count and stamps last_viewed_at
func (r *PostgresContentRepository) IncrementViewCount(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET view_count = view_count + 1, last_viewed_at = NOW()
		WHERE id = $1
	`, r.table)
	return r.execOne(ctx, query, id)
}

// UpdateLastPage records the last page viewed
func (r *PostgresContentRepository) UpdateLastPage(ctx context.Context, id string, page int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET last_page = $2, last_viewed_at = NOW()
		WHERE id = $1
	`, r.table)
	return r.execOne(ctx, query, id, page)
}

// MoveFolderTo copies a folder's items into dst and deletes them here. Must run inside
// a transaction so a failure leaves both tables untouched.
func (r *PostgresContentRepository) MoveFolderTo(ctx context.Context, folderID string, dst libraryRepo.ContentStore) (int, error) {
	target, ok := dst.(*PostgresContentRepository)
	if !ok {
		return r.moveFolderGeneric(ctx, folderID, dst)
	}
	if target.table == r.table {
		return 0, nil
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	copyQuery := fmt.Sprintf(`
		INSERT INTO %s (%s)
		SELECT %s FROM %s WHERE folder_id = $1
	`, target.table, contentColumns, contentColumns, r.table)

	result, err := executor.Exec(ctx, copyQuery, folderID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return 0, &domain.ConflictError{
				Message:      "a content slug in this folder is already used in the destination table",
				ResourceType: "folder",
				ResourceID:   folderID,
			}
		}
		return 0, fmt.Errorf("copy folder content: %w", err)
	}

	if _, err := r.DeleteByFolder(ctx, folderID); err != nil {
		return 0, err
	}

	return int(result.RowsAffected()), nil
}

func (r *PostgresContentRepository) moveFolderGeneric(ctx context.Context, folderID string, dst libraryRepo.ContentStore) (int, error) {
	items, err := r.ListByFolder(ctx, folderID)
	if err != nil {
		return 0, err
	}
	for i := range items {
		if err := dst.Create(ctx, &items[i]); err != nil {
			return 0, err
		}
	}
	if _, err := r.DeleteByFolder(ctx, folderID); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (r *PostgresContentRepository) execOne(ctx context.Context, query string, id string, args ...any) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update content %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{ResourceType: "content", ID: id}
	}
	return nil
}

func (r *PostgresContentRepository) scanInt(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return n, nil
}

func (r *PostgresContentRepository) queryContent(ctx context.Context, query string, args ...any) ([]models.Content, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	items := []models.Content{}
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}

	return items, nil
}

func scanContent(row pgx.Row) (*models.Content, error) {
	var c models.Content
	err := row.Scan(
		&c.ID,
		&c.FolderID,
		&c.Title,
		&c.Type,
		&c.URL,
		&c.ExternalURL,
		&c.ThumbnailURL,
		&c.Description,
		&c.FileSize,
		&c.DisplayOrder,
		&c.ViewCount,
		&c.LastPage,
		&c.LastViewedAt,
		&c.CustomURL,
		&c.Slug,
		&c.TableName,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
