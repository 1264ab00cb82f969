package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
	"library/internal/repository/postgres"
)

const folderColumns = `id, title, slug, custom_url, description, is_public, table_name,
	parent_id, folder_type, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) libraryRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (title, slug, custom_url, description, is_public, table_name, parent_id, folder_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.Title,
		folder.Slug,
		folder.CustomURL,
		folder.Description,
		folder.IsPublic,
		folder.TableName,
		folder.ParentID,
		folder.FolderType,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder slug '%s' is already in use", folder.Slug),
				ResourceType: "folder",
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return &domain.ValidationError{Field: "parent_id", Message: "parent folder does not exist"}
		}
		if verr := postgres.CheckViolation(err, "folder_type"); verr != nil {
			return verr
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{ResourceType: "folder", ID: id}
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetBySlug retrieves a folder by slug, falling back to its custom URL
func (r *PostgresFolderRepository) GetBySlug(ctx context.Context, slug string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE slug = $1 OR custom_url = $1
		ORDER BY (slug = $1) DESC
		LIMIT 1
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, slug))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{ResourceType: "folder", ID: slug}
		}
		return nil, fmt.Errorf("get folder by slug: %w", err)
	}

	return folder, nil
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, slug = $2, custom_url = $3, description = $4, is_public = $5,
			table_name = $6, parent_id = $7, folder_type = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.Title,
		folder.Slug,
		folder.CustomURL,
		folder.Description,
		folder.IsPublic,
		folder.TableName,
		folder.ParentID,
		folder.FolderType,
		folder.ID,
	).Scan(&folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return &domain.NotFoundError{ResourceType: "folder", ID: folder.ID}
		}
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder slug '%s' is already in use", folder.Slug),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			}
		}
		if verr := postgres.CheckViolation(err, "folder_type"); verr != nil {
			return verr
		}
		return fmt.Errorf("update folder: %w", err)
	}

	return nil
}

// Delete deletes a folder row. Content and sub-folders must already be gone.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("cannot delete folder with children: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{ResourceType: "folder", ID: id}
	}

	return nil
}

// List returns all folders, newest first
func (r *PostgresFolderRepository) List(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, folderColumns, r.tables.Folders)
	return r.queryFolders(ctx, query)
}

// ListChildren lists the sub-folders of parentID, oldest first
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_id = $1
		ORDER BY created_at ASC
	`, folderColumns, r.tables.Folders)
	return r.queryFolders(ctx, query, parentID)
}

// SlugExists reports whether a folder other than excludeID uses slug
func (r *PostgresFolderRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND ($2 = '' OR id::text <> $2))
	`, r.tables.Folders)

	var exists bool
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check folder slug: %w", err)
	}
	return exists, nil
}

// LockForUpdate locks the folder row until the surrounding transaction ends
func (r *PostgresFolderRepository) LockForUpdate(ctx context.Context, id string) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, r.tables.Folders)

	var locked string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&locked); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return &domain.NotFoundError{ResourceType: "folder", ID: id}
		}
		return fmt.Errorf("lock folder: %w", err)
	}
	return nil
}

// Count returns the number of folders
func (r *PostgresFolderRepository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Folders)

	var n int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}
	return n, nil
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var f models.Folder
	err := row.Scan(
		&f.ID,
		&f.Title,
		&f.Slug,
		&f.CustomURL,
		&f.Description,
		&f.IsPublic,
		&f.TableName,
		&f.ParentID,
		&f.FolderType,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
