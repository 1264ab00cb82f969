package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
)

// FolderRepository implements FolderRepository over a DB
type FolderRepository struct {
	db *DB
}

// NewFolderRepository creates a folder repository over db
func NewFolderRepository(db *DB) libraryRepo.FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	defer r.db.lockWrite(ctx)()

	if r.slugTaken(folder.Slug, "") {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder slug '%s' is already in use", folder.Slug),
			ResourceType: "folder",
		}
	}
	if folder.ParentID != nil {
		if _, ok := r.db.folders[*folder.ParentID]; !ok {
			return &domain.ValidationError{Field: "parent_id", Message: "parent folder does not exist"}
		}
	}

	now := r.db.now()
	folder.ID = uuid.NewString()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	r.db.folders[folder.ID] = stored(*folder)
	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	f, ok := r.db.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "folder", ID: id}
	}
	return &f, nil
}

func (r *FolderRepository) GetBySlug(ctx context.Context, slug string) (*models.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var byURL *models.Folder
	for _, f := range r.db.folders {
		if f.Slug == slug {
			return &f, nil
		}
		if f.CustomURL != nil && *f.CustomURL == slug && byURL == nil {
			match := f
			byURL = &match
		}
	}
	if byURL != nil {
		return byURL, nil
	}
	return nil, &domain.NotFoundError{ResourceType: "folder", ID: slug}
}

func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	defer r.db.lockWrite(ctx)()

	existing, ok := r.db.folders[folder.ID]
	if !ok {
		return &domain.NotFoundError{ResourceType: "folder", ID: folder.ID}
	}
	if r.slugTaken(folder.Slug, folder.ID) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder slug '%s' is already in use", folder.Slug),
			ResourceType: "folder",
			ResourceID:   folder.ID,
		}
	}

	folder.CreatedAt = existing.CreatedAt
	folder.UpdatedAt = r.db.now()
	r.db.folders[folder.ID] = stored(*folder)
	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	defer r.db.lockWrite(ctx)()

	if _, ok := r.db.folders[id]; !ok {
		return &domain.NotFoundError{ResourceType: "folder", ID: id}
	}
	for _, f := range r.db.folders {
		if f.ParentID != nil && *f.ParentID == id {
			return fmt.Errorf("cannot delete folder with children: %w", domain.ErrConflict)
		}
	}
	for _, rows := range r.db.content {
		for _, c := range rows {
			if c.FolderID == id {
				return fmt.Errorf("cannot delete folder with content: %w", domain.ErrConflict)
			}
		}
	}
	delete(r.db.folders, id)
	return nil
}

func (r *FolderRepository) List(ctx context.Context) ([]models.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	folders := r.filter(func(models.Folder) bool { return true })
	sort.SliceStable(folders, func(i, j int) bool {
		return folders[i].CreatedAt.After(folders[j].CreatedAt)
	})
	return folders, nil
}

func (r *FolderRepository) ListChildren(ctx context.Context, parentID string) ([]models.Folder, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	folders := r.filter(func(f models.Folder) bool {
		return f.ParentID != nil && *f.ParentID == parentID
	})
	sort.SliceStable(folders, func(i, j int) bool {
		return folders[i].CreatedAt.Before(folders[j].CreatedAt)
	})
	return folders, nil
}

func (r *FolderRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.slugTaken(slug, excludeID), nil
}

// LockForUpdate only checks existence; transactions are already exclusive
func (r *FolderRepository) LockForUpdate(ctx context.Context, id string) error {
	_, err := r.GetByID(ctx, id)
	return err
}

func (r *FolderRepository) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.folders), nil
}

func (r *FolderRepository) slugTaken(slug, excludeID string) bool {
	for id, f := range r.db.folders {
		if id != excludeID && f.Slug == slug {
			return true
		}
	}
	return false
}

func (r *FolderRepository) filter(keep func(models.Folder) bool) []models.Folder {
	folders := []models.Folder{}
	for _, f := range r.db.folders {
		if keep(f) {
			folders = append(folders, f)
		}
	}
	// Map order is random; break CreatedAt ties by ID so results are stable
	sort.Slice(folders, func(i, j int) bool { return folders[i].ID < folders[j].ID })
	return folders
}

// stored drops the computed fields, which are never persisted
func stored(f models.Folder) models.Folder {
	f.Depth = 0
	f.Path = ""
	f.ItemCount = 0
	return f
}
