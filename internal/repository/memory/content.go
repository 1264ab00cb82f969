package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
)

// ContentRepository is one content table of a DB
type ContentRepository struct {
	db         *DB
	visibility models.Visibility
}

// NewContentRepository creates the store for the table backing visibility v
func NewContentRepository(db *DB, v models.Visibility) libraryRepo.ContentStore {
	return &ContentRepository{db: db, visibility: v}
}

func (r *ContentRepository) Visibility() models.Visibility {
	return r.visibility
}

func (r *ContentRepository) rows() map[string]models.Content {
	return r.db.content[r.visibility]
}

// withTag fills the folder's table_name, mirroring the join done by the SQL store
func (r *ContentRepository) withTag(c models.Content) models.Content {
	if f, ok := r.db.folders[c.FolderID]; ok {
		c.TableName = f.TableName
	}
	return c
}

func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	defer r.db.lockWrite(ctx)()

	if _, ok := r.db.folders[content.FolderID]; !ok {
		return &domain.NotFoundError{ResourceType: "folder", ID: content.FolderID}
	}
	for _, c := range r.rows() {
		if c.Slug == content.Slug || (c.FolderID == content.FolderID && c.DisplayOrder == content.DisplayOrder) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("content slug '%s' or display order %d is already in use", content.Slug, content.DisplayOrder),
				ResourceType: "content",
			}
		}
	}

	now := r.db.now()
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	content.UpdatedAt = now
	r.rows()[content.ID] = *content
	*content = r.withTag(*content)
	return nil
}

func (r *ContentRepository) GetByID(ctx context.Context, id string) (*models.Content, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.rows()[id]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "content", ID: id}
	}
	c = r.withTag(c)
	return &c, nil
}

func (r *ContentRepository) Update(ctx context.Context, content *models.Content) error {
	defer r.db.lockWrite(ctx)()

	existing, ok := r.rows()[content.ID]
	if !ok {
		return &domain.NotFoundError{ResourceType: "content", ID: content.ID}
	}
	for id, c := range r.rows() {
		if id != content.ID && c.Slug == content.Slug {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("content slug '%s' is already in use", content.Slug),
				ResourceType: "content",
				ResourceID:   content.ID,
			}
		}
	}

	updated := existing
	updated.Title = content.Title
	updated.Type = content.Type
	updated.URL = content.URL
	updated.ExternalURL = content.ExternalURL
	updated.ThumbnailURL = content.ThumbnailURL
	updated.Description = content.Description
	updated.FileSize = content.FileSize
	updated.CustomURL = content.CustomURL
	updated.Slug = content.Slug
	updated.UpdatedAt = r.db.now()
	r.rows()[content.ID] = updated

	content.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	defer r.db.lockWrite(ctx)()

	if _, ok := r.rows()[id]; !ok {
		return &domain.NotFoundError{ResourceType: "content", ID: id}
	}
	delete(r.rows(), id)
	return nil
}

func (r *ContentRepository) DeleteByFolder(ctx context.Context, folderID string) (int, error) {
	defer r.db.lockWrite(ctx)()

	n := 0
	for id, c := range r.rows() {
		if c.FolderID == folderID {
			delete(r.rows(), id)
			n++
		}
	}
	return n, nil
}

func (r *ContentRepository) ListByFolder(ctx context.Context, folderID string) ([]models.Content, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	items := r.filter(func(c models.Content) bool { return c.FolderID == folderID })
	sort.Slice(items, func(i, j int) bool { return items[i].DisplayOrder < items[j].DisplayOrder })
	return items, nil
}

func (r *ContentRepository) MaxDisplayOrder(ctx context.Context, folderID string) (int, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	max, ok := 0, false
	for _, c := range r.rows() {
		if c.FolderID == folderID && (!ok || c.DisplayOrder > max) {
			max, ok = c.DisplayOrder, true
		}
	}
	return max, ok, nil
}

func (r *ContentRepository) Neighbor(ctx context.Context, folderID string, order int, dir models.Direction) (*models.Content, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var best *models.Content
	for _, c := range r.rows() {
		if c.FolderID != folderID {
			continue
		}
		switch {
		case dir == models.DirectionUp && c.DisplayOrder < order && (best == nil || c.DisplayOrder > best.DisplayOrder):
		case dir == models.DirectionDown && c.DisplayOrder > order && (best == nil || c.DisplayOrder < best.DisplayOrder):
		default:
			continue
		}
		match := r.withTag(c)
		best = &match
	}
	return best, nil
}

// SwapOrder exchanges the two orders atomically when both rows still match
func (r *ContentRepository) SwapOrder(ctx context.Context, folderID string, a, b libraryRepo.OrderSlot) (bool, error) {
	defer r.db.lockWrite(ctx)()

	ca, okA := r.rows()[a.ID]
	cb, okB := r.rows()[b.ID]
	if !okA || !okB || ca.FolderID != folderID || cb.FolderID != folderID ||
		ca.DisplayOrder != a.Order || cb.DisplayOrder != b.Order {
		return false, nil
	}

	now := r.db.now()
	ca.DisplayOrder, cb.DisplayOrder = b.Order, a.Order
	ca.UpdatedAt, cb.UpdatedAt = now, now
	r.rows()[a.ID] = ca
	r.rows()[b.ID] = cb
	return true, nil
}

func (r *ContentRepository) Search(ctx context.Context, query string) ([]models.Content, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	q := strings.ToLower(query)
	items := r.filter(func(c models.Content) bool {
		return strings.Contains(strings.ToLower(c.Title), q) || strings.Contains(strings.ToLower(c.Description), q)
	})
	sortByViews(items)
	return items, nil
}

func (r *ContentRepository) ListByType(ctx context.Context, t models.ContentType) ([]models.Content, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	items := r.filter(func(c models.Content) bool { return c.Type == t })
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *ContentRepository) Popular(ctx context.Context, limit int) ([]models.Content, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	items := r.filter(func(models.Content) bool { return true })
	sortByViews(items)
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *ContentRepository) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.rows()), nil
}

func (r *ContentRepository) CountByFolder(ctx context.Context, folderID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.filter(func(c models.Content) bool { return c.FolderID == folderID })), nil
}

func (r *ContentRepository) SumViews(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	total := 0
	for _, c := range r.rows() {
		total += c.ViewCount
	}
	return total, nil
}

func (r *ContentRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for id, c := range r.rows() {
		if id != excludeID && c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *ContentRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(c *models.Content) {
		c.ViewCount++
		now := r.db.now()
		c.LastViewedAt = &now
	})
}

func (r *ContentRepository) UpdateLastPage(ctx context.Context, id string, page int) error {
	return r.mutate(ctx, id, func(c *models.Content) {
		c.LastPage = &page
		now := r.db.now()
		c.LastViewedAt = &now
	})
}

func (r *ContentRepository) MoveFolderTo(ctx context.Context, folderID string, dst libraryRepo.ContentStore) (int, error) {
	target, ok := dst.(*ContentRepository)
	if !ok {
		return 0, fmt.Errorf("move folder content: unsupported destination %T", dst)
	}
	if target.visibility == r.visibility {
		return 0, nil
	}

	defer r.db.lockWrite(ctx)()

	moving := r.filter(func(c models.Content) bool { return c.FolderID == folderID })
	for _, c := range moving {
		for _, other := range target.rows() {
			if other.Slug == c.Slug {
				return 0, &domain.ConflictError{
					Message:      "a content slug in this folder is already used in the destination table",
					ResourceType: "folder",
					ResourceID:   folderID,
				}
			}
		}
	}
	for _, c := range moving {
		c.TableName = ""
		target.rows()[c.ID] = c
		delete(r.rows(), c.ID)
	}
	return len(moving), nil
}

func (r *ContentRepository) mutate(ctx context.Context, id string, fn func(*models.Content)) error {
	defer r.db.lockWrite(ctx)()

	c, ok := r.rows()[id]
	if !ok {
		return &domain.NotFoundError{ResourceType: "content", ID: id}
	}
	fn(&c)
	r.rows()[id] = c
	return nil
}

func (r *ContentRepository) filter(keep func(models.Content) bool) []models.Content {
	items := []models.Content{}
	for _, c := range r.rows() {
		if keep(c) {
			items = append(items, r.withTag(c))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func sortByViews(items []models.Content) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ViewCount != items[j].ViewCount {
			return items[i].ViewCount > items[j].ViewCount
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
