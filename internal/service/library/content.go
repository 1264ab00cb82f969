package library

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"library/internal/config"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	"library/internal/domain/repositories"
	libraryRepo "library/internal/domain/repositories/library"
	libsvc "library/internal/domain/services/library"
)

type contentService struct {
	folderRepo      libraryRepo.FolderRepository
	router          libraryRepo.ContentRouter
	interactionRepo libraryRepo.InteractionRepository
	txManager       repositories.TransactionManager
	logger          *slog.Logger
}

// NewContentService creates a new content service
func NewContentService(
	folderRepo libraryRepo.FolderRepository,
	router libraryRepo.ContentRouter,
	interactionRepo libraryRepo.InteractionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) libsvc.ContentService {
	return &contentService{
		folderRepo:      folderRepo,
		router:          router,
		interactionRepo: interactionRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// CreateContent appends an item to its folder. The folder row is locked for the
// duration so two concurrent creates cannot both take max+1.
func (s *contentService) CreateContent(ctx context.Context, req *libsvc.CreateContentRequest) (*models.Content, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.URL = emptyToNil(req.URL)
	req.ExternalURL = emptyToNil(req.ExternalURL)
	req.ThumbnailURL = emptyToNil(req.ThumbnailURL)
	req.CustomURL = emptyToNil(req.CustomURL)
	if req.Type == "" {
		req.Type = models.ContentTypePDF
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	content := &models.Content{
		FolderID:     req.FolderID,
		Title:        req.Title,
		Type:         req.Type,
		URL:          req.URL,
		ExternalURL:  req.ExternalURL,
		ThumbnailURL: req.ThumbnailURL,
		Description:  strings.TrimSpace(req.Description),
		FileSize:     req.FileSize,
		CustomURL:    req.CustomURL,
	}

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		folder, err = resolveFolder(ctx, s.folderRepo, req.FolderID)
		if err != nil {
			return err
		}
		content.FolderID = folder.ID
		if err := s.folderRepo.LockForUpdate(ctx, folder.ID); err != nil {
			return err
		}

		store := s.router.ForFolder(folder)

		highest, ok, err := store.MaxDisplayOrder(ctx, folder.ID)
		if err != nil {
			return err
		}
		if ok {
			content.DisplayOrder = highest + 1
		}

		// Slugs are scoped to the physical table and prefixed with the folder's tag
		base := folder.TableName + "_" + Slugify(content.Title)
		content.Slug, err = uniqueSlug(ctx, base, func(ctx context.Context, slug string) (bool, error) {
			return store.SlugExists(ctx, slug, "")
		})
		if err != nil {
			return err
		}

		return store.Create(ctx, content)
	})
	if err != nil {
		return nil, err
	}
	content.TableName = folder.TableName

	s.logger.Info("content created",
		"id", content.ID,
		"folder_id", content.FolderID,
		"title", content.Title,
		"type", content.Type,
		"slug", content.Slug,
		"display_order", content.DisplayOrder,
		"visibility", folder.Visibility(),
	)

	return content, nil
}

// GetContent retrieves an item from whichever table holds it
func (s *contentService) GetContent(ctx context.Context, id string) (*models.Content, error) {
	_, content, err := s.locate(ctx, id, "")
	return content, err
}

// ListByFolder returns a folder's items in display order
func (s *contentService) ListByFolder(ctx context.Context, folderIDOrSlug string) ([]models.Content, error) {
	folder, err := resolveFolder(ctx, s.folderRepo, folderIDOrSlug)
	if err != nil {
		return nil, err
	}
	return s.router.ForFolder(folder).ListByFolder(ctx, folder.ID)
}

// UpdateContent applies a partial update. The url-or-external_url invariant is checked
// on the merged result, so clearing one URL is fine while the other remains.
func (s *contentService) UpdateContent(ctx context.Context, id string, req *libsvc.UpdateContentRequest) (*models.Content, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, err
	}

	var content *models.Content
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		store, existing, err := s.locate(ctx, id, req.FolderID)
		if err != nil {
			return err
		}
		content = existing

		if req.Title != nil {
			content.Title = *req.Title
		}
		if req.Type != nil {
			content.Type = *req.Type
		}
		if req.Description != nil {
			content.Description = strings.TrimSpace(*req.Description)
		}
		if req.FileSize != nil {
			content.FileSize = req.FileSize
		}
		req.URL.ApplyTo(&content.URL)
		req.ExternalURL.ApplyTo(&content.ExternalURL)
		req.ThumbnailURL.ApplyTo(&content.ThumbnailURL)
		req.CustomURL.ApplyTo(&content.CustomURL)

		if !content.HasLocation() {
			return &domain.ValidationError{Field: "url", Message: "either url or external_url is required"}
		}

		return store.Update(ctx, content)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("content updated",
		"id", content.ID,
		"folder_id", content.FolderID,
		"title", content.Title,
	)

	return content, nil
}

// DeleteContent removes one item. Sibling display orders keep their gaps.
func (s *contentService) DeleteContent(ctx context.Context, id, folderID string) (*models.Content, error) {
	store, content, err := s.locate(ctx, id, folderID)
	if err != nil {
		return nil, err
	}

	if err := store.Delete(ctx, content.ID); err != nil {
		return nil, err
	}

	s.logger.Info("content deleted",
		"id", content.ID,
		"folder_id", content.FolderID,
		"title", content.Title,
	)

	return content, nil
}

// MoveContent swaps the item with its nearest sibling in dir. The swap is a single
// conditional update, so a concurrent reorder can make it miss; the whole read-swap
// cycle is then retried, and after config.MaxReorderAttempts misses a ConflictError
// is returned. No interleaving can leave two siblings sharing an order.
func (s *contentService) MoveContent(ctx context.Context, id, folderID string, dir models.Direction) (*models.Content, error) {
	for attempt := 1; attempt <= config.MaxReorderAttempts; attempt++ {
		var moved *models.Content
		err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
			store, item, err := s.locate(ctx, id, folderID)
			if err != nil {
				return err
			}

			neighbor, err := store.Neighbor(ctx, item.FolderID, item.DisplayOrder, dir)
			if err != nil {
				return err
			}
			if neighbor == nil {
				// Already first (up) or last (down)
				moved = item
				return nil
			}

			swapped, err := store.SwapOrder(ctx, item.FolderID,
				libraryRepo.OrderSlot{ID: item.ID, Order: item.DisplayOrder},
				libraryRepo.OrderSlot{ID: neighbor.ID, Order: neighbor.DisplayOrder},
			)
			if err != nil || !swapped {
				return err
			}

			item.DisplayOrder = neighbor.DisplayOrder
			moved = item
			return nil
		})
		if err != nil {
			return nil, err
		}
		if moved != nil {
			s.logger.Debug("content moved",
				"id", moved.ID,
				"direction", dir.String(),
				"display_order", moved.DisplayOrder,
			)
			return moved, nil
		}

		s.logger.Warn("content reorder raced with another writer, retrying",
			"id", id,
			"direction", dir.String(),
			"attempt", attempt,
		)
	}

	return nil, &domain.ConflictError{
		Message:      "content order changed concurrently, please retry",
		ResourceType: "content",
		ResourceID:   id,
	}
}

// Search matches query case-insensitively against title and description in both
// tables, most viewed first
func (s *contentService) Search(ctx context.Context, query string) ([]models.Content, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Field: "q", Message: "search query is required"}
	}

	items, err := s.collect(ctx, func(store libraryRepo.ContentStore) ([]models.Content, error) {
		return store.Search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	sortByViews(items)
	return items, nil
}

// ListByType returns every item of one type, newest first
func (s *contentService) ListByType(ctx context.Context, t models.ContentType) ([]models.Content, error) {
	if !t.Valid() {
		return nil, &domain.ValidationError{Field: "type", Message: fmt.Sprintf("unknown content type %q", t)}
	}

	items, err := s.collect(ctx, func(store libraryRepo.ContentStore) ([]models.Content, error) {
		return store.ListByType(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

// Popular returns the most viewed items across both tables
func (s *contentService) Popular(ctx context.Context, limit int) ([]models.Content, error) {
	if limit <= 0 {
		limit = config.DefaultPopularLimit
	}

	items, err := s.collect(ctx, func(store libraryRepo.ContentStore) ([]models.Content, error) {
		return store.Popular(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	sortByViews(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// ListAll concatenates every folder's items, folders in list order (newest first) and
// items in display order
func (s *contentService) ListAll(ctx context.Context) ([]models.Content, error) {
	folders, err := s.folderRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := []models.Content{}
	for i := range folders {
		folderItems, err := s.router.ForFolder(&folders[i]).ListByFolder(ctx, folders[i].ID)
		if err != nil {
			return nil, err
		}
		items = append(items, folderItems...)
	}
	return items, nil
}

// Stats summarises the library
func (s *contentService) Stats(ctx context.Context) (*models.Stats, error) {
	folders, err := s.folderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{TotalFolders: folders}
	for _, store := range s.router.All() {
		n, err := store.Count(ctx)
		if err != nil {
			return nil, err
		}
		views, err := store.SumViews(ctx)
		if err != nil {
			return nil, err
		}
		stats.TotalContent += n
		stats.TotalViews += views
	}
	return stats, nil
}

// ContentStats returns an item with its view totals and interaction log
func (s *contentService) ContentStats(ctx context.Context, id string) (*models.ContentStats, error) {
	_, content, err := s.locate(ctx, id, "")
	if err != nil {
		return nil, err
	}

	interactions, err := s.interactionRepo.ListByContent(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.ContentStats{
		Content:      content,
		TotalViews:   content.ViewCount,
		LastViewed:   content.LastViewedAt,
		Interactions: interactions,
	}, nil
}

// Export returns every folder and item for backup
func (s *contentService) Export(ctx context.Context) (*models.Export, error) {
	folders, err := s.folderRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Export{
		Folders:    folders,
		Content:    content,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// SuggestURL proposes <folderURL>_content.01 for new content in a folder
func (s *contentService) SuggestURL(ctx context.Context, folderID, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", &domain.ValidationError{Field: "title", Message: "title is required"}
	}

	folder, err := resolveFolder(ctx, s.folderRepo, folderID)
	if err != nil {
		return "", err
	}
	return folder.DisplayURL() + "_content.01", nil
}

// locate finds an item and the store holding it. With a folder the lookup goes
// straight to that folder's table; without one both tables are searched.
func (s *contentService) locate(ctx context.Context, id, folderID string) (libraryRepo.ContentStore, *models.Content, error) {
	if folderID == "" {
		return s.router.Locate(ctx, id)
	}

	folder, err := resolveFolder(ctx, s.folderRepo, folderID)
	if err != nil {
		return nil, nil, err
	}

	store := s.router.ForFolder(folder)
	content, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if content.FolderID != folder.ID {
		return nil, nil, &domain.NotFoundError{ResourceType: "content", ID: id}
	}
	return store, content, nil
}

// collect runs fn against every store and concatenates the results
func (s *contentService) collect(ctx context.Context, fn func(libraryRepo.ContentStore) ([]models.Content, error)) ([]models.Content, error) {
	items := []models.Content{}
	for _, store := range s.router.All() {
		found, err := fn(store)
		if err != nil {
			return nil, fmt.Errorf("query %s content: %w", store.Visibility(), err)
		}
		items = append(items, found...)
	}
	return items, nil
}

func sortByViews(items []models.Content) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ViewCount != items[j].ViewCount {
			return items[i].ViewCount > items[j].ViewCount
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// validateCreateRequest validates a content creation request
func (s *contentService) validateCreateRequest(req *libsvc.CreateContentRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required.Error("folder is required")),
		validation.Field(&req.Title, titleRules...),
		validation.Field(&req.Type, contentTypeRule),
		validation.Field(&req.Description, descriptionRule),
		validation.Field(&req.CustomURL, customURLRules...),
	)
	if err != nil {
		return toValidationError(err)
	}

	if req.URL == nil && req.ExternalURL == nil {
		return &domain.ValidationError{Field: "url", Message: "either url or external_url is required"}
	}
	return nil
}

// validateUpdateRequest validates a content update request
func (s *contentService) validateUpdateRequest(req *libsvc.UpdateContentRequest) error {
	if req.Title == nil && req.Type == nil && req.Description == nil && req.FileSize == nil &&
		!req.URL.Present && !req.ExternalURL.Present && !req.ThumbnailURL.Present && !req.CustomURL.Present {
		return domain.NewValidationError("at least one field must be provided")
	}

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.When(req.Title != nil, titleRules...)),
		validation.Field(&req.Type, validation.When(req.Type != nil, contentTypeRule)),
		validation.Field(&req.Description, descriptionRule),
	)
	if err != nil {
		return toValidationError(err)
	}

	if customURL, ok := req.CustomURL.Set(); ok {
		if err := validation.Validate(customURL, customURLRules...); err != nil {
			return &domain.ValidationError{Field: "custom_url", Message: err.Error()}
		}
	}
	return nil
}
