package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	"library/internal/domain/repositories"
	libraryRepo "library/internal/domain/repositories/library"
	libsvc "library/internal/domain/services/library"
)

type folderService struct {
	folderRepo libraryRepo.FolderRepository
	router     libraryRepo.ContentRouter
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo libraryRepo.FolderRepository,
	router libraryRepo.ContentRouter,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) libsvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		router:     router,
		txManager:  txManager,
		logger:     logger,
	}
}

// CreateFolder validates the request, generates a globally unique slug from the title
// and persists the folder
func (s *folderService) CreateFolder(ctx context.Context, req *libsvc.CreateFolderRequest) (*models.Folder, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.TableName = strings.TrimSpace(req.TableName)
	req.ParentID = emptyToNil(req.ParentID)
	req.CustomURL = emptyToNil(req.CustomURL)
	if req.FolderType == "" {
		req.FolderType = models.FolderTypeRoot
	}
	if req.TableName == "" {
		req.TableName = tableNameFromTitle(req.Title)
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	folder := &models.Folder{
		Title:       req.Title,
		CustomURL:   req.CustomURL,
		Description: strings.TrimSpace(req.Description),
		IsPublic:    isPublic,
		TableName:   req.TableName,
		ParentID:    req.ParentID,
		FolderType:  req.FolderType,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		parent, err := validateHierarchy(ctx, s.folderRepo, folder.FolderType, folder.ParentID, "")
		if err != nil {
			return err
		}

		folder.Slug, err = uniqueSlug(ctx, Slugify(folder.Title), func(ctx context.Context, slug string) (bool, error) {
			return s.folderRepo.SlugExists(ctx, slug, "")
		})
		if err != nil {
			return err
		}

		if err := s.folderRepo.Create(ctx, folder); err != nil {
			return err
		}
		folder.ComputeLocation(parent)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"title", folder.Title,
		"slug", folder.Slug,
		"visibility", folder.Visibility(),
		"folder_type", folder.FolderType,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder resolves a folder by id or slug with its path, depth and item count
func (s *folderService) GetFolder(ctx context.Context, idOrSlug string) (*models.Folder, error) {
	folder, err := resolveFolder(ctx, s.folderRepo, idOrSlug)
	if err != nil {
		return nil, err
	}

	var parent *models.Folder
	if folder.ParentID != nil {
		parent, err = s.folderRepo.GetByID(ctx, *folder.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent folder: %w", err)
		}
	}

	if err := s.decorate(ctx, folder, parent); err != nil {
		return nil, err
	}
	return folder, nil
}

// ListFolders returns every folder, newest first, with path, depth and item count
func (s *folderService) ListFolders(ctx context.Context) ([]models.Folder, error) {
	folders, err := s.folderRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Folder, len(folders))
	for i := range folders {
		byID[folders[i].ID] = &folders[i]
	}

	for i := range folders {
		var parent *models.Folder
		if folders[i].ParentID != nil {
			parent = byID[*folders[i].ParentID]
		}
		if err := s.decorate(ctx, &folders[i], parent); err != nil {
			return nil, err
		}
	}

	return folders, nil
}

// UpdateFolder applies a partial update. A title change regenerates the slug and a
// visibility change moves the folder's content into the other table, both atomically
// with the folder row.
func (s *folderService) UpdateFolder(ctx context.Context, id string, req *libsvc.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, err
	}

	var folder *models.Folder
	var parent *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		folder, err = s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before := *folder

		if req.Title != nil {
			folder.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			folder.Description = strings.TrimSpace(*req.Description)
		}
		if req.TableName != nil {
			folder.TableName = strings.TrimSpace(*req.TableName)
		}
		if req.IsPublic != nil {
			folder.IsPublic = *req.IsPublic
		}
		req.CustomURL.ApplyTo(&folder.CustomURL)
		req.ParentID.ApplyTo(&folder.ParentID)
		if req.FolderType != nil {
			folder.FolderType = *req.FolderType
			// Turning a folder into a root folder detaches it
			if folder.FolderType == models.FolderTypeRoot && !req.ParentID.Present {
				folder.ParentID = nil
			}
		}

		if folder.FolderType == models.FolderTypeSubRoot && before.FolderType != models.FolderTypeSubRoot {
			children, err := s.folderRepo.ListChildren(ctx, id)
			if err != nil {
				return fmt.Errorf("list sub-folders: %w", err)
			}
			if len(children) > 0 {
				return &domain.ValidationError{Field: "folder_type", Message: "a folder with sub-folders cannot become a sub_root folder"}
			}
		}

		parent, err = validateHierarchy(ctx, s.folderRepo, folder.FolderType, folder.ParentID, folder.ID)
		if err != nil {
			return err
		}

		if folder.Title != before.Title {
			folder.Slug, err = uniqueSlug(ctx, Slugify(folder.Title), func(ctx context.Context, slug string) (bool, error) {
				return s.folderRepo.SlugExists(ctx, slug, folder.ID)
			})
			if err != nil {
				return err
			}
		}

		if folder.Visibility() != before.Visibility() {
			from := s.router.ForFolder(&before)
			to := s.router.ForFolder(folder)
			moved, err := from.MoveFolderTo(ctx, folder.ID, to)
			if err != nil {
				return err
			}
			s.logger.Info("folder content moved",
				"folder_id", folder.ID,
				"from", from.Visibility(),
				"to", to.Visibility(),
				"items", moved,
			)
		}

		return s.folderRepo.Update(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	if err := s.decorate(ctx, folder, parent); err != nil {
		return nil, err
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"title", folder.Title,
		"slug", folder.Slug,
		"visibility", folder.Visibility(),
	)

	return folder, nil
}

// DeleteFolder deletes a folder, its sub-folders and all of their content in one
// transaction
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	var folder *models.Folder
	removed := 0
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		folder, err = s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		children, err := s.folderRepo.ListChildren(ctx, id)
		if err != nil {
			return fmt.Errorf("list sub-folders: %w", err)
		}
		for i := range children {
			n, err := s.router.ForFolder(&children[i]).DeleteByFolder(ctx, children[i].ID)
			if err != nil {
				return fmt.Errorf("delete content of sub-folder %q: %w", children[i].Title, err)
			}
			removed += n
			if err := s.folderRepo.Delete(ctx, children[i].ID); err != nil {
				return fmt.Errorf("delete sub-folder %q: %w", children[i].Title, err)
			}
			s.logger.Debug("deleted sub-folder", "id", children[i].ID, "title", children[i].Title, "items", n)
		}

		n, err := s.router.ForFolder(folder).DeleteByFolder(ctx, id)
		if err != nil {
			return fmt.Errorf("delete folder content: %w", err)
		}
		removed += n

		return s.folderRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		"id", id,
		"title", folder.Title,
		"content_removed", removed,
	)

	return nil
}

// SuggestURL proposes a URL for a folder: the slugified title, or <parentURL>_sub.01
// for a sub_root folder
func (s *folderService) SuggestURL(ctx context.Context, req *libsvc.SuggestFolderURLRequest) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", &domain.ValidationError{Field: "title", Message: "title is required"}
	}

	if req.FolderType == models.FolderTypeSubRoot && req.ParentID != nil && *req.ParentID != "" {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return "", err
		}
		return parent.DisplayURL() + "_sub.01", nil
	}

	return Slugify(title), nil
}

// decorate fills the computed fields of folder
func (s *folderService) decorate(ctx context.Context, folder *models.Folder, parent *models.Folder) error {
	folder.ComputeLocation(parent)

	n, err := s.router.ForFolder(folder).CountByFolder(ctx, folder.ID)
	if err != nil {
		return fmt.Errorf("count folder content: %w", err)
	}
	folder.ItemCount = n
	return nil
}

// validateCreateRequest checks field formats. Hierarchy rules that need the parent
// folder are checked by validateHierarchy.
func (s *folderService) validateCreateRequest(req *libsvc.CreateFolderRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, titleRules...),
		validation.Field(&req.Description, descriptionRule),
		validation.Field(&req.TableName, tableNameRules...),
		validation.Field(&req.FolderType, folderTypeRule),
		validation.Field(&req.CustomURL, customURLRules...),
	)
	if err != nil {
		return toValidationError(err)
	}

	if req.FolderType == models.FolderTypeSubRoot && req.ParentID == nil {
		return &domain.ValidationError{Field: "parent_id", Message: "sub_root folders require a parent folder"}
	}
	return nil
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *libsvc.UpdateFolderRequest) error {
	if req.Title == nil && req.Description == nil && req.TableName == nil && req.IsPublic == nil &&
		req.FolderType == nil && !req.ParentID.Present && !req.CustomURL.Present {
		return domain.NewValidationError("at least one field must be provided")
	}

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if req.TableName != nil {
		trimmed := strings.TrimSpace(*req.TableName)
		req.TableName = &trimmed
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.When(req.Title != nil, titleRules...)),
		validation.Field(&req.Description, descriptionRule),
		validation.Field(&req.TableName, validation.When(req.TableName != nil, tableNameRules...)),
		validation.Field(&req.FolderType, validation.When(req.FolderType != nil, folderTypeRule)),
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
