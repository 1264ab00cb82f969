package library

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"library/internal/config"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
)

var (
	tableNamePattern = regexp.MustCompile(`^[a-z_]+$`)
	customURLPattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)
	uuidPattern      = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

var (
	titleRules = []validation.Rule{
		validation.Required.Error("title is required"),
		validation.RuneLength(1, config.MaxTitleLength),
	}
	descriptionRule = validation.RuneLength(0, config.MaxDescriptionLength)
	tableNameRules  = []validation.Rule{
		validation.Required.Error("table name is required"),
		validation.Length(1, config.MaxTableNameLength),
		validation.Match(tableNamePattern).Error("table name must contain only lowercase letters and underscores"),
	}
	customURLRules = []validation.Rule{
		validation.Length(1, config.MaxCustomURLLength),
		validation.Match(customURLPattern).Error("custom URL must contain only lowercase letters, numbers, underscores, dots and hyphens"),
	}
	folderTypeRule  = validation.In(models.FolderTypeRoot, models.FolderTypeSubRoot).Error("folder type must be root or sub_root")
	contentTypeRule = validation.In(
		models.ContentTypePDF,
		models.ContentTypeVideo,
		models.ContentTypeAudio,
		models.ContentTypeImage,
		models.ContentTypeLink,
	).Error("type must be one of pdf, video, audio, image, link")
)

// toValidationError converts ozzo-validation output into a domain.ValidationError.
// A single failing field is reported with its name; several are joined into one message.
func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return fmt.Errorf("validate request: %w", err)
	}

	var fields validation.Errors
	if errors.As(err, &fields) {
		keys := make([]string, 0, len(fields))
		for k, v := range fields {
			if v != nil {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		if len(keys) == 1 {
			return &domain.ValidationError{Field: keys[0], Message: fields[keys[0]].Error()}
		}
		return domain.NewValidationError(fields.Error())
	}

	return domain.NewValidationError(err.Error())
}

// validateHierarchy enforces the single-level nesting rules: sub_root folders need a
// parent, root folders have none, and a parent must itself be a root folder. It returns
// the parent folder, or nil for root folders.
func validateHierarchy(ctx context.Context, repo libraryRepo.FolderRepository, folderType models.FolderType, parentID *string, selfID string) (*models.Folder, error) {
	switch folderType {
	case models.FolderTypeRoot:
		if parentID != nil {
			return nil, &domain.ValidationError{Field: "parent_id", Message: "root folders cannot have a parent folder"}
		}
		return nil, nil
	case models.FolderTypeSubRoot:
		if parentID == nil {
			return nil, &domain.ValidationError{Field: "parent_id", Message: "sub_root folders require a parent folder"}
		}
	default:
		return nil, &domain.ValidationError{Field: "folder_type", Message: "folder type must be root or sub_root"}
	}

	if *parentID == selfID {
		return nil, &domain.ValidationError{Field: "parent_id", Message: "a folder cannot be its own parent"}
	}

	parent, err := repo.GetByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ValidationError{Field: "parent_id", Message: "parent folder does not exist"}
		}
		return nil, err
	}
	if parent.FolderType != models.FolderTypeRoot || parent.ParentID != nil {
		return nil, &domain.ValidationError{Field: "parent_id", Message: "parent folder must be a root folder"}
	}

	return parent, nil
}

// resolveFolder looks a folder up by id when the value is UUID-shaped, by slug otherwise
func resolveFolder(ctx context.Context, repo libraryRepo.FolderRepository, idOrSlug string) (*models.Folder, error) {
	if idOrSlug == "" {
		return nil, &domain.ValidationError{Field: "folder", Message: "folder id or slug is required"}
	}
	if uuidPattern.MatchString(idOrSlug) {
		return repo.GetByID(ctx, idOrSlug)
	}
	return repo.GetBySlug(ctx, idOrSlug)
}

// emptyToNil normalises an optional string: blank means absent
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
