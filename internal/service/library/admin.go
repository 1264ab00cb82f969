package library

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"
	models "library/internal/domain/models/library"
	libsvc "library/internal/domain/services/library"
	"library/internal/httputil"
)

type adminWorkflow struct {
	folders  libsvc.FolderService
	content  libsvc.ContentService
	uploader libsvc.FileUploader
	logger   *slog.Logger
}

// NewAdminWorkflow creates the admin form workflow
func NewAdminWorkflow(
	folders libsvc.FolderService,
	content libsvc.ContentService,
	uploader libsvc.FileUploader,
	logger *slog.Logger,
) libsvc.AdminWorkflow {
	return &adminWorkflow{
		folders:  folders,
		content:  content,
		uploader: uploader,
		logger:   logger,
	}
}

// SaveContent validates the form, uploads any attached file and thumbnail in parallel,
// then creates or updates the item. Objects uploaded before a failed step are
// deleted again, best effort; the original error is returned either way.
func (w *adminWorkflow) SaveContent(ctx context.Context, form *libsvc.ContentForm) (*libsvc.SaveContentResult, error) {
	if err := validateContentForm(form); err != nil {
		return nil, err
	}

	file, thumb, err := w.upload(ctx, form)
	if err != nil {
		return nil, err
	}

	contentType := form.Type
	url := strings.TrimSpace(form.URL)
	var fileSize *int64
	if file != nil {
		url = file.URL
		fileSize = &file.Size
		if contentType == "" {
			contentType = contentTypeForMIME(file.Type)
		}
	}
	var thumbnailURL *string
	if thumb != nil {
		thumbnailURL = &thumb.URL
	}

	var content *models.Content
	if form.EditMode() {
		content, err = w.content.UpdateContent(ctx, form.ID, &libsvc.UpdateContentRequest{
			FolderID:     form.FolderID,
			Title:        &form.Title,
			Type:         typeOrNil(contentType),
			Description:  &form.Description,
			FileSize:     fileSize,
			URL:          present(url),
			ExternalURL:  present(strings.TrimSpace(form.ExternalURL)),
			ThumbnailURL: httputil.OptionalString{Present: thumbnailURL != nil, Value: thumbnailURL},
			CustomURL:    present(strings.TrimSpace(form.CustomURL)),
		})
	} else {
		content, err = w.content.CreateContent(ctx, &libsvc.CreateContentRequest{
			FolderID:     form.FolderID,
			Title:        form.Title,
			Type:         contentType,
			URL:          stringOrNil(url),
			ExternalURL:  stringOrNil(strings.TrimSpace(form.ExternalURL)),
			ThumbnailURL: thumbnailURL,
			Description:  form.Description,
			FileSize:     fileSize,
			CustomURL:    stringOrNil(strings.TrimSpace(form.CustomURL)),
		})
	}
	if err != nil {
		w.discard(ctx, err, file, thumb)
		return nil, err
	}

	return &libsvc.SaveContentResult{
		Content: content,
		Form:    &libsvc.ContentForm{FolderID: form.FolderID, Type: models.ContentTypePDF},
	}, nil
}

// SaveFolder validates the folder form and creates or updates the folder
func (w *adminWorkflow) SaveFolder(ctx context.Context, form *libsvc.FolderForm) (*models.Folder, error) {
	if err := validateFolderForm(form); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(form.Title)
	tableName := strings.TrimSpace(form.TableName)
	folderType := form.FolderType
	if folderType == "" {
		folderType = models.FolderTypeRoot
	}
	isPublic := form.IsPublic

	if form.ID != "" {
		return w.folders.UpdateFolder(ctx, form.ID, &libsvc.UpdateFolderRequest{
			Title:       &title,
			Description: &form.Description,
			TableName:   stringOrNil(tableName),
			IsPublic:    &isPublic,
			FolderType:  &folderType,
			ParentID:    present(strings.TrimSpace(form.ParentID)),
			CustomURL:   present(strings.TrimSpace(form.CustomURL)),
		})
	}

	return w.folders.CreateFolder(ctx, &libsvc.CreateFolderRequest{
		Title:       title,
		Description: form.Description,
		TableName:   tableName,
		IsPublic:    &isPublic,
		ParentID:    stringOrNil(strings.TrimSpace(form.ParentID)),
		FolderType:  folderType,
		CustomURL:   stringOrNil(strings.TrimSpace(form.CustomURL)),
	})
}

// upload sends the attached file and thumbnail concurrently
func (w *adminWorkflow) upload(ctx context.Context, form *libsvc.ContentForm) (file, thumb *libsvc.UploadResult, err error) {
	if form.File == nil && form.Thumbnail == nil {
		return nil, nil, nil
	}
	if w.uploader == nil {
		return nil, nil, errors.New("file uploads are not configured")
	}

	g, gctx := errgroup.WithContext(ctx)
	if form.File != nil {
		g.Go(func() error {
			res, err := w.uploader.UploadContent(gctx, form.File)
			if err != nil {
				return err
			}
			file = res
			w.logger.Info("content file uploaded", "filename", res.Filename, "size", res.Size, "type", res.Type)
			return nil
		})
	}
	if form.Thumbnail != nil {
		g.Go(func() error {
			res, err := w.uploader.UploadThumbnail(gctx, form.Thumbnail)
			if err != nil {
				return err
			}
			thumb = res
			w.logger.Info("thumbnail uploaded", "filename", res.Filename, "size", res.Size)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		w.discard(ctx, err, file, thumb)
		return nil, nil, err
	}
	return file, thumb, nil
}

// discard deletes objects that no content row will reference. It outlives a cancelled
// request; a failed delete leaves the object behind and is logged with its key.
func (w *adminWorkflow) discard(ctx context.Context, cause error, uploads ...*libsvc.UploadResult) {
	ctx = context.WithoutCancel(ctx)
	for _, orphan := range uploads {
		if orphan == nil {
			continue
		}
		if err := w.uploader.Delete(ctx, orphan.Filename); err != nil {
			w.logger.Error("uploaded object has no content row and could not be deleted",
				"filename", orphan.Filename,
				"url", orphan.URL,
				"cause", cause,
				"error", err,
			)
			continue
		}
		w.logger.Warn("deleted upload after failed save", "filename", orphan.Filename, "cause", cause)
	}
}

// validateContentForm checks the form before anything is uploaded or written
func validateContentForm(form *libsvc.ContentForm) error {
	err := validation.Errors{
		"folder_id": validation.Validate(strings.TrimSpace(form.FolderID), validation.Required.Error("Please select a folder")),
		"title":     validation.Validate(strings.TrimSpace(form.Title), validation.Required.Error("Please enter a title")),
	}.Filter()
	if err != nil {
		return toValidationError(err)
	}

	if form.File == nil && strings.TrimSpace(form.URL) == "" && strings.TrimSpace(form.ExternalURL) == "" {
		return toValidationError(validation.Errors{
			"file": errors.New("Please provide either a file or an external URL"),
		})
	}

	if custom := strings.TrimSpace(form.CustomURL); custom != "" {
		if err := validation.Validate(custom, customURLRules...); err != nil {
			return toValidationError(validation.Errors{"custom_url": err})
		}
	}
	return nil
}

// validateFolderForm checks the folder form before it reaches the folder service
func validateFolderForm(form *libsvc.FolderForm) error {
	err := validation.Errors{
		"title": validation.Validate(strings.TrimSpace(form.Title), validation.Required.Error("Please enter a title")),
		"table_name": validation.Validate(strings.TrimSpace(form.TableName),
			validation.Match(tableNamePattern).Error("Table name must contain only lowercase letters and underscores")),
		"custom_url": validation.Validate(strings.TrimSpace(form.CustomURL), customURLRules...),
	}.Filter()
	if err != nil {
		return toValidationError(err)
	}

	if form.FolderType == models.FolderTypeSubRoot && strings.TrimSpace(form.ParentID) == "" {
		return toValidationError(validation.Errors{
			"parent_id": errors.New("Sub-root folders must have a parent folder"),
		})
	}
	return nil
}

// contentTypeForMIME picks the content type for an uploaded file when the form left it unset
func contentTypeForMIME(mimeType string) models.ContentType {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return models.ContentTypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return models.ContentTypeAudio
	case strings.HasPrefix(mimeType, "image/"):
		return models.ContentTypeImage
	default:
		return models.ContentTypePDF
	}
}

func present(s string) httputil.OptionalString {
	return httputil.OptionalString{Present: true, Value: stringOrNil(s)}
}

func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func typeOrNil(t models.ContentType) *models.ContentType {
	if t == "" {
		return nil
	}
	return &t
}
