package seed

import (
	"context"
	"fmt"
	"log/slog"

	models "library/internal/domain/models/library"
	libsvc "library/internal/domain/services/library"
)

type sampleFolder struct {
	title       string
	description string
	public      bool
	children    []sampleFolder
	items       []libsvc.CreateContentRequest
}

func ptr(s string) *string { return &s }

// sampleLibrary is a small library covering every content type, a private folder and
// one level of nesting
func sampleLibrary() []sampleFolder {
	return []sampleFolder{
		{
			title:       "Physics 101",
			description: "Introductory mechanics lectures and notes",
			public:      true,
			items: []libsvc.CreateContentRequest{
				{
					Title:       "Syllabus",
					Type:        models.ContentTypePDF,
					URL:         ptr("https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf"),
					Description: "Course outline and grading",
				},
				{
					Title:       "Newton's Laws",
					Type:        models.ContentTypeVideo,
					URL:         ptr("https://www.youtube.com/watch?v=kKKM8Y-u7ds"),
					ExternalURL: ptr("https://en.wikipedia.org/wiki/Newton%27s_laws_of_motion"),
				},
				{
					Title: "Free Body Diagram",
					Type:  models.ContentTypeImage,
					URL:   ptr("https://upload.wikimedia.org/wikipedia/commons/5/5b/Free_body1.3.svg"),
				},
			},
			children: []sampleFolder{
				{
					title:  "Problem Sets",
					public: true,
					items: []libsvc.CreateContentRequest{
						{
							Title: "Week 1 Problems",
							Type:  models.ContentTypePDF,
							URL:   ptr("https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf"),
						},
					},
				},
			},
		},
		{
			title:       "Podcasts",
			description: "Recorded talks",
			public:      true,
			items: []libsvc.CreateContentRequest{
				{
					Title: "Sample Talk",
					Type:  models.ContentTypeAudio,
					URL:   ptr("https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3"),
				},
				{
					Title:       "Further Listening",
					Type:        models.ContentTypeLink,
					ExternalURL: ptr("https://example.com/podcasts"),
				},
			},
		},
		{
			title:       "Staff Notes",
			description: "Internal material",
			public:      false,
			items: []libsvc.CreateContentRequest{
				{
					Title:       "Grading Rubric",
					Type:        models.ContentTypeLink,
					ExternalURL: ptr("https://example.com/rubric"),
				},
			},
		},
	}
}

// Library creates the sample folders and content through the services, so slugs,
// display orders and table routing follow the same rules as admin edits
func Library(ctx context.Context, folders libsvc.FolderService, content libsvc.ContentService, logger *slog.Logger) error {
	for _, f := range sampleLibrary() {
		if err := createFolder(ctx, folders, content, f, nil, logger); err != nil {
			return err
		}
	}
	return nil
}

func createFolder(ctx context.Context, folders libsvc.FolderService, content libsvc.ContentService, f sampleFolder, parent *models.Folder, logger *slog.Logger) error {
	req := &libsvc.CreateFolderRequest{
		Title:       f.title,
		Description: f.description,
		IsPublic:    &f.public,
		FolderType:  models.FolderTypeRoot,
	}
	if parent != nil {
		req.FolderType = models.FolderTypeSubRoot
		req.ParentID = &parent.ID
	}

	folder, err := folders.CreateFolder(ctx, req)
	if err != nil {
		return fmt.Errorf("create folder %q: %w", f.title, err)
	}
	logger.Info("created folder", "title", folder.Title, "slug", folder.Slug, "public", folder.IsPublic)

	for _, item := range f.items {
		item.FolderID = folder.ID
		created, err := content.CreateContent(ctx, &item)
		if err != nil {
			return fmt.Errorf("create content %q: %w", item.Title, err)
		}
		logger.Info("created content", "title", created.Title, "type", created.Type, "order", created.DisplayOrder)
	}

	for _, child := range f.children {
		if err := createFolder(ctx, folders, content, child, folder, logger); err != nil {
			return err
		}
	}
	return nil
}
