package library

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	libsvc "library/internal/domain/services/library"
	"library/internal/httputil"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"My Chats!!", "my_chats"},
		{"  Hello   World  ", "hello_world"},
		{"Physics - Part 2", "physics_part_2"},
		{"already_slugged", "already_slugged"},
		{"!!!", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	ctx := context.Background()
	used := map[string]bool{"docs": true}
	for n := 2; n < maxSlugSuffix; n++ {
		used[fmt.Sprintf("docs_%d", n)] = true
	}
	taken := func(_ context.Context, slug string) (bool, error) { return used[slug], nil }

	slug, err := uniqueSlug(ctx, "docs", taken)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("docs_%d", maxSlugSuffix), slug)

	used[slug] = true
	slug, err = uniqueSlug(ctx, "docs", taken)
	require.NoError(t, err)
	assert.Regexp(t, `^docs_[0-9a-f]{8}$`, slug)

	slug, err = uniqueSlug(ctx, "notes", taken)
	require.NoError(t, err)
	assert.Equal(t, "notes", slug)

	boom := errors.New("boom")
	_, err = uniqueSlug(ctx, "docs", func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestCreateFolder_Defaults(t *testing.T) {
	f := newFixture(t)

	folder, err := f.folders.CreateFolder(context.Background(), &libsvc.CreateFolderRequest{Title: "Lecture Notes 2024"})
	require.NoError(t, err)

	assert.Equal(t, "lecture_notes_2024", folder.Slug)
	assert.Equal(t, "lecture_notes", folder.TableName)
	assert.True(t, folder.IsPublic)
	assert.Equal(t, models.FolderTypeRoot, folder.FolderType)
	assert.Equal(t, 0, folder.Depth)
	assert.Equal(t, "lecture_notes_2024", folder.Path)
}

func TestCreateFolder_UniqueSlug(t *testing.T) {
	f := newFixture(t)

	first := f.folder(t, "Physics", true)
	second := f.folder(t, "Physics", false)
	third := f.folder(t, "physics!", true)

	assert.Equal(t, "physics", first.Slug)
	assert.Equal(t, "physics_2", second.Slug)
	assert.Equal(t, "physics_3", third.Slug)
}

func TestCreateFolder_Hierarchy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.folder(t, "Courses", true)

	sub, err := f.folders.CreateFolder(ctx, &libsvc.CreateFolderRequest{
		Title:      "Algebra",
		FolderType: models.FolderTypeSubRoot,
		ParentID:   &root.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sub.Depth)
	assert.Equal(t, "courses/algebra", sub.Path)

	tests := []struct {
		name  string
		req   *libsvc.CreateFolderRequest
		field string
	}{
		{
			name:  "sub_root without parent",
			req:   &libsvc.CreateFolderRequest{Title: "Orphan", FolderType: models.FolderTypeSubRoot},
			field: "parent_id",
		},
		{
			name:  "root with parent",
			req:   &libsvc.CreateFolderRequest{Title: "Nested", FolderType: models.FolderTypeRoot, ParentID: &root.ID},
			field: "parent_id",
		},
		{
			name:  "parent is a sub_root",
			req:   &libsvc.CreateFolderRequest{Title: "Deep", FolderType: models.FolderTypeSubRoot, ParentID: &sub.ID},
			field: "parent_id",
		},
		{
			name:  "bad table name",
			req:   &libsvc.CreateFolderRequest{Title: "Bad", TableName: "Bad-Name"},
			field: "table_name",
		},
		{
			name:  "bad custom url",
			req:   &libsvc.CreateFolderRequest{Title: "Bad", CustomURL: ptr("Has Spaces")},
			field: "custom_url",
		},
		{
			name:  "missing title",
			req:   &libsvc.CreateFolderRequest{Title: "   ", TableName: "docs"},
			field: "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.folders.CreateFolder(ctx, tt.req)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestGetFolder_ByIDOrSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Reading List", true)

	byID, err := f.folders.GetFolder(ctx, folder.ID)
	require.NoError(t, err)
	bySlug, err := f.folders.GetFolder(ctx, "reading_list")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, bySlug.ID)

	_, err = f.folders.GetFolder(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFolders_ItemCounts(t *testing.T) {
	f := newFixture(t)
	public := f.folder(t, "Public", true)
	private := f.folder(t, "Private", false)
	f.item(t, public, "One", models.ContentTypePDF, "https://cdn/1.pdf", "")
	f.item(t, public, "Two", models.ContentTypePDF, "https://cdn/2.pdf", "")
	f.item(t, private, "Three", models.ContentTypeLink, "", "https://example.com")

	folders, err := f.folders.ListFolders(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 2)

	// Newest first
	assert.Equal(t, private.ID, folders[0].ID)
	assert.Equal(t, 1, folders[0].ItemCount)
	assert.Equal(t, 2, folders[1].ItemCount)
}

func TestUpdateFolder_TitleRegeneratesSlug(t *testing.T) {
	f := newFixture(t)
	folder := f.folder(t, "Draft", true)

	updated, err := f.folders.UpdateFolder(context.Background(), folder.ID, &libsvc.UpdateFolderRequest{
		Title: ptr("Final Version"),
	})
	require.NoError(t, err)
	assert.Equal(t, "final_version", updated.Slug)
}

func TestUpdateFolder_VisibilityMovesContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Archive", true)
	item := f.item(t, folder, "Old Notes", models.ContentTypePDF, "https://cdn/old.pdf", "")

	_, err := f.folders.UpdateFolder(ctx, folder.ID, &libsvc.UpdateFolderRequest{IsPublic: ptr(false)})
	require.NoError(t, err)

	_, err = f.router.ForVisibility(models.VisibilityPublic).GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	moved, err := f.router.ForVisibility(models.VisibilityPrivate).GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.DisplayOrder, moved.DisplayOrder)

	// Routing follows the flag: the item is still listed under its folder
	items, err := f.content.ListByFolder(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
}

func TestUpdateFolder_CannotDemoteFolderWithChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.folder(t, "Parent", true)
	other := f.folder(t, "Other", true)
	_, err := f.folders.CreateFolder(ctx, &libsvc.CreateFolderRequest{
		Title:      "Child",
		FolderType: models.FolderTypeSubRoot,
		ParentID:   &parent.ID,
	})
	require.NoError(t, err)

	subRoot := models.FolderTypeSubRoot
	_, err = f.folders.UpdateFolder(ctx, parent.ID, &libsvc.UpdateFolderRequest{
		FolderType: &subRoot,
		ParentID:   httputil.OptionalString{Present: true, Value: &other.ID},
	})
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "folder_type", vErr.Field)
}

func TestUpdateFolder_RequiresAField(t *testing.T) {
	f := newFixture(t)
	folder := f.folder(t, "Any", true)

	_, err := f.folders.UpdateFolder(context.Background(), folder.ID, &libsvc.UpdateFolderRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteFolder_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.folder(t, "Root", true)
	child, err := f.folders.CreateFolder(ctx, &libsvc.CreateFolderRequest{
		Title:      "Child",
		FolderType: models.FolderTypeSubRoot,
		ParentID:   &root.ID,
		IsPublic:   ptr(false),
	})
	require.NoError(t, err)
	f.item(t, root, "Root Item", models.ContentTypePDF, "https://cdn/a.pdf", "")
	f.item(t, child, "Child Item", models.ContentTypePDF, "https://cdn/b.pdf", "")

	require.NoError(t, f.folders.DeleteFolder(ctx, root.ID))

	_, err = f.folders.GetFolder(ctx, child.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stats, err := f.content.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalFolders)
	assert.Equal(t, 0, stats.TotalContent)
}

func TestFolderSuggestURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.folder(t, "Biology", true)

	got, err := f.folders.SuggestURL(ctx, &libsvc.SuggestFolderURLRequest{Title: "Cell Division"})
	require.NoError(t, err)
	assert.Equal(t, "cell_division", got)

	got, err = f.folders.SuggestURL(ctx, &libsvc.SuggestFolderURLRequest{
		Title:      "Cell Division",
		FolderType: models.FolderTypeSubRoot,
		ParentID:   &parent.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "biology_sub.01", got)
}
