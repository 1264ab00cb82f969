package library

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"library/internal/config"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
	libsvc "library/internal/domain/services/library"
	"library/internal/httputil"
	"library/internal/repository"
	"library/internal/repository/memory"
)

func TestCreateContent_OrderAndSlug(t *testing.T) {
	f := newFixture(t)
	folder := f.folder(t, "Lectures", true)

	first := f.item(t, folder, "Intro", models.ContentTypePDF, "https://cdn/intro.pdf", "")
	second := f.item(t, folder, "Intro", models.ContentTypePDF, "https://cdn/intro-2.pdf", "")

	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, 1, second.DisplayOrder)
	assert.Equal(t, "lectures_intro", first.Slug)
	assert.Equal(t, "lectures_intro_2", second.Slug)
	assert.Equal(t, "lectures", first.TableName)
}

func TestCreateContent_SlugScopedToTable(t *testing.T) {
	f := newFixture(t)
	public := f.folder(t, "Notes", true)
	private, err := f.folders.CreateFolder(context.Background(), &libsvc.CreateFolderRequest{
		Title:     "Private Notes",
		TableName: "notes",
		IsPublic:  ptr(false),
	})
	require.NoError(t, err)

	a := f.item(t, public, "Week One", models.ContentTypePDF, "https://cdn/a.pdf", "")
	b := f.item(t, private, "Week One", models.ContentTypePDF, "https://cdn/b.pdf", "")

	// Same tag and title, different physical tables
	assert.Equal(t, "notes_week_one", a.Slug)
	assert.Equal(t, "notes_week_one", b.Slug)
}

func TestCreateContent_Validation(t *testing.T) {
	f := newFixture(t)
	folder := f.folder(t, "Docs", true)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   *libsvc.CreateContentRequest
		field string
	}{
		{
			name:  "no location",
			req:   &libsvc.CreateContentRequest{FolderID: folder.ID, Title: "Nowhere"},
			field: "url",
		},
		{
			name:  "blank urls count as missing",
			req:   &libsvc.CreateContentRequest{FolderID: folder.ID, Title: "Blank", URL: ptr(""), ExternalURL: ptr("")},
			field: "url",
		},
		{
			name:  "missing folder",
			req:   &libsvc.CreateContentRequest{Title: "Loose", URL: ptr("https://cdn/x.pdf")},
			field: "folder_id",
		},
		{
			name:  "unknown type",
			req:   &libsvc.CreateContentRequest{FolderID: folder.ID, Title: "Odd", Type: "slides", URL: ptr("https://cdn/x")},
			field: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.content.CreateContent(ctx, tt.req)
			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestCreateContent_DefaultsAndRouting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	private := f.folder(t, "Hidden", false)

	item, err := f.content.CreateContent(ctx, &libsvc.CreateContentRequest{
		FolderID: "hidden", // Slugs resolve too
		Title:    "Secret",
		URL:      ptr("https://cdn/secret.pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypePDF, item.Type)
	assert.Equal(t, private.ID, item.FolderID)

	_, err = f.router.ForVisibility(models.VisibilityPrivate).GetByID(ctx, item.ID)
	assert.NoError(t, err)
	_, err = f.router.ForVisibility(models.VisibilityPublic).GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateContent_ConcurrentAppendsGetDistinctOrders(t *testing.T) {
	f := newFixture(t)
	folder := f.folder(t, "Busy", true)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.content.CreateContent(context.Background(), &libsvc.CreateContentRequest{
				FolderID: folder.ID,
				Title:    "Same Title",
				URL:      ptr("https://cdn/same.pdf"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	items, err := f.content.ListByFolder(context.Background(), folder.ID)
	require.NoError(t, err)
	require.Len(t, items, n)
	for i, it := range items {
		assert.Equal(t, i, it.DisplayOrder)
	}
}

func TestUpdateContent_KeepsLocationInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Docs", true)
	fileOnly := f.item(t, folder, "File", models.ContentTypePDF, "https://cdn/file.pdf", "")
	both := f.item(t, folder, "Both", models.ContentTypePDF, "https://cdn/both.pdf", "https://example.com/both")

	_, err := f.content.UpdateContent(ctx, fileOnly.ID, &libsvc.UpdateContentRequest{
		URL: httputil.OptionalString{Present: true},
	})
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "url", vErr.Field)

	stored, err := f.content.GetContent(ctx, fileOnly.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasURL())

	updated, err := f.content.UpdateContent(ctx, both.ID, &libsvc.UpdateContentRequest{
		URL:   httputil.OptionalString{Present: true},
		Title: ptr("  Reference Only "),
	})
	require.NoError(t, err)
	assert.False(t, updated.HasURL())
	assert.Equal(t, "Reference Only", updated.Title)
}

func TestUpdateContent_FolderScopesLookup(t *testing.T) {
	f := newFixture(t)
	a := f.folder(t, "A", true)
	b := f.folder(t, "B", true)
	item := f.item(t, a, "Item", models.ContentTypePDF, "https://cdn/i.pdf", "")

	_, err := f.content.UpdateContent(context.Background(), item.ID, &libsvc.UpdateContentRequest{
		FolderID: b.ID,
		Title:    ptr("Moved?"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteContent_LeavesGaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Docs", true)
	f.item(t, folder, "A", models.ContentTypePDF, "https://cdn/a.pdf", "")
	middle := f.item(t, folder, "B", models.ContentTypePDF, "https://cdn/b.pdf", "")
	f.item(t, folder, "C", models.ContentTypePDF, "https://cdn/c.pdf", "")

	deleted, err := f.content.DeleteContent(ctx, middle.ID, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, middle.ID, deleted.ID)

	f.item(t, folder, "D", models.ContentTypePDF, "https://cdn/d.pdf", "")
	assert.Equal(t, map[string]int{"A": 0, "C": 2, "D": 3}, f.orders(t, folder))

	_, err = f.content.DeleteContent(ctx, middle.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMoveContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Docs", true)
	a := f.item(t, folder, "A", models.ContentTypePDF, "https://cdn/a.pdf", "")
	b := f.item(t, folder, "B", models.ContentTypePDF, "https://cdn/b.pdf", "")
	c := f.item(t, folder, "C", models.ContentTypePDF, "https://cdn/c.pdf", "")

	moved, err := f.content.MoveContent(ctx, b.ID, folder.ID, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 0, moved.DisplayOrder)
	assert.Equal(t, map[string]int{"B": 0, "A": 1, "C": 2}, f.orders(t, folder))

	// Boundaries are no-ops
	first, err := f.content.MoveContent(ctx, b.ID, folder.ID, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 0, first.DisplayOrder)
	last, err := f.content.MoveContent(ctx, c.ID, "", models.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, 2, last.DisplayOrder)

	_, err = f.content.MoveContent(ctx, a.ID, "", models.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"B": 0, "C": 1, "A": 2}, f.orders(t, folder))
}

func TestMoveContent_SkipsGaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Docs", true)
	f.item(t, folder, "A", models.ContentTypePDF, "https://cdn/a.pdf", "")
	gone := f.item(t, folder, "B", models.ContentTypePDF, "https://cdn/b.pdf", "")
	c := f.item(t, folder, "C", models.ContentTypePDF, "https://cdn/c.pdf", "")
	_, err := f.content.DeleteContent(ctx, gone.ID, "")
	require.NoError(t, err)

	moved, err := f.content.MoveContent(ctx, c.ID, "", models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 0, moved.DisplayOrder)
	assert.Equal(t, map[string]int{"C": 0, "A": 2}, f.orders(t, folder))
}

// racingStore simulates another writer reordering the folder between the neighbour
// read and the swap, or swaps that miss outright
type racingStore struct {
	libraryRepo.ContentStore

	mu    sync.Mutex
	races int
	race  func(ctx context.Context)
	lose  int
}

func (s *racingStore) SwapOrder(ctx context.Context, folderID string, a, b libraryRepo.OrderSlot) (bool, error) {
	s.mu.Lock()
	lose := s.lose > 0
	if lose {
		s.lose--
	}
	s.mu.Unlock()
	if lose {
		return false, nil
	}
	return s.ContentStore.SwapOrder(ctx, folderID, a, b)
}

func (s *racingStore) Neighbor(ctx context.Context, folderID string, order int, dir models.Direction) (*models.Content, error) {
	n, err := s.ContentStore.Neighbor(ctx, folderID, order, dir)
	s.mu.Lock()
	race := s.races > 0
	if race {
		s.races--
	}
	s.mu.Unlock()
	if race && s.race != nil {
		s.race(ctx)
	}
	return n, err
}

func newRacingFixture(t *testing.T) (*fixture, *racingStore) {
	t.Helper()
	db := memory.NewDB()
	racing := &racingStore{ContentStore: memory.NewContentRepository(db, models.VisibilityPublic)}
	router := repository.NewRouter(racing, memory.NewContentRepository(db, models.VisibilityPrivate))
	return newFixtureWithRouter(t, db, router), racing
}

func TestMoveContent_RetriesAfterConcurrentReorder(t *testing.T) {
	f, racing := newRacingFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Docs", true)
	a := f.item(t, folder, "A", models.ContentTypePDF, "https://cdn/a.pdf", "")
	b := f.item(t, folder, "B", models.ContentTypePDF, "https://cdn/b.pdf", "")
	c := f.item(t, folder, "C", models.ContentTypePDF, "https://cdn/c.pdf", "")

	// While C is being moved up, another writer swaps A and B
	racing.races = 1
	racing.race = func(ctx context.Context) {
		ok, err := racing.ContentStore.SwapOrder(ctx, folder.ID,
			libraryRepo.OrderSlot{ID: a.ID, Order: 0},
			libraryRepo.OrderSlot{ID: b.ID, Order: 1},
		)
		require.NoError(t, err)
		require.True(t, ok)
	}

	moved, err := f.content.MoveContent(ctx, c.ID, folder.ID, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 1, moved.DisplayOrder)
	assert.Equal(t, map[string]int{"B": 0, "C": 1, "A": 2}, f.orders(t, folder))
}

func TestMoveContent_ConflictAfterRepeatedRaces(t *testing.T) {
	f, racing := newRacingFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Docs", true)
	f.item(t, folder, "A", models.ContentTypePDF, "https://cdn/a.pdf", "")
	b := f.item(t, folder, "B", models.ContentTypePDF, "https://cdn/b.pdf", "")

	// Every conditional swap misses
	racing.lose = config.MaxReorderAttempts

	_, err := f.content.MoveContent(ctx, b.ID, folder.ID, models.DirectionUp)
	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict), "expected conflict, got %v", err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, map[string]int{"A": 0, "B": 1}, f.orders(t, folder))

	// The next attempt goes through
	moved, err := f.content.MoveContent(ctx, b.ID, folder.ID, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 0, moved.DisplayOrder)
}

func TestMoveContent_ConcurrentMovesKeepOrdersUnique(t *testing.T) {
	f := newFixture(t)
	folder := f.folder(t, "Docs", true)
	var ids []string
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		ids = append(ids, f.item(t, folder, title, models.ContentTypePDF, "https://cdn/"+title+".pdf", "").ID)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dir := models.DirectionUp
			if i%2 == 1 {
				dir = models.DirectionDown
			}
			_, err := f.content.MoveContent(context.Background(), ids[i%len(ids)], folder.ID, dir)
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrConflict)
			}
		}(i)
	}
	wg.Wait()

	seen := map[int]bool{}
	for _, order := range f.orders(t, folder) {
		assert.False(t, seen[order], "order %d used twice", order)
		seen[order] = true
	}
	assert.Len(t, seen, len(ids))
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	public := f.folder(t, "Public", true)
	private := f.folder(t, "Private", false)
	low := f.item(t, public, "Quantum Basics", models.ContentTypePDF, "https://cdn/q.pdf", "")
	high := f.item(t, private, "Notes", models.ContentTypePDF, "https://cdn/n.pdf", "")
	f.item(t, public, "Unrelated", models.ContentTypePDF, "https://cdn/u.pdf", "")
	_, err := f.content.UpdateContent(ctx, high.ID, &libsvc.UpdateContentRequest{Description: ptr("about QUANTUM fields")})
	require.NoError(t, err)
	require.NoError(t, f.router.ForFolder(private).IncrementViewCount(ctx, high.ID))

	found, err := f.content.Search(ctx, "quantum")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, high.ID, found[0].ID)
	assert.Equal(t, low.ID, found[1].ID)

	_, err = f.content.Search(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListByType_PopularAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Media", true)
	clip := f.item(t, folder, "Clip", models.ContentTypeVideo, "https://youtu.be/dQw4w9WgXcQ", "")
	f.item(t, folder, "Paper", models.ContentTypePDF, "https://cdn/p.pdf", "")
	store := f.router.ForFolder(folder)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.IncrementViewCount(ctx, clip.ID))
	}

	videos, err := f.content.ListByType(ctx, models.ContentTypeVideo)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, clip.ID, videos[0].ID)

	_, err = f.content.ListByType(ctx, "slides")
	assert.ErrorIs(t, err, domain.ErrValidation)

	popular, err := f.content.Popular(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, clip.ID, popular[0].ID)

	stats, err := f.content.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.Stats{TotalFolders: 1, TotalContent: 2, TotalViews: 3}, stats)
}

func TestListAllAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := f.folder(t, "Older", true)
	newer := f.folder(t, "Newer", false)
	f.item(t, older, "O1", models.ContentTypePDF, "https://cdn/o1.pdf", "")
	f.item(t, newer, "N1", models.ContentTypePDF, "https://cdn/n1.pdf", "")
	f.item(t, newer, "N2", models.ContentTypePDF, "https://cdn/n2.pdf", "")

	all, err := f.content.ListAll(ctx)
	require.NoError(t, err)
	var titles []string
	for _, it := range all {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"N1", "N2", "O1"}, titles)

	export, err := f.content.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, export.Folders, 2)
	assert.Len(t, export.Content, 3)
	assert.False(t, export.ExportedAt.IsZero())
}

func TestContentStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder := f.folder(t, "Docs", true)
	item := f.item(t, folder, "Paper", models.ContentTypePDF, "https://cdn/p.pdf", "")
	require.NoError(t, f.router.ForFolder(folder).IncrementViewCount(ctx, item.ID))
	require.NoError(t, f.interactions.Append(ctx, &models.Interaction{ContentID: item.ID, InteractionType: models.InteractionView}))

	stats, err := f.content.ContentStats(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalViews)
	assert.NotNil(t, stats.LastViewed)
	assert.Len(t, stats.Interactions, 1)
}

func TestContentSuggestURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder, err := f.folders.CreateFolder(ctx, &libsvc.CreateFolderRequest{Title: "Chemistry", CustomURL: ptr("chem")})
	require.NoError(t, err)

	got, err := f.content.SuggestURL(ctx, folder.ID, "Lab 1")
	require.NoError(t, err)
	assert.Equal(t, "chem_content.01", got)

	_, err = f.content.SuggestURL(ctx, folder.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
