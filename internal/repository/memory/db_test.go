package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"library/internal/domain"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
)

func seedFolder(t *testing.T, repo libraryRepo.FolderRepository, slug string) *models.Folder {
	t.Helper()
	f := &models.Folder{Title: slug, Slug: slug, TableName: "docs", IsPublic: true, FolderType: models.FolderTypeRoot}
	require.NoError(t, repo.Create(context.Background(), f))
	return f
}

func TestExecTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	folders := NewFolderRepository(db)
	tm := NewTransactionManager(db)

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		require.NoError(t, folders.Create(ctx, &models.Folder{Title: "lost", Slug: "lost", FolderType: models.FolderTypeRoot}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := folders.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestExecTx_Nested(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	folders := NewFolderRepository(db)
	tm := NewTransactionManager(db)

	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		return tm.ExecTx(ctx, func(ctx context.Context) error {
			return folders.Create(ctx, &models.Folder{Title: "kept", Slug: "kept", FolderType: models.FolderTypeRoot})
		})
	})
	require.NoError(t, err)

	_, err = folders.GetBySlug(ctx, "kept")
	assert.NoError(t, err)
}

func TestExecTx_RollbackKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	folder := seedFolder(t, NewFolderRepository(db), "docs")
	store := NewContentRepository(db, models.VisibilityPublic)
	item := &models.Content{FolderID: folder.ID, Title: "a", Slug: "docs_a"}
	require.NoError(t, store.Create(ctx, item))
	tm := NewTransactionManager(db)

	entered := make(chan struct{})
	viewed := make(chan error)
	boom := errors.New("boom")
	go func() {
		<-entered
		viewed <- store.IncrementViewCount(ctx, item.ID)
	}()

	err := tm.ExecTx(ctx, func(txCtx context.Context) error {
		close(entered)
		require.NoError(t, store.UpdateLastPage(txCtx, item.ID, 4))
		select {
		case err := <-viewed:
			t.Errorf("view recorded inside the transaction: %v", err)
		case <-time.After(20 * time.Millisecond):
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, <-viewed)

	got, err := store.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)
	assert.Nil(t, got.LastPage)
}

func TestContentRepository_Constraints(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	folder := seedFolder(t, NewFolderRepository(db), "docs")
	store := NewContentRepository(db, models.VisibilityPublic)

	first := &models.Content{FolderID: folder.ID, Title: "a", Slug: "docs_a", DisplayOrder: 0}
	require.NoError(t, store.Create(ctx, first))
	assert.Equal(t, "docs", first.TableName)

	dupOrder := &models.Content{FolderID: folder.ID, Title: "b", Slug: "docs_b", DisplayOrder: 0}
	assert.ErrorIs(t, store.Create(ctx, dupOrder), domain.ErrConflict)

	dupSlug := &models.Content{FolderID: folder.ID, Title: "a", Slug: "docs_a", DisplayOrder: 1}
	assert.ErrorIs(t, store.Create(ctx, dupSlug), domain.ErrConflict)

	orphan := &models.Content{FolderID: "missing", Title: "x", Slug: "x"}
	assert.ErrorIs(t, store.Create(ctx, orphan), domain.ErrNotFound)
}

func TestContentRepository_SwapOrder(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	folder := seedFolder(t, NewFolderRepository(db), "docs")
	store := NewContentRepository(db, models.VisibilityPublic)

	a := &models.Content{FolderID: folder.ID, Title: "a", Slug: "docs_a", DisplayOrder: 0}
	b := &models.Content{FolderID: folder.ID, Title: "b", Slug: "docs_b", DisplayOrder: 5}
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))

	down, err := store.Neighbor(ctx, folder.ID, 0, models.DirectionDown)
	require.NoError(t, err)
	require.NotNil(t, down)
	assert.Equal(t, b.ID, down.ID, "gaps in display_order are skipped")

	up, err := store.Neighbor(ctx, folder.ID, 0, models.DirectionUp)
	require.NoError(t, err)
	assert.Nil(t, up)

	ok, err := store.SwapOrder(ctx, folder.ID, libraryRepo.OrderSlot{ID: a.ID, Order: 0}, libraryRepo.OrderSlot{ID: b.ID, Order: 5})
	require.NoError(t, err)
	assert.True(t, ok)

	stale, err := store.SwapOrder(ctx, folder.ID, libraryRepo.OrderSlot{ID: a.ID, Order: 0}, libraryRepo.OrderSlot{ID: b.ID, Order: 5})
	require.NoError(t, err)
	assert.False(t, stale, "expected orders no longer hold")

	items, err := store.ListByFolder(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, 0, items[0].DisplayOrder)
	assert.Equal(t, 5, items[1].DisplayOrder)
}

func TestContentRepository_MoveFolderTo(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	folder := seedFolder(t, NewFolderRepository(db), "docs")
	public := NewContentRepository(db, models.VisibilityPublic)
	private := NewContentRepository(db, models.VisibilityPrivate)

	require.NoError(t, public.Create(ctx, &models.Content{FolderID: folder.ID, Title: "a", Slug: "docs_a"}))

	n, err := public.MoveFolderTo(ctx, folder.ID, private)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, _ := public.CountByFolder(ctx, folder.ID)
	moved, _ := private.CountByFolder(ctx, folder.ID)
	assert.Equal(t, 0, left)
	assert.Equal(t, 1, moved)
}
