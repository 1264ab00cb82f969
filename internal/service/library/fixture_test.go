package library

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	models "library/internal/domain/models/library"
	libraryRepo "library/internal/domain/repositories/library"
	libsvc "library/internal/domain/services/library"
	"library/internal/repository"
	"library/internal/repository/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type fixture struct {
	db           *memory.DB
	folderRepo   libraryRepo.FolderRepository
	router       *repository.Router
	interactions libraryRepo.InteractionRepository
	folders      libsvc.FolderService
	content      libsvc.ContentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	return newFixtureWithRouter(t, db, repository.NewRouter(
		memory.NewContentRepository(db, models.VisibilityPublic),
		memory.NewContentRepository(db, models.VisibilityPrivate),
	))
}

func newFixtureWithRouter(t *testing.T, db *memory.DB, router *repository.Router) *fixture {
	t.Helper()
	folderRepo := memory.NewFolderRepository(db)
	interactions := memory.NewInteractionRepository(db)
	tm := memory.NewTransactionManager(db)
	logger := discardLogger()

	return &fixture{
		db:           db,
		folderRepo:   folderRepo,
		router:       router,
		interactions: interactions,
		folders:      NewFolderService(folderRepo, router, tm, logger),
		content:      NewContentService(folderRepo, router, interactions, tm, logger),
	}
}

func (f *fixture) folder(t *testing.T, title string, public bool) *models.Folder {
	t.Helper()
	folder, err := f.folders.CreateFolder(context.Background(), &libsvc.CreateFolderRequest{
		Title:    title,
		IsPublic: &public,
	})
	require.NoError(t, err)
	return folder
}

func (f *fixture) item(t *testing.T, folder *models.Folder, title string, typ models.ContentType, url, external string) *models.Content {
	t.Helper()
	item, err := f.content.CreateContent(context.Background(), &libsvc.CreateContentRequest{
		FolderID:    folder.ID,
		Title:       title,
		Type:        typ,
		URL:         stringOrNil(url),
		ExternalURL: stringOrNil(external),
	})
	require.NoError(t, err)
	return item
}

// orders returns the display orders of a folder's items, in display order
func (f *fixture) orders(t *testing.T, folder *models.Folder) map[string]int {
	t.Helper()
	items, err := f.content.ListByFolder(context.Background(), folder.ID)
	require.NoError(t, err)
	out := make(map[string]int, len(items))
	for _, it := range items {
		out[it.Title] = it.DisplayOrder
	}
	return out
}

// recordedAnalytics captures telemetry calls synchronously
type recordedAnalytics struct {
	mu           sync.Mutex
	views        []string
	lastPages    map[string]int
	interactions []models.Interaction
}

func newRecordedAnalytics() *recordedAnalytics {
	return &recordedAnalytics{lastPages: make(map[string]int)}
}

func (r *recordedAnalytics) IncrementViewCount(ctx context.Context, contentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, contentID)
}

func (r *recordedAnalytics) UpdateLastPage(ctx context.Context, contentID string, page int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastPages[contentID] = page
}

func (r *recordedAnalytics) LogInteraction(ctx context.Context, entry *models.Interaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interactions = append(r.interactions, *entry)
}

func ptr[T any](v T) *T {
	return &v
}
