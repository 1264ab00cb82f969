package pdfview

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"library/internal/domain"
	models "library/internal/domain/models/library"
)

type sampleLoader struct {
	loads int
}

func (l *sampleLoader) Load(ctx context.Context, url string) (*Document, error) {
	l.loads++
	return Parse(samplePDF())
}

func newNavigator(capacity int) (*Navigator, *sampleLoader) {
	loader := &sampleLoader{}
	return NewNavigator(loader, capacity, slog.New(slog.NewJSONHandler(io.Discard, nil))), loader
}

func TestNavigator_OpenAndLookup(t *testing.T) {
	ctx := context.Background()
	nav, _ := newNavigator(0)
	item := pdfItem("https://cdn.example.com/report.pdf")

	var pages []int
	session, err := nav.Open(ctx, "s1", item, 2, func(_ context.Context, p int) { pages = append(pages, p) })
	require.NoError(t, err)
	assert.Equal(t, 2, session.View().Page)

	got, err := nav.Session("s1", item.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)
	got.Prev(ctx)
	assert.Equal(t, []int{1}, pages)

	_, err = nav.Session("s2", item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Reopening replaces the session
	again, err := nav.Open(ctx, "s1", item, 1, nil)
	require.NoError(t, err)
	got, err = nav.Session("s1", item.ID)
	require.NoError(t, err)
	assert.Same(t, again, got)

	nav.Close("s1", item.ID)
	_, err = nav.Session("s1", item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	nav.Close("s1", item.ID)
}

func TestNavigator_Rejects(t *testing.T) {
	ctx := context.Background()
	nav, loader := newNavigator(0)

	_, err := nav.Open(ctx, "", pdfItem("https://cdn.example.com/a.pdf"), 1, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	video := pdfItem("https://cdn.example.com/a.mp4")
	video.Type = models.ContentTypeVideo
	_, err = nav.Open(ctx, "s1", video, 1, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	noFile := &models.Content{ID: "c2", Type: models.ContentTypePDF}
	_, err = nav.Open(ctx, "s1", noFile, 1, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Zero(t, loader.loads)
}

func TestNavigator_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	nav, _ := newNavigator(2)
	item := pdfItem("https://cdn.example.com/report.pdf")

	for _, viewer := range []string{"a", "b", "c"} {
		_, err := nav.Open(ctx, viewer, item, 1, nil)
		require.NoError(t, err)
	}

	_, err := nav.Session("a", item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	for _, viewer := range []string{"b", "c"} {
		_, err := nav.Session(viewer, item.ID)
		assert.NoError(t, err)
	}
}
