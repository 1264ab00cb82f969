package pdfview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc, err := Parse(samplePDF())
	require.NoError(t, err)
	require.Equal(t, 2, doc.NumPages())

	first, err := doc.Page(1)
	require.NoError(t, err)
	assert.Equal(t, 600.0, first.Width)
	assert.Equal(t, 800.0, first.Height, "MediaBox inherited from the page tree")
	require.Len(t, first.Links, 1, "GoTo links are not URI links")
	assert.Equal(t, "https://example.com/reference", first.Links[0].URL)
	assert.Equal(t, Rect{X1: 100, Y1: 700, X2: 200, Y2: 750}, first.Links[0].Rect)

	second, err := doc.Page(2)
	require.NoError(t, err)
	assert.Equal(t, 792.0, second.Height)
	assert.Empty(t, second.Links)

	_, err = doc.Page(3)
	assert.Error(t, err)
}

func TestParse_NotPDF(t *testing.T) {
	_, err := Parse([]byte("hello, world"))
	assert.ErrorIs(t, err, ErrNotPDF)
}
