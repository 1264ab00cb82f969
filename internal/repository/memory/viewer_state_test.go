package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	models "library/internal/domain/models/library"
)

func TestViewerStateRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewViewerStateRepository()

	prefs, err := repo.GetPreferences(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, prefs.DarkMode)

	require.NoError(t, repo.SavePreferences(ctx, "s1", &models.ViewerPreferences{DarkMode: true}))
	prefs, err = repo.GetPreferences(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, prefs.DarkMode)

	pos, err := repo.GetPlayback(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Nil(t, pos)

	require.NoError(t, repo.SavePlayback(ctx, "s1", &models.PlaybackPosition{ContentID: "c1", Position: 7}))
	pos, err = repo.GetPlayback(ctx, "s1", "c1")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, 7, pos.Position)

	other, err := repo.GetPlayback(ctx, "s2", "c1")
	require.NoError(t, err)
	assert.Nil(t, other, "sessions are isolated")
}
