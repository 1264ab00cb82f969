package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedTypes_Category(t *testing.T) {
	types := DefaultAllowedTypes()

	tests := []struct {
		mime string
		want string
	}{
		{"application/pdf", "pdf"},
		{"video/webm", "video"},
		{"image/svg+xml", "image"},
		{"audio/wav", "audio"},
		{"application/zip", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, types.Category(tt.mime))
		})
	}
}

func TestLoadAllowedTypes(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		types, err := LoadAllowedTypes("")
		require.NoError(t, err)
		assert.Equal(t, DefaultAllowedTypes(), types)
	})

	t.Run("reads yaml override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "types.yaml")
		require.NoError(t, os.WriteFile(path, []byte("allowed_types:\n  pdf: [application/pdf]\n  image: [image/png]\n"), 0o644))

		types, err := LoadAllowedTypes(path)
		require.NoError(t, err)
		assert.Equal(t, "image", types.Category("image/png"))
		assert.Equal(t, "", types.Category("image/jpeg"))
	})

	t.Run("rejects empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "types.yaml")
		require.NoError(t, os.WriteFile(path, []byte("other: 1\n"), 0o644))

		_, err := LoadAllowedTypes(path)
		assert.Error(t, err)
	})
}

func TestGetTablePrefix(t *testing.T) {
	t.Setenv("TABLE_PREFIX", "")

	assert.Equal(t, "prod_", getTablePrefix("prod"))
	assert.Equal(t, "test_", getTablePrefix("test"))
	assert.Equal(t, "dev_", getTablePrefix("staging"))

	t.Setenv("TABLE_PREFIX", "custom_")
	assert.Equal(t, "custom_", getTablePrefix("prod"))
}
