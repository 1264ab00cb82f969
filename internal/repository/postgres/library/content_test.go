package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	models "library/internal/domain/models/library"
	"library/internal/repository/postgres"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}

func TestNewContentRepository_SelectsTable(t *testing.T) {
	config := &postgres.RepositoryConfig{Tables: postgres.NewTableNames("test_")}

	public := NewContentRepository(config, models.VisibilityPublic).(*PostgresContentRepository)
	private := NewContentRepository(config, models.VisibilityPrivate).(*PostgresContentRepository)

	assert.Equal(t, "test_content_public", public.table)
	assert.Equal(t, "test_content_private", private.table)
	assert.Equal(t, models.VisibilityPrivate, private.Visibility())
}
