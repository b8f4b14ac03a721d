package repositories

import (
	"strings"
	"sync"
	"testing"

	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestHashTagGetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	repo := NewPostgresHashTagRepository(db)

	tags, created, err := repo.GetOrCreate(ctx, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	require.Len(t, tags, 2)
	assert.Equal(t, "b", tags[0].Name)
	assert.Equal(t, "a", tags[1].Name)

	again, created, err := repo.GetOrCreate(ctx, []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, tags[1].ID, again[0].ID)

	none, created, err := repo.GetOrCreate(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, none)
}

func TestHashTagSearchPrefix(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	repo := NewPostgresHashTagRepository(db)
	_, _, err := repo.GetOrCreate(ctx, []string{"Sunset", "sunrise", "sea", "un_sun", "su%"})
	require.NoError(t, err)

	tests := []struct {
		keyword string
		want    []string
	}{
		{"su", []string{"Sunset", "su%", "sunrise"}},
		{"SUN", []string{"Sunset", "sunrise"}},
		{"su%", []string{"su%"}},
		{"un_", []string{"un_sun"}},
		{"x", []string{}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tags, err := repo.SearchPrefix(ctx, tt.keyword, 0)
			require.NoError(t, err)
			names := make([]string, 0, len(tags))
			for _, tag := range tags {
				names = append(names, tag.Name)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestHashTagSearchPrefixLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := t.Context()
	repo := NewPostgresHashTagRepository(db)
	_, _, err := repo.GetOrCreate(ctx, []string{"a1", "a2", "a3"})
	require.NoError(t, err)

	tags, err := repo.SearchPrefix(ctx, "a", 2)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestHashTagNameIsUnbounded(t *testing.T) {
	s, err := schema.Parse(&models.HashTag{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	name := s.LookUpField("Name")
	require.NotNil(t, name)
	assert.Equal(t, schema.DataType("text"), name.DataType)
	assert.Zero(t, name.Size)

	db := setupTestDB(t)
	long := strings.Repeat("가", 300)
	tags, created, err := NewPostgresHashTagRepository(db).GetOrCreate(t.Context(), []string{long})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, tags, 1)
	assert.Equal(t, long, tags[0].Name)
}
