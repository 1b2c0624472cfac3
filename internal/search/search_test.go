package search

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaychat/relay-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexProfile(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	user := &domain.User{
		ID:        "user-1",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Anderson",
	}

	require.NoError(t, index.IndexProfile(context.Background(), user))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_PrefixMatchesUsername(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexProfile(ctx, &domain.User{ID: "user-1", Username: "alice"}))
	require.NoError(t, index.IndexProfile(ctx, &domain.User{ID: "user-2", Username: "alison"}))
	require.NoError(t, index.IndexProfile(ctx, &domain.User{ID: "user-3", Username: "bob"}))

	result, err := index.Search(ctx, SearchParams{Query: "ali", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)

	ids := []string{result.Hits[0].ID, result.Hits[1].ID}
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, ids)
}

func TestSearch_MatchesFirstAndLastName(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexProfile(ctx, &domain.User{
		ID: "user-1", Username: "ajones", FirstName: "Alice", LastName: "Jones",
	}))

	result, err := index.Search(ctx, SearchParams{Query: "alice", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "user-1", result.Hits[0].ID)

	result, err = index.Search(ctx, SearchParams{Query: "jon", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
}

func TestSearch_TypeFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexProfile(ctx, &domain.User{ID: "user-1", Username: "devs-fan"}))
	require.NoError(t, index.IndexGroup(ctx, &domain.Group{
		ID: "group-1", Name: "devs", DisplayName: "Developers", MemberIDs: []string{"a", "b"}, MemberCount: 2,
	}))

	result, err := index.Search(ctx, SearchParams{
		Query: "devs",
		Types: []string{string(DocTypeGroup)},
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "group-1", result.Hits[0].ID)
	assert.Equal(t, DocTypeGroup, result.Hits[0].Type)
	assert.Equal(t, "Developers", result.Hits[0].DisplayName)
	assert.Equal(t, 2, result.Hits[0].MemberCount)
}

func TestSearch_ExcludesDeletedByDefault(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexProfile(ctx, &domain.User{ID: "user-1", Username: "alice"}))
	require.NoError(t, index.IndexProfile(ctx, &domain.User{ID: "user-2", Username: "alina", DeleteAt: 123}))

	result, err := index.Search(ctx, SearchParams{Query: "ali", Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "user-1", result.Hits[0].ID)

	result, err = index.Search(ctx, SearchParams{Query: "ali", AllowInactive: true, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexProfile(ctx, &domain.User{ID: "user-1", Username: "alice"}))
	require.NoError(t, index.IndexGroup(ctx, &domain.Group{ID: "group-1", Name: "devs"}))

	result, err := index.Search(ctx, SearchParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)
}

func TestSearchIndex_DeleteProfile(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexProfile(ctx, &domain.User{ID: "user-1", Username: "alice"}))
	require.NoError(t, index.DeleteProfile(ctx, "user-1"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexProfile(ctx, &domain.User{ID: "user-1", Username: "alice"}))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
