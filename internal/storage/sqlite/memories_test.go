package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDims = 1536

func newTestRepo(t *testing.T) *MemoriesRepo {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "membot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMemoriesRepo(db)
}

// testVector builds a vector whose first component dominates, so
// nearest-neighbor ordering follows the seed distance.
func testVector(seed float32) []float32 {
	v := make([]float32, testDims)
	v[0] = seed
	v[1] = 1
	return v
}

func TestInsertAndQueryRecent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	for i, content := range []string{"first", "second", "third"} {
		_, err := repo.Insert(ctx, "u1", content, testVector(float32(i)), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, "u2", "other author", testVector(9), base)
	require.NoError(t, err)

	recs, err := repo.QueryRecent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "third", recs[0].Content)
	assert.Equal(t, "second", recs[1].Content)
	for _, rec := range recs {
		assert.Equal(t, "u1", rec.AuthorID)
	}
}

func TestQueryTemporalBoundsInclusive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := repo.Insert(ctx, "u1", "at from", testVector(1), base)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "u1", "inside", testVector(2), base.Add(12*time.Hour))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "u1", "at to", testVector(3), base.Add(24*time.Hour))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "u1", "outside", testVector(4), base.Add(48*time.Hour))
	require.NoError(t, err)

	recs, err := repo.QueryTemporal(ctx, "u1", base, base.Add(24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	// newest first
	assert.Equal(t, "at to", recs[0].Content)
	assert.Equal(t, "at from", recs[2].Content)
}

func TestQuerySemanticScopedToAuthor(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := repo.Insert(ctx, "u1", "close match", testVector(1.0), now)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "u1", "far match", testVector(100.0), now)
	require.NoError(t, err)
	// same embedding as the close match but a different author
	_, err = repo.Insert(ctx, "u2", "foreign match", testVector(1.0), now)
	require.NoError(t, err)

	recs, err := repo.QuerySemantic(ctx, "u1", testVector(1.1), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "close match", recs[0].Content)
	assert.Equal(t, "u1", recs[0].AuthorID)
}
