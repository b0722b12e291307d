package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirai-web3/Discord-Auto-Reaction-Bot/internal/database"
)

func newTestRepo(t *testing.T) *CursorRepository {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "cursor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewCursorRepository(db.GORM)
	require.NoError(t, err)
	return repo
}

func TestCursorRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("missing record reported as absent", func(t *testing.T) {
		repo := newTestRepo(t)

		_, found, err := repo.Load(ctx, "chan-1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("save and load roundtrip", func(t *testing.T) {
		repo := newTestRepo(t)

		require.NoError(t, repo.Save(ctx, "chan-1", "m100"))

		id, found, err := repo.Load(ctx, "chan-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "m100", id)
	})

	t.Run("save upserts on advance", func(t *testing.T) {
		repo := newTestRepo(t)

		require.NoError(t, repo.Save(ctx, "chan-1", "m100"))
		require.NoError(t, repo.Save(ctx, "chan-1", "m200"))

		id, found, err := repo.Load(ctx, "chan-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "m200", id)
	})

	t.Run("channels are independent", func(t *testing.T) {
		repo := newTestRepo(t)

		require.NoError(t, repo.Save(ctx, "chan-1", "m100"))

		_, found, err := repo.Load(ctx, "chan-2")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
