package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/wellness-be/internal/database"
	"github.com/isdelr/wellness-be/internal/models"
	"github.com/isdelr/wellness-be/internal/store"
)

func strPtr(s string) *string { return &s }

func newSQLiteStore(t *testing.T) *store.SQLiteUserStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")
	require.NoError(t, database.Migrate("sqlite", path))

	db, err := database.NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return store.NewSQLiteUserStore(db)
}

func TestSQLiteUserStore_Create(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	t.Run("assigns sequential ids", func(t *testing.T) {
		first := &models.User{Username: "alice", PasswordHash: "hash", Name: strPtr("Alice")}
		require.NoError(t, s.Create(ctx, first))
		second := &models.User{Username: "bob", PasswordHash: "hash"}
		require.NoError(t, s.Create(ctx, second))

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
		assert.False(t, first.CreatedAt.IsZero())
		require.NotNil(t, first.Name)
		assert.Equal(t, "Alice", *first.Name)
		assert.Nil(t, second.Name)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		err := s.Create(ctx, &models.User{Username: "alice", PasswordHash: "other"})
		assert.ErrorIs(t, err, store.ErrDuplicateUsername)

		stored, err := s.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "hash", stored.PasswordHash)
	})
}

func TestSQLiteUserStore_ConcurrentDuplicateCreate(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Create(ctx, &models.User{Username: "racer", PasswordHash: "hash"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, store.ErrDuplicateUsername):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, dupes)
}

func TestSQLiteUserStore_Get(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	user := &models.User{Username: "alice", PasswordHash: "hash", Gender: strPtr("Female")}
	require.NoError(t, s.Create(ctx, user))

	byID, err := s.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "Female", *byID.Gender)

	byName, err := s.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = s.GetByID(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSQLiteUserStore_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	user := &models.User{
		Username:          "alice",
		PasswordHash:      "hash",
		AgeGroup:          strPtr("21-26"),
		Gender:            strPtr("Female"),
		PreferredLanguage: strPtr("English"),
	}
	require.NoError(t, s.Create(ctx, user))

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := s.UpdateProfile(ctx, user.ID, models.ProfileUpdate{Name: strPtr("Alice")})
		require.NoError(t, err)

		assert.Equal(t, "Alice", *updated.Name)
		assert.Equal(t, "21-26", *updated.AgeGroup)
		assert.Equal(t, "Female", *updated.Gender)
		assert.Equal(t, "English", *updated.PreferredLanguage)
		assert.Equal(t, "hash", updated.PasswordHash)
	})

	t.Run("empty update changes nothing", func(t *testing.T) {
		updated, err := s.UpdateProfile(ctx, user.ID, models.ProfileUpdate{})
		require.NoError(t, err)
		assert.Equal(t, "Alice", *updated.Name)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.UpdateProfile(ctx, 999, models.ProfileUpdate{Name: strPtr("x")})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	require.NoError(t, s.Ping(ctx))
}
