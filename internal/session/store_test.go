package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/kannada-chat/backend/internal/config"
	"github.com/zhouzirui/kannada-chat/backend/internal/model/chat"
)

func storeFactories(t *testing.T) map[string]func(ttl time.Duration) Store {
	t.Helper()
	return map[string]func(ttl time.Duration) Store{
		"memory": func(ttl time.Duration) Store {
			return NewMemoryStore(ttl)
		},
		"filesystem": func(ttl time.Duration) Store {
			store, err := NewFileStore(t.TempDir(), ttl)
			require.NoError(t, err)
			return store
		},
		"sqlite": func(ttl time.Duration) Store {
			store, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "sessions.db"), ttl)
			require.NoError(t, err)
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(time.Hour)

			_, err := store.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			history := chat.History{chat.UserMessage("ನಮಸ್ಕಾರ"), chat.AssistantMessage("Hello!")}
			require.NoError(t, store.Put(ctx, "abc", history))

			got, err := store.Get(ctx, "abc")
			require.NoError(t, err)
			assert.Equal(t, history, got)

			require.NoError(t, store.Put(ctx, "abc", chat.History{}))
			got, err = store.Get(ctx, "abc")
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, store.Delete(ctx, "abc"))
			require.NoError(t, store.Delete(ctx, "abc"))
			_, err = store.Get(ctx, "abc")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreIsolatesSessions(t *testing.T) {
	ctx := context.Background()

	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(0)

			require.NoError(t, store.Put(ctx, "a", chat.History{chat.UserMessage("from a")}))
			require.NoError(t, store.Put(ctx, "b", chat.History{chat.UserMessage("from b")}))

			a, err := store.Get(ctx, "a")
			require.NoError(t, err)
			require.Len(t, a, 1)
			assert.Equal(t, "from a", a[0].Content)
		})
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	history := chat.History{chat.UserMessage("original")}
	require.NoError(t, store.Put(ctx, "id", history))
	history[0].Content = "mutated"

	got, err := store.Get(ctx, "id")
	require.NoError(t, err)
	got[0].Content = "mutated again"

	again, err := store.Get(ctx, "id")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}

func TestStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	mem := NewMemoryStore(time.Minute)
	mem.now = func() time.Time { return now }
	require.NoError(t, mem.Put(ctx, "id", chat.History{chat.UserMessage("hi")}))
	mem.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := mem.Get(ctx, "id")
	assert.ErrorIs(t, err, ErrNotFound)

	files, err := NewFileStore(t.TempDir(), time.Minute)
	require.NoError(t, err)
	files.now = func() time.Time { return now }
	require.NoError(t, files.Put(ctx, "id", chat.History{chat.UserMessage("hi")}))
	files.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = files.Get(ctx, "id")
	assert.ErrorIs(t, err, ErrNotFound)

	db, err := OpenSQLiteStore(ctx, filepath.Join(t.TempDir(), "s.db"), time.Minute)
	require.NoError(t, err)
	defer db.Close()
	db.now = func() time.Time { return now }
	require.NoError(t, db.Put(ctx, "id", chat.History{chat.UserMessage("hi")}))
	db.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = db.Get(ctx, "id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreKeepsSessionRefreshedDuringExpiry(t *testing.T) {
	ctx := context.Background()
	base := time.Now()
	later := base.Add(2 * time.Minute)

	mem := NewMemoryStore(time.Minute)
	mem.now = func() time.Time { return base }
	require.NoError(t, mem.Put(ctx, "id", chat.History{chat.UserMessage("stale")}))

	// The first clock read happens after Get drops its read lock. A Put lands there.
	refreshed := false
	mem.now = func() time.Time {
		if !refreshed {
			refreshed = true
			require.NoError(t, mem.Put(ctx, "id", chat.History{chat.UserMessage("fresh")}))
		}
		return later
	}

	history, err := mem.Get(ctx, "id")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "fresh", history[0].Content)
}

func TestSQLiteMigrationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	first, err := OpenSQLiteStore(ctx, path, 0)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "id", chat.History{chat.UserMessage("kept")}))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteStore(ctx, path, 0)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "id")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].Content)
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, closeFn, err := Open(ctx, config.SessionConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	require.NoError(t, closeFn())

	store, closeFn, err = Open(ctx, config.SessionConfig{Backend: config.BackendFilesystem, Dir: filepath.Join(dir, "files")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
	require.NoError(t, closeFn())

	store, closeFn, err = Open(ctx, config.SessionConfig{Backend: config.BackendSQLite, DBPath: filepath.Join(dir, "db", "s.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, closeFn())

	_, _, err = Open(ctx, config.SessionConfig{Backend: "redis"})
	require.Error(t, err)
}
