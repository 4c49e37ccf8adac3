package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/genoroot/internal/filestore"
	"github.com/rpggio/genoroot/internal/kv"
	"github.com/rpggio/genoroot/internal/kv/kvtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newStore(t *testing.T, dir string) *filestore.Store {
	t.Helper()
	store, err := filestore.New(dir, nil)
	require.NoError(t, err)
	return store
}

func TestStore_Contract(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store { return newStore(t, t.TempDir()) })
}

func TestStore_FileLayout(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store := newStore(t, dir)

	require.NoError(t, store.Save(ctx, "tree_t1_members", []byte(`[{"id":"m1"}]`)))

	data, err := os.ReadFile(filepath.Join(dir, "tree_t1_members.json"))
	require.NoError(t, err)
	require.Equal(t, `[{"id":"m1"}]`, string(data))

	info, err := os.Stat(filepath.Join(dir, "tree_t1_members.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	// Stray files are not keys.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	keys, err := store.Keys(ctx, "*")
	require.NoError(t, err)
	require.Equal(t, []string{"tree_t1_members"}, keys)
}

func TestStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, t.TempDir())

	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		err := store.Save(ctx, key, []byte(`[]`))
		require.ErrorIs(t, err, filestore.ErrInvalidKey, key)
		_, err = store.Load(ctx, key)
		require.ErrorIs(t, err, filestore.ErrInvalidKey, key)
	}
}

func TestStore_SharedDirectory(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	first := newStore(t, dir)
	second := newStore(t, dir)

	require.NoError(t, first.Save(ctx, "familyTrees", []byte(`[1]`)))
	require.NoError(t, second.Save(ctx, "familyTrees", []byte(`[2]`)))

	value, err := first.Load(ctx, "familyTrees")
	require.NoError(t, err)
	require.Equal(t, `[2]`, string(value))
}

func TestStore_Watch(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	dir := t.TempDir()
	watched := newStore(t, dir)
	other := newStore(t, dir)

	changes := make(chan filestore.Change, 64)
	done := make(chan error, 1)
	go func() {
		done <- watched.Watch(ctx, func(c filestore.Change) {
			select {
			case changes <- c:
			default:
			}
		})
	}()

	// Keep writing until the watcher is registered and reports the write.
	require.Eventually(t, func() bool {
		_ = other.Save(context.Background(), "familyTrees", []byte(`[]`))
		for {
			select {
			case c := <-changes:
				if c == (filestore.Change{Key: "familyTrees", Op: filestore.ChangeSaved}) {
					return true
				}
			default:
				return false
			}
		}
	}, 5*time.Second, 200*time.Millisecond)

	require.NoError(t, watched.Save(context.Background(), "tree_own_members", []byte(`[]`)))
	require.NoError(t, other.Delete(context.Background(), "familyTrees"))

	deadline := time.After(5 * time.Second)
	for deleted := false; !deleted; {
		select {
		case c := <-changes:
			require.NotEqual(t, "tree_own_members", c.Key, "own write reported")
			deleted = c == filestore.Change{Key: "familyTrees", Op: filestore.ChangeDeleted}
		case <-deadline:
			t.Fatal("delete not reported")
		}
	}

	cancel()
	require.NoError(t, <-done)
}
