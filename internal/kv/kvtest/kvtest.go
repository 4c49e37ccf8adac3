// Package kvtest holds the behavior every kv.Store implementation must share.
package kvtest

import (
	"context"
	"testing"

	"github.com/rpggio/genoroot/internal/kv"
	"github.com/stretchr/testify/require"
)

// Run exercises store semantics against fresh stores built by newStore.
func Run(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Run("LoadMissing", func(t *testing.T) {
		_, err := newStore(t).Load(context.Background(), "familyTrees")
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Save(ctx, "familyTrees", []byte(`[]`)))
		require.NoError(t, store.Save(ctx, "familyTrees", []byte(`[{"id":"a"}]`)))

		value, err := store.Load(ctx, "familyTrees")
		require.NoError(t, err)
		require.JSONEq(t, `[{"id":"a"}]`, string(value))
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Save(ctx, "tree_a_members", []byte(`[]`)))
		require.NoError(t, store.Delete(ctx, "tree_a_members"))
		require.NoError(t, store.Delete(ctx, "tree_a_members"))

		_, err := store.Load(ctx, "tree_a_members")
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("KeysSortedByPattern", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		for _, key := range []string{"familyTrees", "tree_b_members", "tree_a_members", "selectedLanguage"} {
			require.NoError(t, store.Save(ctx, key, []byte(`[]`)))
		}

		keys, err := store.Keys(ctx, "tree_*_members")
		require.NoError(t, err)
		require.Equal(t, []string{"tree_a_members", "tree_b_members"}, keys)

		keys, err = store.Keys(ctx, "nothing*")
		require.NoError(t, err)
		require.Empty(t, keys)

		_, err = store.Keys(ctx, "tree_[")
		require.Error(t, err)
	})
}
