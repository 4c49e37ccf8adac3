// Package localstore persists family trees in the browser local-storage
// layout: one JSON array of trees under "familyTrees" and one JSON array of
// members per tree under "tree_<treeId>_members".
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rpggio/genoroot/internal/domain/family"
	"github.com/rpggio/genoroot/internal/kv"
)

// TreesKey holds the array of all trees.
const TreesKey = "familyTrees"

const (
	membersPrefix  = "tree_"
	membersSuffix  = "_members"
	membersPattern = membersPrefix + "*" + membersSuffix
)

// MembersKey returns the namespace key holding a tree's members.
func MembersKey(treeID string) string {
	return membersPrefix + treeID + membersSuffix
}

// TreeIDFromKey extracts the tree id from a namespace key.
func TreeIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, membersPrefix) || !strings.HasSuffix(key, membersSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(key, membersPrefix), membersSuffix)
	return id, id != ""
}

// Repository implements family.TreeRepository and family.MemberRepository
// on top of a kv.Store.
type Repository struct {
	store  kv.Store
	logger *slog.Logger
}

// New creates a Repository over store.
func New(store kv.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{store: store, logger: logger}
}

// LoadTrees reads the tree list. A missing or malformed blob is an empty list.
func (r *Repository) LoadTrees(ctx context.Context) ([]family.Tree, error) {
	trees, err := loadCollection[family.Tree](ctx, r, TreesKey)
	if err != nil {
		return nil, err
	}
	for i := range trees {
		trees[i].Normalize()
	}
	return trees, nil
}

// SaveTrees replaces the tree list.
func (r *Repository) SaveTrees(ctx context.Context, trees []family.Tree) error {
	if trees == nil {
		trees = []family.Tree{}
	}
	return r.save(ctx, TreesKey, trees)
}

// LoadMembers reads a tree's member list. A missing or malformed blob is an
// empty list.
func (r *Repository) LoadMembers(ctx context.Context, treeID string) ([]family.Member, error) {
	members, err := loadCollection[family.Member](ctx, r, MembersKey(treeID))
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].Normalize()
	}
	return members, nil
}

// SaveMembers replaces a tree's member list.
func (r *Repository) SaveMembers(ctx context.Context, treeID string, members []family.Member) error {
	if members == nil {
		members = []family.Member{}
	}
	return r.save(ctx, MembersKey(treeID), members)
}

// DeleteMembers removes a tree's namespace.
func (r *Repository) DeleteMembers(ctx context.Context, treeID string) error {
	if err := r.store.Delete(ctx, MembersKey(treeID)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", MembersKey(treeID), err)
	}
	return nil
}

// Namespaces lists the tree ids that have a persisted member list.
func (r *Repository) Namespaces(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, membersPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if id, ok := TreeIDFromKey(key); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func loadCollection[T any](ctx context.Context, r *Repository, key string) ([]T, error) {
	data, err := r.store.Load(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		// Corrupt data degrades to an empty collection; the next save
		// overwrites it.
		r.logger.Warn("malformed stored collection", "key", key, "error", err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *Repository) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.store.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
