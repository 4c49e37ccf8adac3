package family

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// ExportTree returns a tree together with its whole member namespace.
func (s *Service) ExportTree(ctx context.Context, treeID string) (*Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.getTree(ctx, treeID)
	if err != nil {
		return nil, err
	}
	members, err := s.loadMembers(ctx, treeID)
	if err != nil {
		return nil, err
	}
	return &Bundle{Tree: *tree, Members: members}, nil
}

// ImportTree installs an exported bundle with its ids unchanged. The bundle
// may be written as JSONC: comments and trailing commas are accepted.
func (s *Service) ImportTree(ctx context.Context, data []byte) (*Tree, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var bundle Bundle
	if err := json.Unmarshal(standardized, &bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if bundle.Tree.ID == "" {
		return nil, fmt.Errorf("%w: bundle has no tree id", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trees, err := s.loadTrees(ctx)
	if err != nil {
		return nil, err
	}
	if treeIndex(trees, bundle.Tree.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrTreeExists, bundle.Tree.ID)
	}

	tree := bundle.Tree
	tree.Normalize()
	if tree.Privacy == "" {
		tree.Privacy = PrivacyPrivate
	}
	members := bundle.Members
	if members == nil {
		members = []Member{}
	}
	for i := range members {
		members[i].Normalize()
	}

	if err := s.members.SaveMembers(ctx, tree.ID, members); err != nil {
		return nil, fmt.Errorf("saving members: %w", err)
	}
	trees = append(trees, tree)
	if err := s.trees.SaveTrees(ctx, trees); err != nil {
		return nil, fmt.Errorf("saving trees: %w", err)
	}

	s.logger.Info("tree imported", "tree_id", tree.ID, "members", len(members))
	return &tree, nil
}
