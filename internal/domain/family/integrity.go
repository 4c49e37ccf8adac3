package family

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// OrphanedNamespaces lists tree ids whose member namespace outlived the tree.
// Deleting a tree never removes its namespace; this only reports them.
func (s *Service) OrphanedNamespaces(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trees, err := s.loadTrees(ctx)
	if err != nil {
		return nil, err
	}
	namespaces, err := s.members.Namespaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}

	orphans := []string{}
	for _, treeID := range namespaces {
		if treeIndex(trees, treeID) < 0 {
			orphans = append(orphans, treeID)
		}
	}
	sort.Strings(orphans)
	return orphans, nil
}

// PurgeNamespace deletes the member namespace of a tree that no longer
// exists. Namespaces of live trees are refused with ErrInvalidInput.
func (s *Service) PurgeNamespace(ctx context.Context, treeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.getTree(ctx, treeID)
	if err == nil {
		return fmt.Errorf("%w: tree %s still exists", ErrInvalidInput, treeID)
	}
	if !errors.Is(err, ErrTreeNotFound) {
		return err
	}
	if err := s.members.DeleteMembers(ctx, treeID); err != nil {
		return fmt.Errorf("deleting namespace: %w", err)
	}
	s.logger.Info("namespace purged", "tree_id", treeID)
	return nil
}

// DanglingReferences reports relationship entries of a tree's members that
// point at ids missing from the tree's namespace, as left behind by
// DeleteMember.
func (s *Service) DanglingReferences(ctx context.Context, treeID string) ([]DanglingReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getTree(ctx, treeID); err != nil {
		return nil, err
	}
	members, err := s.loadMembers(ctx, treeID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}

	dangling := []DanglingReference{}
	for i := range members {
		m := &members[i]
		for _, kind := range RelationshipKinds {
			for _, target := range *kind.Inverse().list(m) {
				if !known[target] {
					dangling = append(dangling, DanglingReference{MemberID: m.ID, Kind: kind, TargetID: target})
				}
			}
		}
	}
	return dangling, nil
}
