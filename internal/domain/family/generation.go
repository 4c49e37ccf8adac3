package family

import "context"

// GenerationLevels assigns each member reachable from the root person a
// generation relative to the root: parents are -1, children +1, spouses and
// siblings share a level. Members not connected to the root are absent.
// A member keeps the level of the shortest path from the root. Among paths of
// equal length, the one that steps to children earliest wins, so in cyclic
// data a descendant that is also recorded as an ancestor keeps its
// descendant level.
func (s *Service) GenerationLevels(ctx context.Context, treeID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, tree, err := s.treeMembers(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrTreeNotFound
	}
	return generationLevels(tree, members), nil
}

// GenerationSpan is the number of distinct generations connected to the root
// person, or zero without one.
func (s *Service) GenerationSpan(ctx context.Context, treeID string) (int, error) {
	levels, err := s.GenerationLevels(ctx, treeID)
	if err != nil {
		return 0, err
	}
	if len(levels) == 0 {
		return 0, nil
	}

	lowest, highest := 0, 0
	for _, level := range levels {
		lowest = min(lowest, level)
		highest = max(highest, level)
	}
	return highest - lowest + 1, nil
}

// FilterMembersByGeneration returns the members at one generation level.
func (s *Service) FilterMembersByGeneration(ctx context.Context, treeID string, generation int) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, tree, err := s.treeMembers(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return []Member{}, nil
	}

	levels := generationLevels(tree, members)
	found := []Member{}
	for _, m := range members {
		if level, ok := levels[m.ID]; ok && level == generation {
			found = append(found, m)
		}
	}
	return found, nil
}

func generationLevels(tree *Tree, members []Member) map[string]int {
	levels := map[string]int{}
	if tree.RootPerson == nil {
		return levels
	}

	byID := make(map[string]*Member, len(members))
	for i := range members {
		byID[members[i].ID] = &members[i]
	}
	if _, ok := byID[*tree.RootPerson]; !ok {
		return levels
	}

	levels[*tree.RootPerson] = 0
	queue := []string{*tree.RootPerson}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		m := byID[id]
		level := levels[id]

		visit := func(ids []string, delta int) {
			for _, next := range ids {
				if _, seen := levels[next]; seen {
					continue
				}
				if _, ok := byID[next]; !ok {
					continue
				}
				levels[next] = level + delta
				queue = append(queue, next)
			}
		}
		visit(m.Children, 1)
		visit(m.Parents, -1)
		visit(m.Spouses, 0)
		visit(m.Siblings, 0)
	}
	return levels
}
