package family

import (
	"context"
	"errors"
	"fmt"
)

// NewMember builds a member with a fresh id. Nothing is persisted; attach it
// with SaveMemberToTree and AddMemberToTree.
func (s *Service) NewMember(input MemberInput) Member {
	now := s.now()
	m := Member{
		ID:           s.newID(),
		FirstName:    input.FirstName,
		MiddleName:   input.MiddleName,
		LastName:     input.LastName,
		BirthDate:    input.BirthDate,
		DeathDate:    input.DeathDate,
		Gender:       input.Gender,
		BirthPlace:   input.BirthPlace,
		DeathPlace:   input.DeathPlace,
		Occupation:   input.Occupation,
		Notes:        input.Notes,
		ProfileImage: input.ProfileImage,
		Parents:      input.Parents,
		Children:     input.Children,
		Spouses:      input.Spouses,
		Siblings:     input.Siblings,
		Memories:     input.Memories,
		Documents:    input.Documents,
		CreatedAt:    now,
		LastModified: now,
	}
	m.Normalize()
	return m
}

// AddMemberRequest describes the add-member flow: create, attach, and
// optionally relate the new member to an existing one.
type AddMemberRequest struct {
	Input        MemberInput
	RelatedTo    string
	Relationship RelationshipKind
}

// AddMember creates a member inside a tree. When RelatedTo and Relationship
// are both set, the edge RelatedTo -> new member is added with that kind.
// RelationOther creates the member without an edge.
func (s *Service) AddMember(ctx context.Context, treeID string, req AddMemberRequest) (*Member, error) {
	var kind RelationshipKind
	if req.RelatedTo != "" && req.Relationship != "" && !isOtherRelation(req.Relationship) {
		parsed, err := ParseRelationshipKind(string(req.Relationship))
		if err != nil {
			return nil, err
		}
		kind = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getTree(ctx, treeID); err != nil {
		return nil, err
	}

	m := s.NewMember(req.Input)
	if err := s.saveMemberToTree(ctx, treeID, m); err != nil {
		return nil, err
	}
	if err := s.addMemberToTree(ctx, treeID, m.ID); err != nil {
		return nil, err
	}

	if kind != "" {
		ok, err := s.addRelationship(ctx, req.RelatedTo, m.ID, kind)
		if err != nil {
			return nil, fmt.Errorf("relating new member: %w", err)
		}
		if !ok {
			s.logger.Warn("related member not found", "member_id", m.ID, "related_to", req.RelatedTo)
		}
	}

	s.logger.Info("member added", "tree_id", treeID, "member_id", m.ID)

	saved, _, err := s.findMember(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return &m, nil
	}
	return saved, nil
}

// SaveMemberToTree inserts the member into the tree's namespace, replacing any
// record with the same id. An unknown tree is a no-op.
func (s *Service) SaveMemberToTree(ctx context.Context, treeID string, m Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveMemberToTree(ctx, treeID, m)
}

func (s *Service) saveMemberToTree(ctx context.Context, treeID string, m Member) error {
	trees, err := s.loadTrees(ctx)
	if err != nil {
		return err
	}
	idx := treeIndex(trees, treeID)
	if idx < 0 {
		s.logger.Debug("save into unknown tree ignored", "tree_id", treeID, "member_id", m.ID)
		return nil
	}

	members, err := s.loadMembers(ctx, treeID)
	if err != nil {
		return err
	}

	m.Normalize()
	if pos := memberIndex(members, m.ID); pos >= 0 {
		members[pos] = m
	} else {
		members = append(members, m)
	}
	if err := s.members.SaveMembers(ctx, treeID, members); err != nil {
		return fmt.Errorf("saving members: %w", err)
	}

	trees[idx].LastModified = s.now()
	if err := s.trees.SaveTrees(ctx, trees); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}
	return nil
}

// GetMemberFromTree looks a member up in one tree's namespace.
func (s *Service) GetMemberFromTree(ctx context.Context, treeID, memberID string) (*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getTree(ctx, treeID); err != nil {
		if errors.Is(err, ErrTreeNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	members, err := s.loadMembers(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if pos := memberIndex(members, memberID); pos >= 0 {
		m := members[pos]
		return &m, nil
	}
	return nil, ErrMemberNotFound
}

// GetTreeMembers returns the members listed in a tree, in namespace order.
// An unknown tree yields an empty list.
func (s *Service) GetTreeMembers(ctx context.Context, treeID string) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, _, err := s.treeMembers(ctx, treeID)
	return members, err
}

// AllMembers returns the listed members of every tree.
func (s *Service) AllMembers(ctx context.Context) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allMembers(ctx)
}

// GetMember finds a member in any tree.
func (s *Service) GetMember(ctx context.Context, id string) (*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, _, err := s.findMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

// UpdateMember merges the given fields into a member wherever it lives. An
// unknown id is a silent no-op and returns a nil member.
func (s *Service) UpdateMember(ctx context.Context, id string, update MemberUpdate) (*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateMember(ctx, id, update)
}

func (s *Service) updateMember(ctx context.Context, id string, update MemberUpdate) (*Member, error) {
	m, treeID, err := s.findMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		s.logger.Debug("update of unknown member ignored", "member_id", id)
		return nil, nil
	}

	update.apply(m)
	m.LastModified = s.now()
	if err := s.saveMemberToTree(ctx, treeID, *m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMember removes a member from a tree's namespace and id list. Other
// members' relationship lists keep any reference to it.
func (s *Service) DeleteMember(ctx context.Context, treeID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trees, err := s.loadTrees(ctx)
	if err != nil {
		return err
	}
	idx := treeIndex(trees, treeID)
	if idx < 0 {
		return nil
	}

	members, err := s.loadMembers(ctx, treeID)
	if err != nil {
		return err
	}
	if len(members) > 0 {
		kept := make([]Member, 0, len(members))
		for _, m := range members {
			if m.ID != memberID {
				kept = append(kept, m)
			}
		}
		if err := s.members.SaveMembers(ctx, treeID, kept); err != nil {
			return fmt.Errorf("saving members: %w", err)
		}
	}

	trees[idx].Members = removeID(trees[idx].Members, memberID)
	trees[idx].LastModified = s.now()
	if err := s.trees.SaveTrees(ctx, trees); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}

	s.logger.Info("member deleted", "tree_id", treeID, "member_id", memberID)
	return nil
}

func (s *Service) loadMembers(ctx context.Context, treeID string) ([]Member, error) {
	members, err := s.members.LoadMembers(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	return members, nil
}

// treeMembers returns the listed members of a tree and the tree itself, or an
// empty list and nil tree when the tree is unknown.
func (s *Service) treeMembers(ctx context.Context, treeID string) ([]Member, *Tree, error) {
	tree, err := s.getTree(ctx, treeID)
	if errors.Is(err, ErrTreeNotFound) {
		return []Member{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	members, err := s.loadMembers(ctx, treeID)
	if err != nil {
		return nil, nil, err
	}
	listed := make([]Member, 0, len(members))
	for _, m := range members {
		if tree.HasMember(m.ID) {
			listed = append(listed, m)
		}
	}
	return listed, tree, nil
}

func (s *Service) allMembers(ctx context.Context) ([]Member, error) {
	trees, err := s.loadTrees(ctx)
	if err != nil {
		return nil, err
	}
	all := []Member{}
	for _, tree := range trees {
		members, _, err := s.treeMembers(ctx, tree.ID)
		if err != nil {
			return nil, err
		}
		all = append(all, members...)
	}
	return all, nil
}

// findMember scans every tree's namespace. It returns a nil member when the
// id is unknown.
func (s *Service) findMember(ctx context.Context, id string) (*Member, string, error) {
	trees, err := s.loadTrees(ctx)
	if err != nil {
		return nil, "", err
	}
	for _, tree := range trees {
		members, err := s.loadMembers(ctx, tree.ID)
		if err != nil {
			return nil, "", err
		}
		if pos := memberIndex(members, id); pos >= 0 {
			m := members[pos]
			return &m, tree.ID, nil
		}
	}
	return nil, "", nil
}

func memberIndex(members []Member, id string) int {
	for i := range members {
		if members[i].ID == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	kept := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return kept
}
