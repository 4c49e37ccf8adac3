package family

import (
	"context"
	"fmt"
	"strings"
)

// RelationshipKind names an edge between two members, read as
// "A is <kind> of B".
type RelationshipKind string

const (
	KindParent  RelationshipKind = "parent"
	KindChild   RelationshipKind = "child"
	KindSpouse  RelationshipKind = "spouse"
	KindSibling RelationshipKind = "sibling"
)

// RelationshipKinds lists every kind in a stable order.
var RelationshipKinds = []RelationshipKind{KindParent, KindChild, KindSpouse, KindSibling}

// ParseRelationshipKind validates a kind name, ignoring case and surrounding
// whitespace.
func ParseRelationshipKind(s string) (RelationshipKind, error) {
	kind := RelationshipKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range RelationshipKinds {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRelationship, s)
}

// RelationOther is accepted by AddMember for a relative whose link to the
// tree is not one of the relationship kinds.
const RelationOther RelationshipKind = "other"

func isOtherRelation(k RelationshipKind) bool {
	return strings.EqualFold(strings.TrimSpace(string(k)), string(RelationOther))
}

// Inverse returns the kind seen from the other end of the edge.
func (k RelationshipKind) Inverse() RelationshipKind {
	switch k {
	case KindParent:
		return KindChild
	case KindChild:
		return KindParent
	}
	return k
}

// list returns the relationship list of m that records counterparts m is
// k of. "A parent of B" puts B in A.children.
func (k RelationshipKind) list(m *Member) *[]string {
	switch k {
	case KindParent:
		return &m.Children
	case KindChild:
		return &m.Parents
	case KindSpouse:
		return &m.Spouses
	default:
		return &m.Siblings
	}
}

// update builds a patch replacing only the list that k maintains.
func (k RelationshipKind) update(ids []string) MemberUpdate {
	switch k {
	case KindParent:
		return MemberUpdate{Children: ids}
	case KindChild:
		return MemberUpdate{Parents: ids}
	case KindSpouse:
		return MemberUpdate{Spouses: ids}
	default:
		return MemberUpdate{Siblings: ids}
	}
}

// AddRelationship records "a is kind of b" on both members. Duplicate edges
// and cycles are accepted as given. It returns false when either member is
// unknown.
func (s *Service) AddRelationship(ctx context.Context, a, b string, kind RelationshipKind) (bool, error) {
	kind, err := ParseRelationshipKind(string(kind))
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addRelationship(ctx, a, b, kind)
}

func (s *Service) addRelationship(ctx context.Context, a, b string, kind RelationshipKind) (bool, error) {
	return s.editRelationship(ctx, a, b, kind, func(ids []string, id string) []string {
		return append(ids, id)
	})
}

// RemoveRelationship removes "a is kind of b" from both members. It returns
// false when either member is unknown.
func (s *Service) RemoveRelationship(ctx context.Context, a, b string, kind RelationshipKind) (bool, error) {
	kind, err := ParseRelationshipKind(string(kind))
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editRelationship(ctx, a, b, kind, removeID)
}

func (s *Service) editRelationship(ctx context.Context, a, b string, kind RelationshipKind, edit func([]string, string) []string) (bool, error) {
	memberA, _, err := s.findMember(ctx, a)
	if err != nil {
		return false, err
	}
	memberB, _, err := s.findMember(ctx, b)
	if err != nil {
		return false, err
	}
	if memberA == nil || memberB == nil {
		return false, nil
	}

	inverse := kind.Inverse()
	idsA := edit(*kind.list(memberA), b)
	idsB := edit(*inverse.list(memberB), a)

	// Each side is persisted on its own; a failure in between leaves a
	// one-sided edge.
	if _, err := s.updateMember(ctx, a, kind.update(nonNil(idsA))); err != nil {
		return false, fmt.Errorf("updating %s: %w", a, err)
	}
	if _, err := s.updateMember(ctx, b, inverse.update(nonNil(idsB))); err != nil {
		return false, fmt.Errorf("updating %s: %w", b, err)
	}

	s.logger.Debug("relationship changed", "from", a, "to", b, "kind", kind)
	return true, nil
}
