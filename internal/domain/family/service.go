// Package family implements the family tree store: trees, their members, the
// symmetric relationship graph between members, and query helpers.
//
// Every mutation reads the whole affected collection, changes it in memory and
// writes it back. Within one Service operations are serialized; separate
// processes sharing a backing store race and the last write wins.
package family

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service handles tree and member operations.
type Service struct {
	trees   TreeRepository
	members MemberRepository
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for timestamps and ages.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides tree and member id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a new family service.
func NewService(trees TreeRepository, members MemberRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		trees:   trees,
		members: members,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   generateID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// generateID returns a time-ordered id with a random suffix.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "ft_" + uuid.NewString()
	}
	return "ft_" + id.String()
}

// CreateTree creates a tree and, when the root person has both a first and a
// last name, its root member.
func (s *Service) CreateTree(ctx context.Context, req CreateTreeRequest) (*Tree, error) {
	privacy := req.Privacy
	if privacy == "" {
		privacy = PrivacyPrivate
	}
	if !privacy.Valid() {
		return nil, fmt.Errorf("%w: privacy %q", ErrInvalidInput, req.Privacy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trees, err := s.loadTrees(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tree := Tree{
		ID:           s.newID(),
		Name:         req.Name,
		Description:  req.Description,
		Privacy:      privacy,
		Members:      []string{},
		CreatedAt:    now,
		LastModified: now,
	}

	var root *Member
	if req.Root.FirstName != "" && req.Root.LastName != "" {
		m := s.NewMember(req.Root)
		rootID := m.ID
		tree.RootPerson = &rootID
		tree.Members = append(tree.Members, m.ID)
		root = &m
	}

	trees = append(trees, tree)
	if err := s.trees.SaveTrees(ctx, trees); err != nil {
		return nil, fmt.Errorf("saving trees: %w", err)
	}

	// The tree must be persisted before its namespace can accept members.
	if root != nil {
		if err := s.saveMemberToTree(ctx, tree.ID, *root); err != nil {
			return nil, fmt.Errorf("saving root member: %w", err)
		}
	}

	s.logger.Info("tree created", "tree_id", tree.ID, "name", tree.Name, "root", root != nil)
	return s.getTree(ctx, tree.ID)
}

// GetTree fetches a tree by ID.
func (s *Service) GetTree(ctx context.Context, id string) (*Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getTree(ctx, id)
}

// ListTrees returns every tree in persisted order.
func (s *Service) ListTrees(ctx context.Context) ([]Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTrees(ctx)
}

// UpdateTree merges the given fields into a tree. An unknown id is a silent
// no-op and returns a nil tree.
func (s *Service) UpdateTree(ctx context.Context, id string, update TreeUpdate) (*Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trees, err := s.loadTrees(ctx)
	if err != nil {
		return nil, err
	}
	idx := treeIndex(trees, id)
	if idx < 0 {
		s.logger.Debug("update of unknown tree ignored", "tree_id", id)
		return nil, nil
	}

	update.apply(&trees[idx])
	trees[idx].LastModified = s.now()
	if err := s.trees.SaveTrees(ctx, trees); err != nil {
		return nil, fmt.Errorf("saving trees: %w", err)
	}

	updated := trees[idx]
	return &updated, nil
}

// DeleteTree removes a tree from the tree list. Its member namespace is left
// in place.
func (s *Service) DeleteTree(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trees, err := s.loadTrees(ctx)
	if err != nil {
		return err
	}

	kept := make([]Tree, 0, len(trees))
	for _, tree := range trees {
		if tree.ID != id {
			kept = append(kept, tree)
		}
	}
	if err := s.trees.SaveTrees(ctx, kept); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}

	s.logger.Info("tree deleted", "tree_id", id, "found", len(kept) != len(trees))
	return nil
}

// AddMemberToTree lists a member id in the tree. Ids already listed are not
// repeated; an unknown tree is a no-op.
func (s *Service) AddMemberToTree(ctx context.Context, treeID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addMemberToTree(ctx, treeID, memberID)
}

func (s *Service) addMemberToTree(ctx context.Context, treeID, memberID string) error {
	trees, err := s.loadTrees(ctx)
	if err != nil {
		return err
	}
	idx := treeIndex(trees, treeID)
	if idx < 0 {
		return nil
	}

	if !trees[idx].HasMember(memberID) {
		trees[idx].Members = append(trees[idx].Members, memberID)
	}
	trees[idx].LastModified = s.now()
	if err := s.trees.SaveTrees(ctx, trees); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}
	return nil
}

func (s *Service) loadTrees(ctx context.Context) ([]Tree, error) {
	trees, err := s.trees.LoadTrees(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading trees: %w", err)
	}
	return trees, nil
}

func (s *Service) getTree(ctx context.Context, id string) (*Tree, error) {
	trees, err := s.loadTrees(ctx)
	if err != nil {
		return nil, err
	}
	idx := treeIndex(trees, id)
	if idx < 0 {
		return nil, ErrTreeNotFound
	}
	tree := trees[idx]
	return &tree, nil
}

func treeIndex(trees []Tree, id string) int {
	for i := range trees {
		if trees[i].ID == id {
			return i
		}
	}
	return -1
}
