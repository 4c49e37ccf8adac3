// Package activity derives the dashboard views from stored trees: a feed of
// recent events and per-tree summary cards. Nothing here is persisted.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/rpggio/genoroot/internal/domain/family"
)

// recentWindow bounds how far back member additions are reported.
const recentWindow = 7 * 24 * time.Hour

// Service builds activity views.
type Service struct {
	source Source
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new activity service.
func NewService(source Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		source: source,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source and returns the service.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetRecentActivity lists tree creations and the member additions of the
// last seven days, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	trees, err := s.source.ListTrees(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing trees: %w", err)
	}

	cutoff := s.now().Add(-recentWindow)
	entries := []ActivityEntry{}
	for _, tree := range trees {
		if opts.TreeID != "" && tree.ID != opts.TreeID {
			continue
		}

		entries = append(entries, ActivityEntry{
			Type:      TypeTreeCreated,
			TreeID:    tree.ID,
			TreeName:  tree.Name,
			Summary:   fmt.Sprintf("Created family tree %q", tree.Name),
			Timestamp: tree.CreatedAt,
		})

		members, err := s.source.GetTreeMembers(ctx, tree.ID)
		if err != nil {
			return nil, fmt.Errorf("listing members of %s: %w", tree.ID, err)
		}
		for _, m := range members {
			if !m.CreatedAt.After(cutoff) {
				continue
			}
			name := m.FullName()
			entries = append(entries, ActivityEntry{
				Type:       TypeMemberAdded,
				TreeID:     tree.ID,
				TreeName:   tree.Name,
				MemberID:   m.ID,
				MemberName: name,
				Summary:    fmt.Sprintf("Added %q to %q", name, tree.Name),
				Timestamp:  m.CreatedAt,
			})
		}
	}

	if opts.ActivityType != nil {
		filtered := entries[:0]
		for _, entry := range entries {
			if entry.Type == *opts.ActivityType {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Summaries returns one dashboard card per tree, in stored order.
func (s *Service) Summaries(ctx context.Context) ([]TreeSummary, error) {
	trees, err := s.source.ListTrees(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing trees: %w", err)
	}

	now := s.now()
	summaries := make([]TreeSummary, 0, len(trees))
	for _, tree := range trees {
		summaries = append(summaries, TreeSummary{
			Tree:        tree,
			MemberCount: len(tree.Members),
			Tags:        TreeTags(&tree, now),
		})
	}
	return summaries, nil
}

// TreeTags labels a tree by privacy, size and recency.
func TreeTags(tree *family.Tree, now time.Time) []string {
	tags := make([]string, 0, 3)

	switch tree.Privacy {
	case family.PrivacyPublic:
		tags = append(tags, "Public")
	case family.PrivacyFamily:
		tags = append(tags, "Family")
	default:
		tags = append(tags, "Private")
	}

	switch n := len(tree.Members); {
	case n > 10:
		tags = append(tags, "Large Family")
	case n > 5:
		tags = append(tags, "Medium Family")
	default:
		tags = append(tags, "Small Family")
	}

	if now.Sub(tree.LastModified) < recentWindow {
		tags = append(tags, "Recently Updated")
	}
	return tags
}
