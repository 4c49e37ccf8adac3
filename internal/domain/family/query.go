package family

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"
)

// SearchMembers matches query case-insensitively against each member's full
// name, birth place and occupation. An empty treeID searches every tree; an
// empty query matches everything.
func (s *Service) SearchMembers(ctx context.Context, query, treeID string) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.scope(ctx, treeID)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(query)
	found := []Member{}
	for _, m := range members {
		if containsFold(m.FullName(), term) ||
			containsFold(m.BirthPlace, term) ||
			containsFold(m.Occupation, term) {
			found = append(found, m)
		}
	}
	return found, nil
}

// FilterMembers applies the advanced search criteria. The query additionally
// matches notes; the location matches birth or death place.
func (s *Service) FilterMembers(ctx context.Context, filter MemberFilter) ([]Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.scope(ctx, filter.TreeID)
	if err != nil {
		return nil, err
	}

	found := []Member{}
	for _, m := range members {
		if filter.matches(&m) {
			found = append(found, m)
		}
	}
	return found, nil
}

func (f MemberFilter) matches(m *Member) bool {
	if f.Query != "" {
		term := strings.ToLower(f.Query)
		if !containsFold(m.FullName(), term) &&
			!containsFold(m.BirthPlace, term) &&
			!containsFold(m.Occupation, term) &&
			!containsFold(m.Notes, term) {
			return false
		}
	}
	if f.Gender != "" && m.Gender != f.Gender {
		return false
	}
	switch f.Status {
	case StatusLiving:
		if !m.Living() {
			return false
		}
	case StatusDeceased:
		if m.Living() {
			return false
		}
	}
	// Members without a usable birth date pass the year range.
	if year, ok := dateYear(m.BirthDate); ok {
		if f.BirthYearFrom != 0 && year < f.BirthYearFrom {
			return false
		}
		if f.BirthYearTo != 0 && year > f.BirthYearTo {
			return false
		}
	}
	if f.Location != "" {
		term := strings.ToLower(f.Location)
		if !containsFold(m.BirthPlace, term) && !containsFold(m.DeathPlace, term) {
			return false
		}
	}
	return true
}

func (s *Service) scope(ctx context.Context, treeID string) ([]Member, error) {
	if treeID != "" {
		members, _, err := s.treeMembers(ctx, treeID)
		return members, err
	}
	return s.allMembers(ctx)
}

// TreeStatistics counts a tree's members. Generations is the placeholder
// estimate ceil(members/4); see GenerationSpan for the graph depth.
func (s *Service) TreeStatistics(ctx context.Context, treeID string) (*Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, tree, err := s.treeMembers(ctx, treeID)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, ErrTreeNotFound
	}

	stats := &Statistics{TotalMembers: len(members)}
	for _, m := range members {
		if m.Living() {
			stats.LivingMembers++
		} else {
			stats.DeceasedMembers++
		}
	}
	stats.Generations = estimateGenerations(tree, members)
	stats.AverageAge = averageAge(members, s.now())
	return stats, nil
}

// Generations returns the placeholder generation estimate for a tree.
func (s *Service) Generations(ctx context.Context, treeID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, tree, err := s.treeMembers(ctx, treeID)
	if err != nil {
		return 0, err
	}
	if tree == nil {
		return 0, nil
	}
	return estimateGenerations(tree, members), nil
}

// estimateGenerations is zero unless the root person is among the members.
func estimateGenerations(tree *Tree, members []Member) int {
	if tree.RootPerson == nil || memberIndex(members, *tree.RootPerson) < 0 {
		return 0
	}
	return (len(members) + 3) / 4
}

// averageAge uses calendar years only, so it can be off by one.
func averageAge(members []Member, now time.Time) int {
	total, count := 0, 0
	for _, m := range members {
		if !m.Living() || m.BirthDate == "" {
			continue
		}
		year, ok := dateYear(m.BirthDate)
		if !ok {
			continue
		}
		total += now.Year() - year
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}

// Age returns the age in calendar years at death, or now for the living.
func Age(m *Member, now time.Time) (int, bool) {
	born, ok := dateYear(m.BirthDate)
	if !ok {
		return 0, false
	}
	end := now.Year()
	if !m.Living() {
		died, ok := dateYear(m.DeathDate)
		if !ok {
			return 0, false
		}
		end = died
	}
	return end - born, true
}

// Overview aggregates totals across every tree.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trees, err := s.loadTrees(ctx)
	if err != nil {
		return nil, err
	}

	overview := &Overview{TotalTrees: len(trees)}
	for i := range trees {
		overview.TotalMembers += len(trees[i].Members)

		members, _, err := s.treeMembers(ctx, trees[i].ID)
		if err != nil {
			return nil, err
		}
		overview.TotalGenerations += estimateGenerations(&trees[i], members)
		for _, m := range members {
			overview.TotalMemories += len(m.Memories)
		}
	}
	return overview, nil
}

// dateYear extracts the calendar year of a YYYY-MM-DD (or longer ISO) date.
func dateYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}
	if t, err := time.Parse(time.DateOnly, date); err == nil {
		return t.Year(), true
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t.Year(), true
	}
	if len(date) >= 4 {
		if year, err := strconv.Atoi(date[:4]); err == nil {
			return year, true
		}
	}
	return 0, false
}

func containsFold(field, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(field), lowerTerm)
}
