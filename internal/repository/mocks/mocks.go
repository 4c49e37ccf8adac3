// Package mocks provides testify mocks for the store's repository and source
// interfaces.
package mocks

import (
	"context"

	"github.com/rpggio/genoroot/internal/domain/family"
	"github.com/stretchr/testify/mock"
)

// TreeRepository is a mock for family.TreeRepository.
type TreeRepository struct {
	mock.Mock
}

func (m *TreeRepository) LoadTrees(ctx context.Context) ([]family.Tree, error) {
	args := m.Called(ctx)
	if trees, ok := args.Get(0).([]family.Tree); ok {
		return trees, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TreeRepository) SaveTrees(ctx context.Context, trees []family.Tree) error {
	args := m.Called(ctx, trees)
	return args.Error(0)
}

// MemberRepository is a mock for family.MemberRepository.
type MemberRepository struct {
	mock.Mock
}

func (m *MemberRepository) LoadMembers(ctx context.Context, treeID string) ([]family.Member, error) {
	args := m.Called(ctx, treeID)
	if members, ok := args.Get(0).([]family.Member); ok {
		return members, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberRepository) SaveMembers(ctx context.Context, treeID string, members []family.Member) error {
	args := m.Called(ctx, treeID, members)
	return args.Error(0)
}

func (m *MemberRepository) DeleteMembers(ctx context.Context, treeID string) error {
	args := m.Called(ctx, treeID)
	return args.Error(0)
}

func (m *MemberRepository) Namespaces(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivitySource is a mock for activity.Source.
type ActivitySource struct {
	mock.Mock
}

func (m *ActivitySource) ListTrees(ctx context.Context) ([]family.Tree, error) {
	args := m.Called(ctx)
	if trees, ok := args.Get(0).([]family.Tree); ok {
		return trees, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivitySource) GetTreeMembers(ctx context.Context, treeID string) ([]family.Member, error) {
	args := m.Called(ctx, treeID)
	if members, ok := args.Get(0).([]family.Member); ok {
		return members, args.Error(1)
	}
	return nil, args.Error(1)
}
