package family

import "context"

// TreeRepository persists the full list of trees as one collection.
type TreeRepository interface {
	LoadTrees(ctx context.Context) ([]Tree, error)
	SaveTrees(ctx context.Context, trees []Tree) error
}

// MemberRepository persists each tree's members as one collection under the
// tree's namespace.
type MemberRepository interface {
	LoadMembers(ctx context.Context, treeID string) ([]Member, error)
	SaveMembers(ctx context.Context, treeID string, members []Member) error
	DeleteMembers(ctx context.Context, treeID string) error
	// Namespaces lists the tree ids that have a persisted member collection.
	Namespaces(ctx context.Context) ([]string, error)
}
