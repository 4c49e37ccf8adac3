package activity

import (
	"context"

	"github.com/rpggio/genoroot/internal/domain/family"
)

// Source provides the trees and members the feed is derived from.
// *family.Service satisfies it.
type Source interface {
	ListTrees(ctx context.Context) ([]family.Tree, error)
	GetTreeMembers(ctx context.Context, treeID string) ([]family.Member, error)
}
