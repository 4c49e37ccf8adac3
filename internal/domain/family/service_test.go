package family_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/genoroot/internal/domain/family"
	"github.com/rpggio/genoroot/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFamilyService_CreateTree_WithRoot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tree, err := f.svc.CreateTree(ctx, family.CreateTreeRequest{
		Name:        "Smiths",
		Description: "Paternal line",
		Privacy:     family.PrivacyFamily,
		Root:        family.MemberInput{FirstName: "Anna", LastName: "Smith"},
	})
	require.NoError(t, err)
	require.Equal(t, "id1", tree.ID)
	require.NotNil(t, tree.RootPerson)
	require.Equal(t, "id2", *tree.RootPerson)
	require.Equal(t, []string{"id2"}, tree.Members)
	require.True(t, tree.CreatedAt.Equal(fixedNow))

	got, err := f.svc.GetTree(ctx, tree.ID)
	require.NoError(t, err)
	require.Equal(t, "Smiths", got.Name)
	require.Equal(t, "Paternal line", got.Description)
	require.Equal(t, family.PrivacyFamily, got.Privacy)

	members, err := f.svc.GetTreeMembers(ctx, tree.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "Anna Smith", members[0].FullName())
}

func TestFamilyService_CreateTree_Defaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// A root needs both names; a first name alone creates no member.
	tree, err := f.svc.CreateTree(ctx, family.CreateTreeRequest{
		Name: "Solo",
		Root: family.MemberInput{FirstName: "Anna"},
	})
	require.NoError(t, err)
	require.Equal(t, family.PrivacyPrivate, tree.Privacy)
	require.Nil(t, tree.RootPerson)
	require.Empty(t, tree.Members)
	require.NotNil(t, tree.Members)

	members, err := f.svc.GetTreeMembers(ctx, tree.ID)
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestFamilyService_CreateTree_InvalidPrivacy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateTree(ctx, family.CreateTreeRequest{Name: "X", Privacy: "bogus"})
	require.ErrorIs(t, err, family.ErrInvalidInput)

	trees, err := f.svc.ListTrees(ctx)
	require.NoError(t, err)
	require.Empty(t, trees)

	tree, err := f.svc.CreateTree(ctx, family.CreateTreeRequest{Name: "Y", Privacy: family.PrivacyFamily})
	require.NoError(t, err)
	require.Equal(t, family.PrivacyFamily, tree.Privacy)
}

func TestFamilyService_GetTree_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GetTree(context.Background(), "missing")
	require.ErrorIs(t, err, family.ErrTreeNotFound)
}

func TestFamilyService_ListTrees_PersistedOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, name := range []string{"A", "B", "C"} {
		_, err := f.svc.CreateTree(ctx, family.CreateTreeRequest{Name: name})
		require.NoError(t, err)
	}

	trees, err := f.svc.ListTrees(ctx)
	require.NoError(t, err)
	require.Len(t, trees, 3)
	require.Equal(t, "A", trees[0].Name)
	require.Equal(t, "C", trees[2].Name)
}

func TestFamilyService_UpdateTree(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tree, err := f.svc.CreateTree(ctx, family.CreateTreeRequest{
		Name: "Smiths",
		Root: family.MemberInput{FirstName: "Anna", LastName: "Smith"},
	})
	require.NoError(t, err)

	public := family.PrivacyPublic
	updated, err := f.svc.UpdateTree(ctx, tree.ID, family.TreeUpdate{
		Name:       strPtr("Smith Family"),
		Privacy:    &public,
		RootPerson: strPtr(""),
	})
	require.NoError(t, err)
	require.Equal(t, "Smith Family", updated.Name)
	require.Equal(t, family.PrivacyPublic, updated.Privacy)
	require.Nil(t, updated.RootPerson)
	require.Equal(t, tree.Members, updated.Members)

	got, err := f.svc.GetTree(ctx, tree.ID)
	require.NoError(t, err)
	require.Equal(t, "Smith Family", got.Name)
}

func TestFamilyService_UpdateTree_UnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateTree(ctx, family.CreateTreeRequest{Name: "Smiths"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTree(ctx, "missing", family.TreeUpdate{Name: strPtr("x")})
	require.NoError(t, err)
	require.Nil(t, updated)

	trees, err := f.svc.ListTrees(ctx)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	require.Equal(t, "Smiths", trees[0].Name)
}

func TestFamilyService_DeleteTree_LeavesNamespace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tree, err := f.svc.CreateTree(ctx, family.CreateTreeRequest{
		Name: "Smiths",
		Root: family.MemberInput{FirstName: "Anna", LastName: "Smith"},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTree(ctx, tree.ID))

	_, err = f.svc.GetTree(ctx, tree.ID)
	require.ErrorIs(t, err, family.ErrTreeNotFound)

	// The member survives only under the raw namespace.
	_, err = f.svc.GetMember(ctx, "id2")
	require.ErrorIs(t, err, family.ErrMemberNotFound)
	orphaned, err := f.repo.LoadMembers(ctx, tree.ID)
	require.NoError(t, err)
	require.Len(t, orphaned, 1)
	require.Equal(t, "Anna", orphaned[0].FirstName)
}

func TestFamilyService_AddMemberToTree_SetSemantics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tree, err := f.svc.CreateTree(ctx, family.CreateTreeRequest{Name: "Smiths"})
	require.NoError(t, err)

	require.NoError(t, f.svc.AddMemberToTree(ctx, tree.ID, "m1"))
	require.NoError(t, f.svc.AddMemberToTree(ctx, tree.ID, "m1"))
	require.NoError(t, f.svc.AddMemberToTree(ctx, "missing", "m1"))

	got, err := f.svc.GetTree(ctx, tree.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"m1"}, got.Members)
}

func TestFamilyService_CreateTree_SaveFailure(t *testing.T) {
	ctx := context.Background()
	trees := &mocks.TreeRepository{}
	members := &mocks.MemberRepository{}

	trees.On("LoadTrees", ctx).Return([]family.Tree{}, nil)
	trees.On("SaveTrees", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := family.NewService(trees, members, nil)
	_, err := svc.CreateTree(ctx, family.CreateTreeRequest{Name: "Smiths"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	members.AssertNotCalled(t, "SaveMembers", mock.Anything, mock.Anything, mock.Anything)
}

func TestFamilyService_GetTree_LoadFailure(t *testing.T) {
	ctx := context.Background()
	trees := &mocks.TreeRepository{}
	trees.On("LoadTrees", ctx).Return(nil, errors.New("io"))

	svc := family.NewService(trees, &mocks.MemberRepository{}, nil)
	_, err := svc.GetTree(ctx, "t1")
	require.Error(t, err)
	require.NotErrorIs(t, err, family.ErrTreeNotFound)
}

func TestFamilyService_GeneratedIDs(t *testing.T) {
	svc := family.NewService(nil, nil, nil)
	a := svc.NewMember(family.MemberInput{FirstName: "A"})
	b := svc.NewMember(family.MemberInput{FirstName: "B"})
	require.NotEqual(t, a.ID, b.ID)
	require.Regexp(t, `^ft_[0-9a-f-]{36}$`, a.ID)
}
