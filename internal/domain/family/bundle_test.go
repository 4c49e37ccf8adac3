package family_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rpggio/genoroot/internal/domain/family"
	"github.com/stretchr/testify/require"
)

func TestFamilyService_ExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newFixture(t)
	p := populate(t, source)

	bundle, err := source.svc.ExportTree(ctx, p.smiths.ID)
	require.NoError(t, err)
	require.Len(t, bundle.Members, 4)

	data, err := json.Marshal(bundle)
	require.NoError(t, err)

	target := newFixture(t)
	imported, err := target.svc.ImportTree(ctx, data)
	require.NoError(t, err)
	require.Equal(t, p.smiths.ID, imported.ID)

	again, err := target.svc.ExportTree(ctx, p.smiths.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(bundle, again); diff != "" {
		t.Fatalf("bundle mismatch (-exported +reimported):\n%s", diff)
	}

	_, err = target.svc.ImportTree(ctx, data)
	require.ErrorIs(t, err, family.ErrTreeExists)
}

func TestFamilyService_ImportTree_JSONC(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	data := []byte(`{
		// hand-edited export
		"tree": {
			"id": "t-hand",
			"name": "Hand Made",
			"rootPerson": "m1",
			"members": ["m1",],
		},
		"members": [
			{"id": "m1", "firstName": "Ida", "lastName": "Hand", "birthDate": "1990-02-02"}, /* trailing */
		],
	}`)

	tree, err := f.svc.ImportTree(ctx, data)
	require.NoError(t, err)
	require.Equal(t, family.PrivacyPrivate, tree.Privacy)

	m, err := f.svc.GetMember(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, "Ida Hand", m.FullName())
	require.NotNil(t, m.Children)

	stats, err := f.svc.TreeStatistics(ctx, "t-hand")
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalMembers)
	require.Equal(t, 34, stats.AverageAge)
}

func TestFamilyService_ImportTree_Invalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, data := range []string{`{not json`, `{"tree": {"name": "no id"}}`, `[1, 2]`} {
		_, err := f.svc.ImportTree(ctx, []byte(data))
		require.ErrorIs(t, err, family.ErrInvalidInput, data)
	}

	_, err := f.svc.ExportTree(ctx, "missing")
	require.ErrorIs(t, err, family.ErrTreeNotFound)
}
