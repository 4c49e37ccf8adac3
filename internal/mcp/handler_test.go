package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rpggio/genoroot/internal/domain/activity"
	"github.com/rpggio/genoroot/internal/domain/family"
	"github.com/rpggio/genoroot/internal/kv"
	"github.com/rpggio/genoroot/internal/localstore"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	repo := localstore.New(kv.NewMemory(), nil)
	seq := 0
	familySvc := family.NewService(repo, repo, nil,
		family.WithClock(func() time.Time { return testNow }),
		family.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id%d", seq)
		}),
	)
	activitySvc := activity.NewService(familySvc, nil).WithClock(func() time.Time { return testNow })
	return NewHandler(familySvc, activitySvc)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func requireAPIError(t *testing.T, err error, code string) *APIError {
	t.Helper()
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}

// seedSmiths creates tree id1 with root Anna (id2) and her child Bob (id3).
func seedSmiths(t *testing.T, h *Handler) {
	t.Helper()
	ctx := context.Background()

	_, err := h.Handle(ctx, "create_tree", mustJSON(t, map[string]any{
		"name": "Smiths",
		"root": map[string]any{"first_name": "Anna", "last_name": "Smith", "birth_date": "1980-04-02"},
	}))
	require.NoError(t, err)

	_, err = h.Handle(ctx, "add_member", mustJSON(t, map[string]any{
		"tree_id":      "id1",
		"member":       map[string]any{"first_name": "Bob", "last_name": "Smith", "birth_date": "2010-01-01", "occupation": "Student"},
		"related_to":   "id2",
		"relationship": "parent",
	}))
	require.NoError(t, err)
}

func TestHandler_TreeCommands(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	seedSmiths(t, h)

	res, err := h.Handle(ctx, "get_tree", mustJSON(t, map[string]any{"tree_id": "id1"}))
	require.NoError(t, err)
	tree := res.(*family.Tree)
	require.Equal(t, "Smiths", tree.Name)
	require.Equal(t, family.PrivacyPrivate, tree.Privacy)
	require.Equal(t, []string{"id2", "id3"}, tree.Members)

	res, err = h.Handle(ctx, "list_trees", nil)
	require.NoError(t, err)
	summaries := res.([]activity.TreeSummary)
	require.Len(t, summaries, 1)
	require.Equal(t, 2, summaries[0].MemberCount)
	require.Contains(t, summaries[0].Tags, "Private")

	res, err = h.Handle(ctx, "update_tree", mustJSON(t, map[string]any{"tree_id": "id1", "privacy": "public"}))
	require.NoError(t, err)
	updated := res.(UpdateTreeResponse)
	require.True(t, updated.Updated)
	require.Equal(t, family.PrivacyPublic, updated.Tree.Privacy)

	res, err = h.Handle(ctx, "update_tree", mustJSON(t, map[string]any{"tree_id": "missing", "name": "x"}))
	require.NoError(t, err)
	require.False(t, res.(UpdateTreeResponse).Updated)

	_, err = h.Handle(ctx, "update_tree", mustJSON(t, map[string]any{"tree_id": "id1", "privacy": "secret"}))
	requireAPIError(t, err, "INVALID_INPUT")

	res, err = h.Handle(ctx, "delete_tree", mustJSON(t, map[string]any{"tree_id": "id1"}))
	require.NoError(t, err)
	require.True(t, res.(DeleteResponse).Deleted)

	res, err = h.Handle(ctx, "check_integrity", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"id1"}, res.(IntegrityResponse).OrphanedNamespaces)

	_, err = h.Handle(ctx, "purge_namespace", mustJSON(t, map[string]any{"tree_id": "id1"}))
	require.NoError(t, err)
	res, err = h.Handle(ctx, "check_integrity", nil)
	require.NoError(t, err)
	require.Empty(t, res.(IntegrityResponse).OrphanedNamespaces)
}

func TestHandler_MemberAndQueryCommands(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	seedSmiths(t, h)

	res, err := h.Handle(ctx, "get_member", mustJSON(t, map[string]any{"member_id": "id3"}))
	require.NoError(t, err)
	bob := res.(*family.Member)
	require.Equal(t, []string{"id2"}, bob.Parents)

	res, err = h.Handle(ctx, "list_members", mustJSON(t, map[string]any{"tree_id": "id1", "generation": 1}))
	require.NoError(t, err)
	members := res.([]family.Member)
	require.Len(t, members, 1)
	require.Equal(t, "Bob", members[0].FirstName)

	res, err = h.Handle(ctx, "search_members", mustJSON(t, map[string]any{"query": "student"}))
	require.NoError(t, err)
	require.Len(t, res.([]family.Member), 1)

	res, err = h.Handle(ctx, "filter_members", mustJSON(t, map[string]any{"birth_year_from": 2000}))
	require.NoError(t, err)
	require.Len(t, res.([]family.Member), 1)

	res, err = h.Handle(ctx, "get_tree_statistics", mustJSON(t, map[string]any{"tree_id": "id1"}))
	require.NoError(t, err)
	stats := res.(StatisticsResponse)
	require.Equal(t, 2, stats.TotalMembers)
	require.Equal(t, 1, stats.Generations)
	require.Equal(t, 2, stats.GenerationSpan)

	res, err = h.Handle(ctx, "get_generations", mustJSON(t, map[string]any{"tree_id": "id1"}))
	require.NoError(t, err)
	require.Equal(t, GenerationsResponse{Estimate: 1, Span: 2, Levels: map[string]int{"id2": 0, "id3": 1}}, res)

	res, err = h.Handle(ctx, "update_member", mustJSON(t, map[string]any{
		"member_id": "id3",
		"updates":   map[string]any{"occupation": "Engineer"},
	}))
	require.NoError(t, err)
	require.Equal(t, "Engineer", res.(UpdateMemberResponse).Member.Occupation)

	res, err = h.Handle(ctx, "remove_relationship", mustJSON(t, map[string]any{"member_id": "id2", "related_id": "id3", "kind": "parent"}))
	require.NoError(t, err)
	require.True(t, res.(RelationshipResponse).Applied)

	res, err = h.Handle(ctx, "add_relationship", mustJSON(t, map[string]any{"member_id": "id2", "related_id": "nobody", "kind": "spouse"}))
	require.NoError(t, err)
	require.False(t, res.(RelationshipResponse).Applied)

	res, err = h.Handle(ctx, "get_recent_activity", mustJSON(t, map[string]any{"type": "member_added"}))
	require.NoError(t, err)
	require.Len(t, res.([]activity.ActivityEntry), 2)
}

func TestHandler_DeleteMemberLeavesDanglingReference(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	seedSmiths(t, h)

	_, err := h.Handle(ctx, "delete_member", mustJSON(t, map[string]any{"tree_id": "id1", "member_id": "id3"}))
	require.NoError(t, err)

	res, err := h.Handle(ctx, "check_integrity", mustJSON(t, map[string]any{"tree_id": "id1"}))
	require.NoError(t, err)
	require.Equal(t, map[string][]family.DanglingReference{
		"id1": {{MemberID: "id2", Kind: family.KindChild, TargetID: "id3"}},
	}, res.(IntegrityResponse).DanglingReferences)
}

func TestHandler_ExportImport(t *testing.T) {
	ctx := context.Background()
	source := newTestHandler(t)
	seedSmiths(t, source)

	res, err := source.Handle(ctx, "export_tree", mustJSON(t, map[string]any{"tree_id": "id1"}))
	require.NoError(t, err)
	bundle := mustJSON(t, res)

	target := newTestHandler(t)
	res, err = target.Handle(ctx, "import_tree", mustJSON(t, map[string]any{"data": string(bundle)}))
	require.NoError(t, err)
	require.Equal(t, "Smiths", res.(*family.Tree).Name)

	_, err = target.Handle(ctx, "import_tree", mustJSON(t, map[string]any{"data": string(bundle)}))
	requireAPIError(t, err, "TREE_EXISTS")
}

func TestHandler_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	h := newTestHandler(t)
	seedSmiths(t, h)

	tests := []struct {
		name   string
		method string
		params any
		code   string
	}{
		{name: "unknown tree", method: "get_tree", params: map[string]any{"tree_id": "nope"}, code: "TREE_NOT_FOUND"},
		{name: "unknown member", method: "get_member", params: map[string]any{"member_id": "nope"}, code: "MEMBER_NOT_FOUND"},
		{name: "bad kind", method: "add_relationship", params: map[string]any{"member_id": "id2", "related_id": "id3", "kind": "cousin"}, code: "INVALID_RELATIONSHIP"},
		{name: "bad privacy on create", method: "create_tree", params: map[string]any{"name": "X", "privacy": "bogus"}, code: "INVALID_INPUT"},
		{name: "wrong type", method: "get_tree", params: map[string]any{"tree_id": 5}, code: CodeInvalidParams},
		{name: "unknown method", method: "drop_everything", params: nil, code: CodeUnknownMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(ctx, tt.method, mustJSON(t, tt.params))
			apiErr := requireAPIError(t, err, tt.code)
			require.NotEmpty(t, apiErr.Message)
		})
	}
}

func TestErrorResult_FallsBackToInternal(t *testing.T) {
	result := errorResult(errors.New("disk on fire"))
	require.True(t, result.IsError)

	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &apiErr))
	require.Equal(t, "INTERNAL", apiErr.Code)
	require.Equal(t, "disk on fire", apiErr.Message)
}
