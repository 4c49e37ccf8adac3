package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/genoroot/internal/domain/activity"
	"github.com/rpggio/genoroot/internal/domain/family"
)

// FamilyService defines the family store operations needed by MCP.
type FamilyService interface {
	CreateTree(ctx context.Context, req family.CreateTreeRequest) (*family.Tree, error)
	GetTree(ctx context.Context, id string) (*family.Tree, error)
	UpdateTree(ctx context.Context, id string, update family.TreeUpdate) (*family.Tree, error)
	DeleteTree(ctx context.Context, id string) error

	AddMember(ctx context.Context, treeID string, req family.AddMemberRequest) (*family.Member, error)
	GetMember(ctx context.Context, id string) (*family.Member, error)
	GetMemberFromTree(ctx context.Context, treeID, memberID string) (*family.Member, error)
	GetTreeMembers(ctx context.Context, treeID string) ([]family.Member, error)
	FilterMembersByGeneration(ctx context.Context, treeID string, generation int) ([]family.Member, error)
	UpdateMember(ctx context.Context, id string, update family.MemberUpdate) (*family.Member, error)
	DeleteMember(ctx context.Context, treeID, memberID string) error

	AddRelationship(ctx context.Context, a, b string, kind family.RelationshipKind) (bool, error)
	RemoveRelationship(ctx context.Context, a, b string, kind family.RelationshipKind) (bool, error)

	SearchMembers(ctx context.Context, query, treeID string) ([]family.Member, error)
	FilterMembers(ctx context.Context, filter family.MemberFilter) ([]family.Member, error)
	TreeStatistics(ctx context.Context, treeID string) (*family.Statistics, error)
	Generations(ctx context.Context, treeID string) (int, error)
	GenerationLevels(ctx context.Context, treeID string) (map[string]int, error)
	GenerationSpan(ctx context.Context, treeID string) (int, error)
	Overview(ctx context.Context) (*family.Overview, error)

	ExportTree(ctx context.Context, treeID string) (*family.Bundle, error)
	ImportTree(ctx context.Context, data []byte) (*family.Tree, error)
	ListTrees(ctx context.Context) ([]family.Tree, error)
	OrphanedNamespaces(ctx context.Context) ([]string, error)
	DanglingReferences(ctx context.Context, treeID string) ([]family.DanglingReference, error)
	PurgeNamespace(ctx context.Context, treeID string) error
}

// ActivityService defines dashboard operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
	Summaries(ctx context.Context) ([]activity.TreeSummary, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	family   FamilyService
	activity ActivityService
}

// NewHandler creates a new MCP handler.
func NewHandler(familySvc FamilyService, activitySvc ActivityService) *Handler {
	return &Handler{
		family:   familySvc,
		activity: activitySvc,
	}
}

// Handle dispatches a tool call to the domain services. Errors with a
// client-facing meaning are returned as *APIError.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	result, err := h.dispatch(ctx, method, params)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (h *Handler) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_tree":
		var req CreateTreeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.family.CreateTree(ctx, family.CreateTreeRequest{
			Name:        req.Name,
			Description: req.Description,
			Privacy:     req.Privacy,
			Root:        req.Root.input(),
		})
	case "list_trees":
		return h.activity.Summaries(ctx)
	case "get_tree":
		var req TreeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.family.GetTree(ctx, req.TreeID)
	case "update_tree":
		var req UpdateTreeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Privacy != nil && !req.Privacy.Valid() {
			return nil, fmt.Errorf("%w: privacy %q", family.ErrInvalidInput, *req.Privacy)
		}
		tree, err := h.family.UpdateTree(ctx, req.TreeID, family.TreeUpdate{
			Name:        req.Name,
			Description: req.Description,
			Privacy:     req.Privacy,
			RootPerson:  req.RootPerson,
		})
		if err != nil {
			return nil, err
		}
		return UpdateTreeResponse{Updated: tree != nil, Tree: tree}, nil
	case "delete_tree":
		var req TreeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.family.DeleteTree(ctx, req.TreeID); err != nil {
			return nil, err
		}
		return DeleteResponse{Deleted: true}, nil

	case "add_member":
		var req AddMemberParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.family.AddMember(ctx, req.TreeID, family.AddMemberRequest{
			Input:        req.Member.input(),
			RelatedTo:    req.RelatedTo,
			Relationship: family.RelationshipKind(req.Relationship),
		})
	case "get_member":
		var req GetMemberParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.TreeID != "" {
			return h.family.GetMemberFromTree(ctx, req.TreeID, req.MemberID)
		}
		return h.family.GetMember(ctx, req.MemberID)
	case "list_members":
		var req ListMembersParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Generation != nil {
			return h.family.FilterMembersByGeneration(ctx, req.TreeID, *req.Generation)
		}
		return h.family.GetTreeMembers(ctx, req.TreeID)
	case "update_member":
		var req UpdateMemberParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		m, err := h.family.UpdateMember(ctx, req.MemberID, req.Updates.update())
		if err != nil {
			return nil, err
		}
		return UpdateMemberResponse{Updated: m != nil, Member: m}, nil
	case "delete_member":
		var req DeleteMemberParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.family.DeleteMember(ctx, req.TreeID, req.MemberID); err != nil {
			return nil, err
		}
		return DeleteResponse{Deleted: true}, nil

	case "add_relationship", "remove_relationship":
		var req RelationshipParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		edit := h.family.AddRelationship
		if method == "remove_relationship" {
			edit = h.family.RemoveRelationship
		}
		applied, err := edit(ctx, req.MemberID, req.RelatedID, family.RelationshipKind(req.Kind))
		if err != nil {
			return nil, err
		}
		return RelationshipResponse{Applied: applied}, nil

	case "search_members":
		var req SearchMembersParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.family.SearchMembers(ctx, req.Query, req.TreeID)
	case "filter_members":
		var req FilterMembersParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.family.FilterMembers(ctx, family.MemberFilter{
			Query:         req.Query,
			TreeID:        req.TreeID,
			Gender:        req.Gender,
			Status:        req.Status,
			BirthYearFrom: req.BirthYearFrom,
			BirthYearTo:   req.BirthYearTo,
			Location:      req.Location,
		})
	case "get_tree_statistics":
		var req TreeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		stats, err := h.family.TreeStatistics(ctx, req.TreeID)
		if err != nil {
			return nil, err
		}
		span, err := h.family.GenerationSpan(ctx, req.TreeID)
		if err != nil {
			return nil, err
		}
		return StatisticsResponse{Statistics: *stats, GenerationSpan: span}, nil
	case "get_generations":
		var req TreeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		levels, err := h.family.GenerationLevels(ctx, req.TreeID)
		if err != nil {
			return nil, err
		}
		estimate, err := h.family.Generations(ctx, req.TreeID)
		if err != nil {
			return nil, err
		}
		span, err := h.family.GenerationSpan(ctx, req.TreeID)
		if err != nil {
			return nil, err
		}
		return GenerationsResponse{Estimate: estimate, Span: span, Levels: levels}, nil
	case "get_overview":
		return h.family.Overview(ctx)
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.activity.GetRecentActivity(ctx, activity.ListActivityOptions{
			TreeID:       req.TreeID,
			ActivityType: req.Type,
			Limit:        req.Limit,
		})

	case "export_tree":
		var req TreeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.family.ExportTree(ctx, req.TreeID)
	case "import_tree":
		var req ImportTreeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.family.ImportTree(ctx, []byte(req.Data))
	case "check_integrity":
		var req CheckIntegrityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.checkIntegrity(ctx, req.TreeID)
	case "purge_namespace":
		var req TreeIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.family.PurgeNamespace(ctx, req.TreeID); err != nil {
			return nil, err
		}
		return DeleteResponse{Deleted: true}, nil
	default:
		return nil, unknownMethod(method)
	}
}

func (h *Handler) checkIntegrity(ctx context.Context, treeID string) (IntegrityResponse, error) {
	orphans, err := h.family.OrphanedNamespaces(ctx)
	if err != nil {
		return IntegrityResponse{}, err
	}

	treeIDs := []string{treeID}
	if treeID == "" {
		trees, err := h.family.ListTrees(ctx)
		if err != nil {
			return IntegrityResponse{}, err
		}
		treeIDs = treeIDs[:0]
		for _, tree := range trees {
			treeIDs = append(treeIDs, tree.ID)
		}
	}

	dangling := make(map[string][]family.DanglingReference)
	for _, id := range treeIDs {
		refs, err := h.family.DanglingReferences(ctx, id)
		if err != nil {
			return IntegrityResponse{}, err
		}
		if len(refs) > 0 {
			dangling[id] = refs
		}
	}
	return IntegrityResponse{OrphanedNamespaces: orphans, DanglingReferences: dangling}, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	return json.Unmarshal(params, out)
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
