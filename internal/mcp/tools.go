package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	Annotations map[string]any `json:"annotations,omitempty"`
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

var (
	treeIDProp   = prop("string", "Tree ID")
	memberIDProp = prop("string", "Member ID")
	kindProp     = enum("Relationship kind, read as \"member is <kind> of related\"", "parent", "child", "spouse", "sibling")
	relationProp = enum("How related_to relates to the new member; other adds no edge", "parent", "child", "spouse", "sibling", "other")
	privacyProp  = enum("Who may view the tree", "private", "family", "public")
)

func memberFieldsSchema(description string) map[string]any {
	schema := object(map[string]any{
		"first_name":    prop("string", "Given name"),
		"middle_name":   prop("string", "Middle name"),
		"last_name":     prop("string", "Family name"),
		"birth_date":    prop("string", "Birth date, YYYY-MM-DD"),
		"death_date":    prop("string", "Death date, YYYY-MM-DD; empty for the living"),
		"gender":        prop("string", "Gender"),
		"birth_place":   prop("string", "Place of birth"),
		"death_place":   prop("string", "Place of death"),
		"occupation":    prop("string", "Occupation"),
		"notes":         prop("string", "Free-form notes"),
		"profile_image": prop("string", "Image reference (data URI or file name)"),
		"memories":      map[string]any{"type": "array", "description": "Opaque memory records", "items": map[string]any{}},
		"documents":     map[string]any{"type": "array", "description": "Opaque document records", "items": map[string]any{}},
	})
	schema["description"] = description
	return schema
}

var readOnly = map[string]any{"readOnlyHint": true}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Trees
		{
			Name:        "create_tree",
			Description: "Create a family tree. A root member is created when root.first_name and root.last_name are both given.",
			InputSchema: object(map[string]any{
				"name":        prop("string", "Tree display name"),
				"description": prop("string", "Tree description"),
				"privacy":     privacyProp,
				"root":        memberFieldsSchema("Root person of the tree"),
			}, "name"),
		},
		{
			Name:        "list_trees",
			Description: "List every tree with its member count and dashboard tags",
			InputSchema: object(map[string]any{}),
			Annotations: readOnly,
		},
		{
			Name:        "get_tree",
			Description: "Get one tree by id",
			InputSchema: object(map[string]any{"tree_id": treeIDProp}, "tree_id"),
			Annotations: readOnly,
		},
		{
			Name:        "update_tree",
			Description: "Change tree fields; omitted fields are unchanged. An empty root_person clears the root. Unknown ids report updated=false.",
			InputSchema: object(map[string]any{
				"tree_id":     treeIDProp,
				"name":        prop("string", "New name"),
				"description": prop("string", "New description"),
				"privacy":     privacyProp,
				"root_person": prop("string", "Member ID of the new root person"),
			}, "tree_id"),
		},
		{
			Name:        "delete_tree",
			Description: "Delete a tree. Its stored members are kept as an orphaned namespace (see check_integrity).",
			InputSchema: object(map[string]any{"tree_id": treeIDProp}, "tree_id"),
		},

		// Members
		{
			Name:        "add_member",
			Description: "Create a member in a tree, optionally relating an existing member to it (related_to is <relationship> of the new member)",
			InputSchema: object(map[string]any{
				"tree_id":      treeIDProp,
				"member":       memberFieldsSchema("New member's fields"),
				"related_to":   prop("string", "Existing member to relate"),
				"relationship": relationProp,
			}, "tree_id", "member"),
		},
		{
			Name:        "get_member",
			Description: "Get a member by id, searching every tree unless tree_id is given",
			InputSchema: object(map[string]any{
				"member_id": memberIDProp,
				"tree_id":   prop("string", "Restrict the lookup to this tree"),
			}, "member_id"),
			Annotations: readOnly,
		},
		{
			Name:        "list_members",
			Description: "List the members of a tree, optionally only one generation relative to the root person (0 root, -1 parents, 1 children)",
			InputSchema: object(map[string]any{
				"tree_id":    treeIDProp,
				"generation": prop("integer", "Generation level relative to the root person"),
			}, "tree_id"),
			Annotations: readOnly,
		},
		{
			Name:        "update_member",
			Description: "Change member fields; omitted fields are unchanged. Unknown ids report updated=false.",
			InputSchema: object(map[string]any{
				"member_id": memberIDProp,
				"updates":   memberFieldsSchema("Fields to change"),
			}, "member_id", "updates"),
		},
		{
			Name:        "delete_member",
			Description: "Remove a member from a tree. Other members' relationship lists still reference it.",
			InputSchema: object(map[string]any{
				"tree_id":   treeIDProp,
				"member_id": memberIDProp,
			}, "tree_id", "member_id"),
		},

		// Relationships
		{
			Name:        "add_relationship",
			Description: "Record that member is <kind> of related, on both members. Duplicates are not checked.",
			InputSchema: object(map[string]any{
				"member_id":  memberIDProp,
				"related_id": prop("string", "Other member ID"),
				"kind":       kindProp,
			}, "member_id", "related_id", "kind"),
		},
		{
			Name:        "remove_relationship",
			Description: "Remove a relationship from both members",
			InputSchema: object(map[string]any{
				"member_id":  memberIDProp,
				"related_id": prop("string", "Other member ID"),
				"kind":       kindProp,
			}, "member_id", "related_id", "kind"),
		},

		// Queries
		{
			Name:        "search_members",
			Description: "Case-insensitive substring search over name, birth place and occupation",
			InputSchema: object(map[string]any{
				"query":   prop("string", "Search text; empty matches everyone"),
				"tree_id": prop("string", "Restrict to this tree"),
			}),
			Annotations: readOnly,
		},
		{
			Name:        "filter_members",
			Description: "Advanced member search; every given criterion must match",
			InputSchema: object(map[string]any{
				"query":           prop("string", "Text matched against name, birth place, occupation and notes"),
				"tree_id":         prop("string", "Restrict to this tree"),
				"gender":          prop("string", "Exact gender"),
				"status":          enum("Living or deceased", "living", "deceased"),
				"birth_year_from": prop("integer", "Earliest birth year"),
				"birth_year_to":   prop("integer", "Latest birth year"),
				"location":        prop("string", "Text matched against birth or death place"),
			}),
			Annotations: readOnly,
		},
		{
			Name:        "get_tree_statistics",
			Description: "Member counts, estimated generations, average living age and the connected generation span of a tree",
			InputSchema: object(map[string]any{"tree_id": treeIDProp}, "tree_id"),
			Annotations: readOnly,
		},
		{
			Name:        "get_generations",
			Description: "Generation estimate plus each connected member's level relative to the root person",
			InputSchema: object(map[string]any{"tree_id": treeIDProp}, "tree_id"),
			Annotations: readOnly,
		},
		{
			Name:        "get_overview",
			Description: "Totals across all trees: trees, members, generations, memories",
			InputSchema: object(map[string]any{}),
			Annotations: readOnly,
		},
		{
			Name:        "get_recent_activity",
			Description: "Tree creations and member additions of the last 7 days, newest first",
			InputSchema: object(map[string]any{
				"tree_id": prop("string", "Restrict to this tree"),
				"type":    enum("Only this kind of entry", "tree_created", "member_added"),
				"limit":   prop("integer", "Maximum entries (default 10)"),
			}),
			Annotations: readOnly,
		},

		// Maintenance
		{
			Name:        "export_tree",
			Description: "Export a tree and all its stored members as one bundle",
			InputSchema: object(map[string]any{"tree_id": treeIDProp}, "tree_id"),
			Annotations: readOnly,
		},
		{
			Name:        "import_tree",
			Description: "Import a bundle produced by export_tree. Comments and trailing commas are accepted; ids are kept.",
			InputSchema: object(map[string]any{
				"data": prop("string", "Bundle text (JSON or JSONC)"),
			}, "data"),
		},
		{
			Name:        "check_integrity",
			Description: "Report orphaned member namespaces and relationship ids pointing at deleted members. Nothing is changed.",
			InputSchema: object(map[string]any{
				"tree_id": prop("string", "Check only this tree's references"),
			}),
			Annotations: readOnly,
		},
		{
			Name:        "purge_namespace",
			Description: "Delete the stored members of a tree that no longer exists",
			InputSchema: object(map[string]any{"tree_id": treeIDProp}, "tree_id"),
		},
	}
}

func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		tool := &sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}
		if hint, ok := def.Annotations["readOnlyHint"].(bool); ok {
			tool.Annotations = &sdkmcp.ToolAnnotations{ReadOnlyHint: hint}
		}
		server.AddTool(tool, toolHandler(handler, def.Name, logger))
	}
}

func toolHandler(handler *Handler, name string, logger *slog.Logger) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}

		result, err := handler.Handle(ctx, name, args)
		if err != nil {
			logger.Debug("tool call failed", "tool", name, "error", err)
			return errorResult(err), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encoding %s result: %w", name, err)
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		}, nil
	}
}

func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
