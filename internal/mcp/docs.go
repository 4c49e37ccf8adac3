package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `genoroot stores family trees: Trees hold Members, and Members are linked by relationships.

Core concepts:
- Tree: named collection with privacy (private, family, public) and an optional root person.
- Member: person record with four relationship lists (parents, children, spouses, siblings).
- Relationship: "A is <kind> of B"; both members are updated (parent <-> child, spouse and sibling are symmetric).

Workflow:
1) Orient: list_trees or get_overview.
2) Find people: search_members, filter_members, list_members.
3) Write: create_tree, add_member (with related_to/relationship), add_relationship, update_member.
4) Inspect: get_tree_statistics, get_generations, get_recent_activity.

Caveats:
- Deleting a member leaves its id in other members' relationship lists; deleting a tree keeps its members stored. check_integrity reports both.
- add_relationship does not deduplicate; check the member first if unsure.

Docs:
- genoroot://docs/index
- genoroot://docs/data-model
- genoroot://docs/relationships
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "genoroot://docs/index",
		Name:        "docs_index",
		Title:       "genoroot docs index",
		Description: "What the server stores and which doc to read next.",
		Content: `# genoroot docs

- ` + "`genoroot://docs/data-model`" + `: tree and member fields, storage layout.
- ` + "`genoroot://docs/relationships`" + `: relationship kinds, symmetry, generations.

## Known limitations

- ` + "`get_tree_statistics.generations`" + ` is an estimate (members / 4, rounded up) and is 0 without a root person. Use ` + "`generationSpan`" + ` or ` + "`get_generations`" + ` for the graph-based value.
- Average age uses calendar years only and may be off by one.
- Concurrent writers to the same store replace whole collections; the last write wins.
`,
	},
	{
		URI:         "genoroot://docs/data-model",
		Name:        "docs_data_model",
		Title:       "Data model",
		Description: "Tree and member fields and how they are stored.",
		Content: `# Data model

## Tree

id, name, description, privacy, rootPerson (member id or null), members (ordered ids, no duplicates), createdAt, lastModified.

## Member

id, firstName, middleName, lastName, birthDate, deathDate, gender, birthPlace, deathPlace, occupation, notes, profileImage, parents, children, spouses, siblings, memories, documents, createdAt, lastModified.

Dates of birth and death are kept exactly as entered (YYYY-MM-DD). A member without a death date is living.

## Storage

- ` + "`familyTrees`" + `: array of trees.
- ` + "`tree_<treeId>_members`" + `: array of that tree's members.

A member stored under a tree but missing from the tree's members list is not returned by list_members.
`,
	},
	{
		URI:         "genoroot://docs/relationships",
		Name:        "docs_relationships",
		Title:       "Relationships and generations",
		Description: "Relationship kinds, inverse mapping and generation levels.",
		Content: `# Relationships

` + "`add_relationship(member_id=A, related_id=B, kind)`" + ` reads "A is <kind> of B":

| kind    | A's list | B's list |
|---------|----------|----------|
| parent  | children | parents  |
| child   | parents  | children |
| spouse  | spouses  | spouses  |
| sibling | siblings | siblings |

Edges are appended without duplicate or cycle checks. remove_relationship removes every occurrence from both sides.

# Generations

get_generations assigns levels by walking from the root person: parents -1, children +1, spouses and siblings the same level. Members not connected to the root have no level.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
