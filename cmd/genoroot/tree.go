package main

import (
	"github.com/spf13/cobra"
)

// memberFlag maps a CLI flag onto a member field of the dispatcher params.
type memberFlag struct {
	flag  string
	field string
	usage string
}

var memberFlags = []memberFlag{
	{"first", "first_name", "first name"},
	{"middle", "middle_name", "middle name"},
	{"last", "last_name", "last name"},
	{"birth", "birth_date", "birth date (YYYY-MM-DD)"},
	{"death", "death_date", "death date (YYYY-MM-DD)"},
	{"gender", "gender", "gender"},
	{"birth-place", "birth_place", "place of birth"},
	{"death-place", "death_place", "place of death"},
	{"occupation", "occupation", "occupation"},
	{"notes", "notes", "free-form notes"},
	{"image", "profile_image", "profile image URL"},
}

func addMemberFlags(cmd *cobra.Command, prefix string) {
	for _, f := range memberFlags {
		cmd.Flags().String(prefix+f.flag, "", f.usage)
	}
}

// memberFields returns only the member flags the user set, so the same map
// serves as a full record or a partial update.
func memberFields(cmd *cobra.Command, prefix string) map[string]any {
	fields := map[string]any{}
	for _, f := range memberFlags {
		if !cmd.Flags().Changed(prefix + f.flag) {
			continue
		}
		value, _ := cmd.Flags().GetString(prefix + f.flag)
		fields[f.field] = value
	}
	return fields
}

// changedStrings copies the named string flags that were set into params.
func changedStrings(cmd *cobra.Command, params map[string]any, flagToField map[string]string) {
	for flag, field := range flagToField {
		if cmd.Flags().Changed(flag) {
			value, _ := cmd.Flags().GetString(flag)
			params[field] = value
		}
	}
}

func newTreeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Create, list, inspect and delete family trees",
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a tree, with a root person when --root-first and --root-last are set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"name": args[0], "root": memberFields(cmd, "root-")}
			changedStrings(cmd, params, map[string]string{"description": "description", "privacy": "privacy"})
			return a.call(cmd, "create_tree", params)
		},
	}
	create.Flags().String("description", "", "tree description")
	create.Flags().String("privacy", "", "private, family or public (default private)")
	addMemberFlags(create, "root-")

	list := &cobra.Command{
		Use:   "list",
		Short: "List trees with member counts and tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, "list_trees", nil)
		},
	}

	get := &cobra.Command{
		Use:   "get TREE_ID",
		Short: "Show one tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, "get_tree", map[string]any{"tree_id": args[0]})
		},
	}

	update := &cobra.Command{
		Use:   "update TREE_ID",
		Short: "Change tree fields; --root \"\" clears the root person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"tree_id": args[0]}
			changedStrings(cmd, params, map[string]string{
				"name":        "name",
				"description": "description",
				"privacy":     "privacy",
				"root":        "root_person",
			})
			return a.call(cmd, "update_tree", params)
		},
	}
	update.Flags().String("name", "", "tree name")
	update.Flags().String("description", "", "tree description")
	update.Flags().String("privacy", "", "private, family or public")
	update.Flags().String("root", "", "root person member id")

	del := &cobra.Command{
		Use:   "delete TREE_ID",
		Short: "Delete a tree; its members stay stored until purged with doctor --purge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, "delete_tree", map[string]any{"tree_id": args[0]})
		},
	}

	cmd.AddCommand(create, list, get, update, del)
	return cmd
}
