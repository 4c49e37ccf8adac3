package main

import (
	"github.com/spf13/cobra"
)

func newMemberCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Add, inspect, update and delete tree members",
	}

	add := &cobra.Command{
		Use:   "add TREE_ID",
		Short: "Add a member, optionally related to an existing one",
		Long: `Add creates a member in TREE_ID. With --related-to and --relationship the
edge "RELATED is RELATIONSHIP of the new member" is recorded on both sides.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"tree_id": args[0], "member": memberFields(cmd, "")}
			changedStrings(cmd, params, map[string]string{"related-to": "related_to", "relationship": "relationship"})
			return a.call(cmd, "add_member", params)
		},
	}
	addMemberFlags(add, "")
	add.Flags().String("related-to", "", "existing member id")
	add.Flags().String("relationship", "", "parent, child, spouse, sibling or other")

	get := &cobra.Command{
		Use:   "get MEMBER_ID",
		Short: "Show a member, searching every tree unless --tree is set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"member_id": args[0]}
			changedStrings(cmd, params, map[string]string{"tree": "tree_id"})
			return a.call(cmd, "get_member", params)
		},
	}
	get.Flags().String("tree", "", "tree id")

	list := &cobra.Command{
		Use:   "list TREE_ID",
		Short: "List a tree's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{"tree_id": args[0]}
			if cmd.Flags().Changed("generation") {
				generation, _ := cmd.Flags().GetInt("generation")
				params["generation"] = generation
			}
			return a.call(cmd, "list_members", params)
		},
	}
	list.Flags().Int("generation", 0, "only members at this level relative to the root person (parents -1, children +1)")

	update := &cobra.Command{
		Use:   "update MEMBER_ID",
		Short: "Change the given member fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, "update_member", map[string]any{
				"member_id": args[0],
				"updates":   memberFields(cmd, ""),
			})
		},
	}
	addMemberFlags(update, "")

	del := &cobra.Command{
		Use:   "delete TREE_ID MEMBER_ID",
		Short: "Delete a member; other members keep their edges to it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, "delete_member", map[string]any{"tree_id": args[0], "member_id": args[1]})
		},
	}

	cmd.AddCommand(add, get, list, update, del)
	return cmd
}

func newRelateCmd(a *app, use, method, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " MEMBER KIND RELATED",
		Short: short,
		Long: short + `.

KIND is parent, child, spouse or sibling and reads "MEMBER is KIND of RELATED".
Both members are updated; the inverse kind is recorded on RELATED.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, method, map[string]any{
				"member_id":  args[0],
				"kind":       args[1],
				"related_id": args[2],
			})
		},
	}
}
