package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search members by name, birth place and occupation",
		Long: `Search matches QUERY case-insensitively against full name, birth place and
occupation. Any filter flag switches to the filtered search, where QUERY also
matches notes and may be omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{}
			if len(args) == 1 {
				params["query"] = args[0]
			}
			changedStrings(cmd, params, map[string]string{"tree": "tree_id"})

			filtered := false
			for flag, field := range map[string]string{"gender": "gender", "status": "status", "location": "location"} {
				if cmd.Flags().Changed(flag) {
					value, _ := cmd.Flags().GetString(flag)
					params[field] = value
					filtered = true
				}
			}
			for flag, field := range map[string]string{"born-from": "birth_year_from", "born-to": "birth_year_to"} {
				if cmd.Flags().Changed(flag) {
					value, _ := cmd.Flags().GetInt(flag)
					params[field] = value
					filtered = true
				}
			}

			if filtered {
				return a.call(cmd, "filter_members", params)
			}
			if len(args) == 0 {
				return errors.New("search needs a QUERY or a filter flag")
			}
			return a.call(cmd, "search_members", params)
		},
	}

	cmd.Flags().String("tree", "", "limit to one tree")
	cmd.Flags().String("gender", "", "exact gender")
	cmd.Flags().String("status", "", "living or deceased")
	cmd.Flags().String("location", "", "birth or death place substring")
	cmd.Flags().Int("born-from", 0, "earliest birth year")
	cmd.Flags().Int("born-to", 0, "latest birth year")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats TREE_ID",
		Short: "Show member counts, generations and average age of a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, "get_tree_statistics", map[string]any{"tree_id": args[0]})
		},
	}
}

func newGenerationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generations TREE_ID",
		Short: "Show each member's generation level relative to the root person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, "get_generations", map[string]any{"tree_id": args[0]})
		},
	}
}

func newOverviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show totals across all trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, "get_overview", nil)
		},
	}
}

func newActivityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent tree creations and member additions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := map[string]any{}
			changedStrings(cmd, params, map[string]string{"tree": "tree_id", "type": "type"})
			if cmd.Flags().Changed("limit") {
				limit, _ := cmd.Flags().GetInt("limit")
				params["limit"] = limit
			}
			return a.call(cmd, "get_recent_activity", params)
		},
	}
	cmd.Flags().String("tree", "", "limit to one tree")
	cmd.Flags().String("type", "", "tree_created or member_added")
	cmd.Flags().Int("limit", 0, "maximum entries (default 10)")
	return cmd
}
