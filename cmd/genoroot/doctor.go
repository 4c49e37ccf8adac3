package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rpggio/genoroot/internal/localstore"
	"github.com/rpggio/genoroot/internal/mcp"
	"github.com/spf13/cobra"
)

// updatedAter is implemented by stores that track per-key write times.
type updatedAter interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

type doctorReport struct {
	mcp.IntegrityResponse
	// LastWrite holds, per orphaned namespace, when it was last written.
	LastWrite map[string]time.Time `json:"lastWrite,omitempty"`
	Purged    []string             `json:"purged,omitempty"`
}

func newDoctorCmd(a *app) *cobra.Command {
	var (
		treeID string
		purge  bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report orphaned member namespaces and dangling relationship ids",
		Long: `Doctor reports member namespaces left behind by deleted trees and
relationship entries that point at deleted members. Nothing is changed unless
--purge is given, which removes the orphaned namespaces.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			result, err := a.invoke(ctx, "check_integrity", map[string]any{"tree_id": treeID})
			if err != nil {
				return err
			}
			integrity, ok := result.(mcp.IntegrityResponse)
			if !ok {
				return fmt.Errorf("unexpected integrity result %T", result)
			}
			report := doctorReport{IntegrityResponse: integrity}

			if store, ok := a.store.(updatedAter); ok && len(integrity.OrphanedNamespaces) > 0 {
				report.LastWrite = make(map[string]time.Time)
				for _, id := range integrity.OrphanedNamespaces {
					if at, err := store.UpdatedAt(ctx, localstore.MembersKey(id)); err == nil {
						report.LastWrite[id] = at
					}
				}
			}

			if purge {
				for _, id := range integrity.OrphanedNamespaces {
					if _, err := a.invoke(ctx, "purge_namespace", map[string]any{"tree_id": id}); err != nil {
						return fmt.Errorf("purging %s: %w", id, err)
					}
					report.Purged = append(report.Purged, id)
				}
			}

			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&treeID, "tree", "", "check dangling ids in one tree only")
	cmd.Flags().BoolVar(&purge, "purge", false, "delete orphaned member namespaces")
	return cmd
}
