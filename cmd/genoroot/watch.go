package main

import (
	"errors"
	"fmt"

	"github.com/rpggio/genoroot/internal/filestore"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print keys changed by other processes (file driver only)",
		Long: `Watch follows a file store directory and prints one line per key another
process saves or deletes, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.files == nil {
				return errors.New("watch needs the file storage driver (--storage file)")
			}
			out := cmd.OutOrStdout()
			a.logger.Info("watching store", "dir", a.files.Dir())
			return a.files.Watch(cmd.Context(), func(c filestore.Change) {
				fmt.Fprintf(out, "%s\t%s\n", c.Op, c.Key)
			})
		},
	}
}
