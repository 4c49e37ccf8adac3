package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export TREE_ID",
		Short: "Write a tree and its members as a JSON bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := a.invoke(cmd.Context(), "export_tree", map[string]any{"tree_id": args[0]})
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return printJSON(cmd.OutOrStdout(), bundle)
			}

			data, err := json.MarshalIndent(bundle, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding bundle: %w", err)
			}
			if err := atomic.WriteFile(output, bytes.NewReader(append(data, '\n'))); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			a.logger.Info("tree exported", "tree_id", args[0], "path", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "bundle file (default stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Install a bundle written by export; comments and trailing commas are allowed",
		Long: `Import reads a bundle from FILE ("-" for stdin) and stores its tree and
members with their ids unchanged. It fails if the tree id is already in use.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading bundle: %w", err)
			}
			return a.call(cmd, "import_tree", map[string]any{"data": string(data)})
		},
	}
}
