package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/genoroot/internal/config"
	"github.com/rpggio/genoroot/internal/domain/activity"
	"github.com/rpggio/genoroot/internal/domain/family"
	"github.com/rpggio/genoroot/internal/filestore"
	"github.com/rpggio/genoroot/internal/kv"
	"github.com/rpggio/genoroot/internal/localstore"
	"github.com/rpggio/genoroot/internal/mcp"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	driver     string
	path       string
	logLevel   string
}

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	opts rootOptions

	cfg      config.Config
	logger   *slog.Logger
	store    kv.Store
	files    *filestore.Store
	family   *family.Service
	activity *activity.Service
	handler  *mcp.Handler

	closers []func() error
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genoroot",
		Short: "A family tree store",
		Long: `genoroot keeps family trees, their members and the relationships between
them in a key-value store (memory, sqlite or a directory of JSON files).

Use "genoroot serve" to expose the store over MCP and JSON-RPC.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "config file (default $GENOROOT_CONFIG_PATH)")
	flags.StringVar(&a.opts.driver, "storage", "", "storage driver: memory, sqlite or file")
	flags.StringVar(&a.opts.path, "path", "", "sqlite database file or file store directory")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newServeCmd(a),
		newTreeCmd(a),
		newMemberCmd(a),
		newRelateCmd(a, "relate", "add_relationship", "Record that MEMBER is KIND of RELATED"),
		newRelateCmd(a, "unrelate", "remove_relationship", "Remove every KIND edge between MEMBER and RELATED"),
		newSearchCmd(a),
		newStatsCmd(a),
		newGenerationsCmd(a),
		newOverviewCmd(a),
		newActivityCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newDoctorCmd(a),
		newWatchCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg config.Config
		err error
	)
	if a.opts.configPath != "" {
		cfg, err = config.LoadPath(a.opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if a.opts.driver != "" {
		cfg.Storage.Driver = a.opts.driver
	}
	if a.opts.path != "" {
		cfg.Storage.Path = a.opts.path
	}
	if a.opts.logLevel != "" {
		cfg.Log.Level = a.opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	logger, closeLog, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger
	a.closers = append(a.closers, closeLog)

	store, files, closeStore, err := openStore(cfg.Storage, logger)
	if err != nil {
		return err
	}
	a.store = store
	a.files = files
	a.closers = append(a.closers, closeStore)

	repo := localstore.New(store, logger)
	a.family = family.NewService(repo, repo, logger)
	a.activity = activity.NewService(a.family, logger)
	a.handler = mcp.NewHandler(a.family, a.activity)

	logger.Debug("store opened", "driver", cfg.Storage.Driver, "path", cfg.Storage.Path)
	return nil
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// call runs one dispatcher method and prints its result as JSON.
func (a *app) call(cmd *cobra.Command, method string, params map[string]any) error {
	result, err := a.invoke(cmd.Context(), method, params)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func (a *app) invoke(ctx context.Context, method string, params map[string]any) (any, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encoding %s params: %w", method, err)
	}
	return a.handler.Handle(ctx, method, raw)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
