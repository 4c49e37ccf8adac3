package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/genoroot/internal/config"
	"github.com/rpggio/genoroot/internal/filestore"
	"github.com/rpggio/genoroot/internal/kv"
	"github.com/rpggio/genoroot/internal/sqlite"
)

// openStore opens the configured backend. The *filestore.Store is non-nil only for the
// file driver, which is the only one that can be watched.
func openStore(cfg config.StorageConfig, logger *slog.Logger) (kv.Store, *filestore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		return kv.NewMemory(), nil, noop, nil
	case config.DriverSQLite:
		if err := ensureParentDir(cfg.Path); err != nil {
			return nil, nil, nil, fmt.Errorf("prepare database path: %w", err)
		}
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		return sqlite.NewKVStore(db), nil, db.Close, nil
	case config.DriverFile:
		files, err := filestore.New(cfg.Path, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return files, files, noop, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func ensureParentDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
