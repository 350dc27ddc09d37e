package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chepyr/task-tracker-cli/internal/config"
	"github.com/chepyr/task-tracker-cli/internal/db"
)

func noopClose() error { return nil }

// OpenRepository picks the adapter for cfg.Backend. SQL drivers must be
// registered by the caller (see cmd/task-tracker).
func OpenRepository(cfg *config.Config) (db.TaskRepositoryInterface, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return db.NewMemoryTaskRepository(), noopClose, nil

	case config.BackendFile:
		repo, err := db.NewFileTaskRepository(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, noopClose, nil

	case config.BackendSQLite:
		dsn := cfg.ResolveDSN()
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		return openSQL("sqlite3", dsn)

	case config.BackendPostgres:
		return openSQL("postgres", cfg.ResolveDSN())
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func openSQL(driverName, dsn string) (db.TaskRepositoryInterface, func() error, error) {
	conn, err := db.Connect(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", driverName, err)
	}
	if err := db.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", driverName, err)
	}
	return db.NewTaskRepository(conn), conn.Close, nil
}
