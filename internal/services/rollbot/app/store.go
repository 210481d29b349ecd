package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/rollbot/internal/services/rollbot/storage"
	"github.com/louisbranch/rollbot/internal/services/rollbot/storage/memory"
	poolpostgres "github.com/louisbranch/rollbot/internal/services/rollbot/storage/postgres"
	poolsqlite "github.com/louisbranch/rollbot/internal/services/rollbot/storage/sqlite"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// StoreConfig selects and configures the pool store backend.
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// OpenPoolStore opens the configured pool store. The returned close function
// is never nil.
func OpenPoolStore(ctx context.Context, cfg StoreConfig) (storage.PoolStore, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		path := cfg.SQLitePath
		if strings.TrimSpace(path) == "" {
			path = filepath.Join("data", "rollbot.db")
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, noop, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := poolsqlite.Open(ctx, path)
		if err != nil {
			return nil, noop, fmt.Errorf("open pool sqlite store: %w", err)
		}
		return store, store.Close, nil
	case DriverPostgres:
		store, err := poolpostgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open pool postgres store: %w", err)
		}
		return store, store.Close, nil
	case DriverMemory:
		return memory.New(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
