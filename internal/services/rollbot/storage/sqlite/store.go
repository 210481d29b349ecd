// Package sqlite provides a SQLite-backed pool store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/rollbot/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/rollbot/internal/services/rollbot/storage"
	"github.com/louisbranch/rollbot/internal/services/rollbot/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists pool records in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite pool store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	sqlDB, err := sql.Open("sqlite", dataSourceName(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// dataSourceName sets the connection pragmas with the _pragma query
// parameters the modernc driver runs on every new connection.
func dataSourceName(path string) string {
	return filepath.Clean(path) + "?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=synchronous(NORMAL)"
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LatestPoolRecord returns the highest version saved for game.
func (s *Store) LatestPoolRecord(ctx context.Context, game string) (storage.PoolRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PoolRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PoolRecord{}, fmt.Errorf("storage is not configured")
	}
	game = strings.TrimSpace(game)
	if game == "" {
		return storage.PoolRecord{}, fmt.Errorf("game is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT game, version, recorded_at, pools
		   FROM pool_records
		  WHERE game = ?
		  ORDER BY version DESC
		  LIMIT 1`,
		game,
	)

	var record storage.PoolRecord
	var recordedAt int64
	var pools string
	if err := row.Scan(&record.Game, &record.Version, &recordedAt, &pools); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PoolRecord{}, storage.ErrNotFound
		}
		return storage.PoolRecord{}, fmt.Errorf("%w: latest pool record: %w", storage.ErrUnavailable, err)
	}
	decoded, err := storage.DecodePools([]byte(pools))
	if err != nil {
		return storage.PoolRecord{}, fmt.Errorf("latest pool record %s@%d: %w", record.Game, record.Version, err)
	}
	record.Pools = decoded
	record.RecordedAt = fromMillis(recordedAt)
	return record, nil
}

// AppendPoolRecord inserts a new version.
func (s *Store) AppendPoolRecord(ctx context.Context, record storage.PoolRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if err := storage.ValidatePoolRecord(record); err != nil {
		return err
	}
	recordedAt := record.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}
	pools, err := storage.EncodePools(record.Pools)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO pool_records (game, version, recorded_at, pools)
		 VALUES (?, ?, ?, ?)`,
		strings.TrimSpace(record.Game),
		record.Version,
		toMillis(recordedAt),
		string(pools),
	)
	if err != nil {
		if isPoolRecordUniqueViolation(err) {
			return storage.ErrVersionConflict
		}
		return fmt.Errorf("%w: append pool record: %w", storage.ErrUnavailable, err)
	}
	return nil
}

func isPoolRecordUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "pool_records.")
}

var _ storage.PoolStore = (*Store)(nil)
