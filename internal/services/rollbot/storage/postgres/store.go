// Package postgres provides a PostgreSQL-backed pool store.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/louisbranch/rollbot/internal/services/rollbot/storage"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = pq.ErrorCode("23505")

// Store persists pool records in PostgreSQL.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open connects to PostgreSQL and ensures the pool schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the PostgreSQL handle.
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
		  WHERE game = $1
		  ORDER BY version DESC
		  LIMIT 1`,
		game,
	)

	var record storage.PoolRecord
	var pools []byte
	if err := row.Scan(&record.Game, &record.Version, &record.RecordedAt, &pools); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PoolRecord{}, storage.ErrNotFound
		}
		return storage.PoolRecord{}, fmt.Errorf("%w: latest pool record: %w", storage.ErrUnavailable, err)
	}
	decoded, err := storage.DecodePools(pools)
	if err != nil {
		return storage.PoolRecord{}, fmt.Errorf("latest pool record %s@%d: %w", record.Game, record.Version, err)
	}
	record.Pools = decoded
	record.RecordedAt = record.RecordedAt.UTC()
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
		 VALUES ($1, $2, $3, $4)`,
		strings.TrimSpace(record.Game),
		record.Version,
		recordedAt.UTC(),
		string(pools),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrVersionConflict
		}
		return fmt.Errorf("%w: append pool record: %w", storage.ErrUnavailable, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

var _ storage.PoolStore = (*Store)(nil)
