// Package memory provides an in-process pool store.
//
// Records live only as long as the process. The store is useful for tests
// and for running the bot without a database.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/rollbot/internal/services/rollbot/storage"
)

// Store keeps every pool record version in memory.
type Store struct {
	mu      sync.RWMutex
	records map[string][]storage.PoolRecord
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		records: make(map[string][]storage.PoolRecord),
		now:     time.Now,
	}
}

// LatestPoolRecord returns the highest version saved for game.
func (s *Store) LatestPoolRecord(ctx context.Context, game string) (storage.PoolRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PoolRecord{}, err
	}
	game = strings.TrimSpace(game)
	if game == "" {
		return storage.PoolRecord{}, fmt.Errorf("game is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.records[game]
	if len(versions) == 0 {
		return storage.PoolRecord{}, storage.ErrNotFound
	}
	latest := versions[len(versions)-1]
	latest.Pools = storage.ClonePools(latest.Pools)
	return latest, nil
}

// AppendPoolRecord saves a new version for the record's game.
func (s *Store) AppendPoolRecord(ctx context.Context, record storage.PoolRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidatePoolRecord(record); err != nil {
		return err
	}
	record.Game = strings.TrimSpace(record.Game)
	record.Pools = storage.ClonePools(record.Pools)
	if record.RecordedAt.IsZero() {
		record.RecordedAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions := s.records[record.Game]
	for _, existing := range versions {
		if existing.Version == record.Version {
			return storage.ErrVersionConflict
		}
	}
	versions = append(versions, record)
	// Keep versions ascending so the last element is always the latest.
	for i := len(versions) - 1; i > 0 && versions[i].Version < versions[i-1].Version; i-- {
		versions[i], versions[i-1] = versions[i-1], versions[i]
	}
	s.records[record.Game] = versions
	return nil
}

var _ storage.PoolStore = (*Store)(nil)
