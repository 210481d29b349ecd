// Package storage defines persistence contracts for the rollbot dice pool.
//
// Pool records are append-only: every change writes a new version for the
// game and the latest version is the current pool. Nothing is ever updated
// in place or deleted.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates the game has no pool record yet.
	ErrNotFound = errors.New("pool record not found")
	// ErrUnavailable indicates the backend could not be reached or returned
	// a record that could not be decoded.
	ErrUnavailable = errors.New("pool store unavailable")
	// ErrVersionConflict indicates a record with the same game and version
	// already exists.
	ErrVersionConflict = errors.New("pool record version conflict")
)

// PoolRecord is one saved version of a game's pool.
type PoolRecord struct {
	Game    string
	Version int64
	// RecordedAt is informational only.
	RecordedAt time.Time
	Pools      map[string]int
}

// PoolStore persists pool records.
type PoolStore interface {
	// LatestPoolRecord returns the highest version saved for game.
	LatestPoolRecord(ctx context.Context, game string) (PoolRecord, error)
	// AppendPoolRecord saves a new version. It never overwrites an
	// existing version and returns ErrVersionConflict instead.
	AppendPoolRecord(ctx context.Context, record PoolRecord) error
}

// ValidatePoolRecord checks a record before it is written.
func ValidatePoolRecord(record PoolRecord) error {
	if strings.TrimSpace(record.Game) == "" {
		return fmt.Errorf("game is required")
	}
	if record.Version <= 0 {
		return fmt.Errorf("version must be greater than zero")
	}
	for participant, count := range record.Pools {
		if participant == "" {
			return fmt.Errorf("participant is required")
		}
		if count < 0 {
			return fmt.Errorf("pool count for %q must not be negative", participant)
		}
	}
	return nil
}

// EncodePools serializes pool counts for storage.
func EncodePools(pools map[string]int) ([]byte, error) {
	if pools == nil {
		pools = map[string]int{}
	}
	data, err := json.Marshal(pools)
	if err != nil {
		return nil, fmt.Errorf("encode pools: %w", err)
	}
	return data, nil
}

// DecodePools parses stored pool counts. Malformed data and negative counts
// are reported as ErrUnavailable.
func DecodePools(data []byte) (map[string]int, error) {
	pools := map[string]int{}
	if err := json.Unmarshal(data, &pools); err != nil {
		return nil, fmt.Errorf("%w: decode pools: %w", ErrUnavailable, err)
	}
	for participant, count := range pools {
		if count < 0 {
			return nil, fmt.Errorf("%w: negative pool count for %q", ErrUnavailable, participant)
		}
	}
	return pools, nil
}

// ClonePools copies pool counts so callers cannot share a map with a store.
func ClonePools(pools map[string]int) map[string]int {
	copied := make(map[string]int, len(pools))
	for participant, count := range pools {
		copied[participant] = count
	}
	return copied
}
