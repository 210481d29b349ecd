package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/louisbranch/rollbot/internal/services/rollbot/storage"
)

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty dsn error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unique", err: &pq.Error{Code: "23505"}, want: true},
		{name: "wrapped unique", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), want: true},
		{name: "other pq", err: &pq.Error{Code: "23503"}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("isUniqueViolation = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	game := fmt.Sprintf("test-%d", time.Now().UnixNano())

	if _, err := store.LatestPoolRecord(ctx, game); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("latest error = %v, want %v", err, storage.ErrNotFound)
	}

	for version := int64(1); version <= 3; version++ {
		record := storage.PoolRecord{Game: game, Version: version, Pools: map[string]int{"gm": int(version)}}
		if err := store.AppendPoolRecord(ctx, record); err != nil {
			t.Fatalf("append version %d: %v", version, err)
		}
	}

	got, err := store.LatestPoolRecord(ctx, game)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Version != 3 || got.Pools["gm"] != 3 {
		t.Fatalf("latest = %+v", got)
	}

	err = store.AppendPoolRecord(ctx, storage.PoolRecord{Game: game, Version: 3, Pools: map[string]int{"gm": 0}})
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("duplicate append error = %v, want %v", err, storage.ErrVersionConflict)
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("ROLLBOT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ROLLBOT_TEST_POSTGRES_DSN not set")
	}
	store, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
