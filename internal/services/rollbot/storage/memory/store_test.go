package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/louisbranch/rollbot/internal/services/rollbot/storage"
)

func TestLatestPoolRecordNotFound(t *testing.T) {
	store := New()
	_, err := store.LatestPoolRecord(context.Background(), "Shadowrun")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendAndLatestRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	for version, pools := range []map[string]int{{"gm": 1}, {"gm": 3, "alice": 2}} {
		record := storage.PoolRecord{Game: "Shadowrun", Version: int64(version + 1), Pools: pools}
		if err := store.AppendPoolRecord(ctx, record); err != nil {
			t.Fatalf("append version %d: %v", version+1, err)
		}
	}

	latest, err := store.LatestPoolRecord(ctx, "Shadowrun")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Version != 2 {
		t.Fatalf("expected version 2, got %d", latest.Version)
	}
	if latest.Pools["alice"] != 2 || latest.Pools["gm"] != 3 {
		t.Fatalf("unexpected pools %v", latest.Pools)
	}
	if latest.RecordedAt.IsZero() {
		t.Fatal("expected recorded_at to be stamped")
	}
}

func TestAppendPoolRecordRejectsDuplicateVersion(t *testing.T) {
	store := New()
	ctx := context.Background()
	record := storage.PoolRecord{Game: "Shadowrun", Version: 1, Pools: map[string]int{"gm": 0}}
	if err := store.AppendPoolRecord(ctx, record); err != nil {
		t.Fatalf("append: %v", err)
	}
	err := store.AppendPoolRecord(ctx, record)
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestStoreDoesNotShareMaps(t *testing.T) {
	store := New()
	ctx := context.Background()
	pools := map[string]int{"gm": 1}
	if err := store.AppendPoolRecord(ctx, storage.PoolRecord{Game: "g", Version: 1, Pools: pools}); err != nil {
		t.Fatalf("append: %v", err)
	}
	pools["gm"] = 9

	latest, err := store.LatestPoolRecord(ctx, "g")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Pools["gm"] != 1 {
		t.Fatalf("expected stored value 1, got %d", latest.Pools["gm"])
	}
	latest.Pools["gm"] = 7

	again, err := store.LatestPoolRecord(ctx, "g")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if again.Pools["gm"] != 1 {
		t.Fatalf("expected stored value 1, got %d", again.Pools["gm"])
	}
}

func TestAppendPoolRecordConcurrentSameVersion(t *testing.T) {
	store := New()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.AppendPoolRecord(ctx, storage.PoolRecord{Game: "g", Version: 1, Pools: map[string]int{"gm": 0}})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one append to win, got %d", succeeded)
	}
}

func TestCanceledContext(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.LatestPoolRecord(ctx, "g"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := store.AppendPoolRecord(ctx, storage.PoolRecord{Game: "g", Version: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
