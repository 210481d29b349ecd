// Package pool runs the shared dice pool of one game on top of a PoolStore.
//
// Every mutation is a load-modify-append unit of work. Withdrawals inside one
// process are serialized by a mutex; writers in other processes are detected
// through the record version and the whole unit of work is retried.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	apperrors "github.com/louisbranch/rollbot/internal/platform/errors"
	"github.com/louisbranch/rollbot/internal/platform/requestctx"
	"github.com/louisbranch/rollbot/internal/platform/timeouts"
	domain "github.com/louisbranch/rollbot/internal/services/rollbot/domain/pool"
	"github.com/louisbranch/rollbot/internal/services/rollbot/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxAttempts bounds how often a unit of work is retried after a
	// version conflict.
	DefaultMaxAttempts = 5

	tracerName = "github.com/louisbranch/rollbot/internal/services/rollbot/pool"
)

// Config configures a pool service.
type Config struct {
	Game        string
	Allocator   string
	MaxAttempts int
	// OperationTimeout caps each load-modify-append attempt. Zero uses
	// timeouts.StoreOperation.
	OperationTimeout time.Duration
}

// Service serves pool reads and mutations for one game.
type Service struct {
	store       storage.PoolStore
	game        string
	allocator   string
	maxAttempts int
	opTimeout   time.Duration
	now         func() time.Time
	tracer      trace.Tracer
	logf        func(format string, args ...any)

	mu sync.Mutex
}

// NewService builds a pool service over store.
func NewService(store storage.PoolStore, cfg Config) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("pool store is required")
	}
	game := strings.TrimSpace(cfg.Game)
	if game == "" {
		return nil, apperrors.New(apperrors.CodePoolGameRequired, "pool game is required")
	}
	allocator := strings.TrimSpace(cfg.Allocator)
	if allocator == "" {
		return nil, domain.ErrAllocatorRequired
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	opTimeout := cfg.OperationTimeout
	if opTimeout <= 0 {
		opTimeout = timeouts.StoreOperation
	}
	return &Service{
		store:       store,
		game:        game,
		allocator:   allocator,
		maxAttempts: maxAttempts,
		opTimeout:   opTimeout,
		now:         time.Now,
		tracer:      otel.Tracer(tracerName),
		logf:        log.Printf,
	}, nil
}

// Game returns the configured game key.
func (s *Service) Game() string {
	return s.game
}

// Allocator returns the configured allocator identity.
func (s *Service) Allocator() string {
	return s.allocator
}

// Snapshot returns the latest pool record with the allocator entry present.
func (s *Service) Snapshot(ctx context.Context) (storage.PoolRecord, error) {
	ctx, span := s.tracer.Start(ctx, "pool.Snapshot", trace.WithAttributes(
		attribute.String("rollbot.game", s.game),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	record, state, err := s.load(ctx)
	if err != nil {
		recordSpanError(span, err)
		return storage.PoolRecord{}, err
	}
	record.Pools = state.Balances()
	span.SetAttributes(attribute.Int64("rollbot.pool.version", record.Version))
	return record, nil
}

// Withdraw takes amount pool dice on behalf of participant and returns the
// record written for the change.
func (s *Service) Withdraw(ctx context.Context, participant string, amount int) (storage.PoolRecord, error) {
	participant = strings.TrimSpace(participant)
	ctx, span := s.tracer.Start(ctx, "pool.Withdraw", trace.WithAttributes(
		attribute.String("rollbot.game", s.game),
		attribute.String("rollbot.participant", participant),
		attribute.Int("rollbot.amount", amount),
	))
	defer span.End()

	if amount < 0 {
		recordSpanError(span, domain.ErrInvalidAmount)
		return storage.PoolRecord{}, domain.ErrInvalidAmount
	}
	if participant == "" {
		recordSpanError(span, domain.ErrParticipantRequired)
		return storage.PoolRecord{}, domain.ErrParticipantRequired
	}

	var allocation domain.Allocation
	record, err := s.mutate(ctx, func(state domain.State) (domain.State, error) {
		updated, applied, err := domain.Withdraw(state, participant, amount)
		if err != nil {
			return domain.State{}, err
		}
		allocation = applied
		return updated, nil
	})
	if err != nil {
		recordSpanError(span, err)
		return storage.PoolRecord{}, err
	}

	span.SetAttributes(
		attribute.Int64("rollbot.pool.version", record.Version),
		attribute.String("rollbot.pool.allocation", allocation.Kind.String()),
	)
	s.logf("pool: request=%s withdraw game=%q participant=%q amount=%d kind=%s before=%d after=%d deficit=%d per_participant=%d allocator_credit=%d version=%d",
		requestctx.RequestIDFromContext(ctx), s.game, participant, amount, allocation.Kind, allocation.Before, allocation.After,
		allocation.Deficit, allocation.PerParticipant, allocation.AllocatorCredit, record.Version)
	return record, nil
}

// Set overwrites one participant's count. It is an administrative
// correction and appends a new version like any other change.
func (s *Service) Set(ctx context.Context, participant string, count int) (storage.PoolRecord, error) {
	participant = strings.TrimSpace(participant)
	ctx, span := s.tracer.Start(ctx, "pool.Set", trace.WithAttributes(
		attribute.String("rollbot.game", s.game),
		attribute.String("rollbot.participant", participant),
		attribute.Int("rollbot.count", count),
	))
	defer span.End()

	record, err := s.mutate(ctx, func(state domain.State) (domain.State, error) {
		updated := state.Clone()
		if err := updated.Set(participant, count); err != nil {
			return domain.State{}, err
		}
		return updated, nil
	})
	if err != nil {
		recordSpanError(span, err)
		return storage.PoolRecord{}, err
	}
	s.logf("pool: request=%s set game=%q participant=%q count=%d version=%d", requestctx.RequestIDFromContext(ctx), s.game, participant, count, record.Version)
	return record, nil
}

// Initialize writes the first pool record for the game. When a record
// already exists it fails with CodePoolAlreadyInitialized unless force is
// set, in which case the balances are appended as a new version.
func (s *Service) Initialize(ctx context.Context, balances map[string]int, force bool) (storage.PoolRecord, error) {
	ctx, span := s.tracer.Start(ctx, "pool.Initialize", trace.WithAttributes(
		attribute.String("rollbot.game", s.game),
		attribute.Bool("rollbot.force", force),
	))
	defer span.End()

	state, err := domain.NewState(s.allocator, balances)
	if err != nil {
		recordSpanError(span, err)
		return storage.PoolRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		record, err := s.initializeOnce(ctx, state, force)
		if errors.Is(err, storage.ErrVersionConflict) {
			continue
		}
		if err != nil {
			recordSpanError(span, err)
			return storage.PoolRecord{}, err
		}
		s.logf("pool: initialize game=%q participants=%d total=%d version=%d", s.game, len(record.Pools), state.Total(), record.Version)
		return record, nil
	}
	err = s.conflictError()
	recordSpanError(span, err)
	return storage.PoolRecord{}, err
}

func (s *Service) initializeOnce(ctx context.Context, state domain.State, force bool) (storage.PoolRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var version int64 = 1
	current, err := s.store.LatestPoolRecord(ctx, s.game)
	switch {
	case err == nil:
		if !force {
			return storage.PoolRecord{}, apperrors.WithMetadata(
				apperrors.CodePoolAlreadyInitialized,
				"pool record already exists",
				map[string]string{"game": s.game},
			)
		}
		version = current.Version + 1
	case errors.Is(err, storage.ErrNotFound):
	default:
		return storage.PoolRecord{}, s.storeError(err)
	}
	return s.append(ctx, version, state)
}

// mutate runs one load-modify-append unit of work, retrying the whole unit
// when another writer claimed the next version first.
func (s *Service) mutate(ctx context.Context, apply func(domain.State) (domain.State, error)) (storage.PoolRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		record, err := s.mutateOnce(ctx, apply)
		if errors.Is(err, storage.ErrVersionConflict) {
			s.logf("pool: version conflict game=%q attempt=%d/%d", s.game, attempt, s.maxAttempts)
			continue
		}
		return record, err
	}
	return storage.PoolRecord{}, s.conflictError()
}

func (s *Service) mutateOnce(ctx context.Context, apply func(domain.State) (domain.State, error)) (storage.PoolRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	loaded, state, err := s.load(ctx)
	if err != nil {
		return storage.PoolRecord{}, err
	}
	updated, err := apply(state)
	if err != nil {
		return storage.PoolRecord{}, err
	}
	return s.append(ctx, loaded.Version+1, updated)
}

func (s *Service) load(ctx context.Context) (storage.PoolRecord, domain.State, error) {
	record, err := s.store.LatestPoolRecord(ctx, s.game)
	if err != nil {
		return storage.PoolRecord{}, domain.State{}, s.storeError(err)
	}
	state, err := domain.NewState(s.allocator, record.Pools)
	if err != nil {
		return storage.PoolRecord{}, domain.State{}, apperrors.Wrap(apperrors.CodePoolBackendUnavailable, "stored pool record is malformed", err)
	}
	return record, state, nil
}

// append returns storage.ErrVersionConflict unwrapped so mutate can retry.
func (s *Service) append(ctx context.Context, version int64, state domain.State) (storage.PoolRecord, error) {
	record := storage.PoolRecord{
		Game:       s.game,
		Version:    version,
		RecordedAt: s.now().UTC(),
		Pools:      state.Balances(),
	}
	if err := s.store.AppendPoolRecord(ctx, record); err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			return storage.PoolRecord{}, storage.ErrVersionConflict
		}
		return storage.PoolRecord{}, s.storeError(err)
	}
	return record, nil
}

func (s *Service) storeError(err error) error {
	metadata := map[string]string{"game": s.game}
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.WrapWithMetadata(apperrors.CodePoolRecordNotFound, "no pool record for game", metadata, err)
	}
	return apperrors.WrapWithMetadata(apperrors.CodePoolBackendUnavailable, "pool store unavailable", metadata, err)
}

func (s *Service) conflictError() error {
	return apperrors.WithMetadata(
		apperrors.CodePoolVersionConflict,
		fmt.Sprintf("pool changed concurrently %d times", s.maxAttempts),
		map[string]string{"game": s.game},
	)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
}
