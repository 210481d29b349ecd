// Package server wires the rollbot HTTP and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	platformgrpc "github.com/louisbranch/rollbot/internal/platform/grpc"
	"github.com/louisbranch/rollbot/internal/platform/timeouts"
	"github.com/louisbranch/rollbot/internal/services/rollbot/pool"
	"github.com/louisbranch/rollbot/internal/services/rollbot/render"
	"github.com/louisbranch/rollbot/internal/services/rollbot/slack"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// PoolHealthService is the health service name reported for the pool.
const PoolHealthService = "rollbot.v1.PoolService"

// Config defines the inputs of the rollbot process.
type Config struct {
	HTTPAddr string
	// GRPCAddr serves the health endpoint. Empty disables it.
	GRPCAddr string

	SlackTokens   []string
	SlackBotToken string
	SlackAPIURL   string

	Game        string
	Allocator   string
	MaxAttempts int
	MaxDice     int

	Store StoreConfig

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the slash command endpoint and the gRPC health endpoint.
type Server struct {
	httpListener    net.Listener
	httpServer      *http.Server
	grpcListener    net.Listener
	grpcServer      *gogrpc.Server
	health          *health.Server
	shutdownTimeout time.Duration
	closeStore      func() error
}

// NewServer opens the pool store and binds both listeners.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = timeouts.Shutdown
	}
	if len(cfg.SlackTokens) == 0 {
		log.Printf("rollbot: no slack verification tokens configured; every command will be rejected")
	}

	store, closeStore, err := OpenPoolStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	pools, err := pool.NewService(store, pool.Config{
		Game:        cfg.Game,
		Allocator:   cfg.Allocator,
		MaxAttempts: cfg.MaxAttempts,
	})
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("init pool service: %w", err)
	}

	handler := NewHandler(HandlerConfig{
		Verifier: slack.NewVerifier(cfg.SlackTokens),
		Poster:   slack.NewClient(cfg.SlackAPIURL, cfg.SlackBotToken, nil),
		Pools:    pools,
		Renderer: render.New(render.DefaultLanguage),
		MaxDice:  cfg.MaxDice,
	})

	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	s := &Server{
		httpListener: httpListener,
		httpServer: &http.Server{
			Handler:           otelhttp.NewHandler(handler, "rollbot"),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		closeStore:      closeStore,
	}

	if grpcAddr := strings.TrimSpace(cfg.GRPCAddr); grpcAddr != "" {
		grpcListener, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("listen on %s: %w", grpcAddr, err)
		}
		s.grpcListener = grpcListener
		s.grpcServer, s.health = platformgrpc.NewHealthServer(PoolHealthService)
	}
	return s, nil
}

// Run creates and serves a rollbot server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init rollbot server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve rollbot: %w", err)
	}
	return nil
}

// HTTPAddr returns the bound HTTP address.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound gRPC address, or "" when disabled.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// ListenAndServe serves HTTP and gRPC until the context ends or either
// server fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("rollbot server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	g, gctx := errgroup.WithContext(ctx)

	log.Printf("rollbot http listening on %s", s.HTTPAddr())
	g.Go(func() error {
		if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	if s.grpcServer != nil {
		log.Printf("rollbot grpc health listening on %s", s.GRPCAddr())
		g.Go(func() error {
			if err := s.grpcServer.Serve(s.grpcListener); err != nil && !errors.Is(err, gogrpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if s.health != nil {
			s.health.Shutdown()
		}
		if s.grpcServer != nil {
			s.grpcServer.GracefulStop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.closeStore != nil {
		if err := s.closeStore(); err != nil {
			log.Printf("close pool store: %v", err)
		}
		s.closeStore = nil
	}
}
