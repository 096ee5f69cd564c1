// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New opens the configured store, seeds it,
// and wires store → FeedService → FeedHandler onto a chi router, so no
// other package constructs its own dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/photofeed/internal/auth"
	"github.com/sakif/photofeed/internal/config"
	"github.com/sakif/photofeed/internal/handler"
	"github.com/sakif/photofeed/internal/metrics"
	"github.com/sakif/photofeed/internal/middleware"
	"github.com/sakif/photofeed/internal/repository"
	"github.com/sakif/photofeed/internal/repository/memory"
	sqliteRepo "github.com/sakif/photofeed/internal/repository/sqlite"
	"github.com/sakif/photofeed/internal/seed"
	"github.com/sakif/photofeed/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the store. Start closes it on the way out; callers that
// never Start (tests) call Close.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	store    repository.SeedableStore
	closer   io.Closer
	registry *prometheus.Registry
}

// New creates a Server for cfg: it opens the store, seeds it when asked, and
// registers every route.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, closer, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		store:    store,
		closer:   closer,
		registry: prometheus.NewRegistry(),
	}

	if cfg.SeedData {
		if err := s.seed(context.Background()); err != nil {
			closer.Close()
			return nil, err
		}
	}

	s.setupRoutes()
	return s, nil
}

// openStore builds the configured backend.
func openStore(cfg *config.Config) (repository.SeedableStore, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		// Create the data directory like `mkdir -p`.
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("server: creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("server: opening database: %w", err)
		}
		return db, db, nil
	case config.BackendMemory:
		store := memory.New(nil)
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("server: unknown store backend %q", cfg.StoreBackend)
	}
}

func (s *Server) seed(ctx context.Context) error {
	hasher, err := auth.NewPasswordHasher(s.config.BCryptCost)
	if err != nil {
		return fmt.Errorf("server: creating password hasher: %w", err)
	}
	res, err := seed.Load(ctx, s.store, hasher)
	if err != nil {
		return fmt.Errorf("server: seeding store: %w", err)
	}
	if res.Skipped {
		s.logger.Info("store already seeded, skipping sample data")
		return nil
	}
	s.logger.Info("sample data loaded",
		slog.Int("users", res.Users),
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
	)
	return nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                   → liveness
// GET    /metrics                   → Prometheus exposition
// GET    /api/stories               → users with a story
// GET    /api/feed                  → {posts, users}
// GET    /api/posts/{id}            → {post, user}
// POST   /api/posts/{id}/like       → like    (DELETE unlikes)
// POST   /api/posts/{id}/save       → save    (DELETE unsaves)
// POST   /api/posts/{id}/comments   → add comment
// GET    /api/profile               → caller's user + posts
// GET    /api/explore               → all posts
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: every later log line can carry the id
// 2. RealIP: extracts real client IP from proxy headers
// 3. Logger and Metrics: observe the final status
// 4. Recoverer: turns panics into 500s before Logger sees the response
func (s *Server) setupRoutes() {
	m := metrics.New(s.registry)
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.router.Use(middleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(m))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	feedService := service.NewFeedService(s.store, m, s.logger)
	feedHandler := handler.NewFeedHandler(feedService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.FixedIdentity(s.config.ViewerID))
		feedHandler.Routes(r)
	})
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the store.
func (s *Server) Close() error {
	return s.closer.Close()
}

// Start serves HTTP until SIGINT/SIGTERM, then shuts down gracefully:
// 1. Stop accepting new connections
// 2. Wait up to ShutdownTimeout for in-flight requests
// 3. Close the store (flushes the SQLite WAL)
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("backend", s.config.StoreBackend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
