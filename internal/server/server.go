// Package server wires the HTTP servers: it connects stores, the
// coordinator, services, handlers and routes, and owns graceful shutdown.
//
// There are two servers:
//
//   - App (this file): the township JSON API. It owns the local cache and
//     the Sync Coordinator.
//   - TableStore (tablestore.go): the remote endpoint the coordinator syncs
//     with. It normally runs as its own process.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go reads Config →
//	server.New creates: sqlite.DB (cache) + remote.Client → Coordinator →
//	                    services → handlers → routes
//
// This is the "composition root": every dependency is built in one place.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/township/internal/auth"
	"github.com/sakif/township/internal/coordinator"
	"github.com/sakif/township/internal/handler"
	"github.com/sakif/township/internal/middleware"
	"github.com/sakif/township/internal/remote"
	sqliteRepo "github.com/sakif/township/internal/repository/sqlite"
	"github.com/sakif/township/internal/service"
)

// Config holds the app server configuration.
type Config struct {
	Port          int
	CachePath     string        // SQLite file of the local cache; ":memory:" in tests
	RemoteURL     string        // remote table store endpoint; empty or placeholder disables sync
	RemoteTimeout time.Duration // per remote call
	JWTSecret     string
	TokenTTL      time.Duration

	// Clock overrides time.Now for the services. Tests only.
	Clock func() time.Time
}

// Server is the app server and everything it owns.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	coord  *coordinator.Coordinator
}

// New opens the local cache, builds the coordinator, runs the initial load
// and sets up routes.
//
// The initial load never fails: with no remote and an empty cache the app
// starts on the seed data.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("opening local cache: %w", err)
	}

	client := remote.New(cfg.RemoteURL, logger.With(slog.String("component", "remote")),
		remote.WithTimeout(cfg.RemoteTimeout))
	if !client.Configured() {
		logger.Warn("remote store not configured, running on the local cache only")
	}

	opts := []coordinator.Option{coordinator.WithPushTimeout(cfg.RemoteTimeout)}
	if cfg.Clock != nil {
		opts = append(opts, coordinator.WithClock(cfg.Clock))
	}
	coord := coordinator.New(client, db, logger.With(slog.String("component", "coordinator")), opts...)
	coord.Load(ctx)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		coord:  coord,
	}
	s.routes(tokens)
	return s, nil
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Coordinator exposes the coordinator, for tests.
func (s *Server) Coordinator() *coordinator.Coordinator { return s.coord }

// routes configures middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/login                  → open session (public)
//	POST   /api/logout                 → close session
//	GET    /api/me                     → current user
//	POST   /api/reload                 → rerun the load protocol
//	GET    /api/sync                   → sync status
//	GET    /api/overview               → dashboard for the caller's role
//	GET    /api/payments               → all (admin) or own flat (resident)
//	GET    /api/issues                 → all (admin) or own flat (resident)
//	POST   /api/issues                 → raise an issue (resident)
//	GET    /api/notifications          → all (admin) or visible (resident)
//	GET    /api/users                  → admin
//	POST   /api/users                  → admin
//	PUT    /api/users/{username}       → admin
//	DELETE /api/users/{username}       → admin, cascades
//	POST   /api/payments               → admin
//	POST   /api/payments/{id}/paid     → admin
//	PUT    /api/issues/{id}            → admin
//	POST   /api/notifications          → admin
//
// MIDDLEWARE ORDER MATTERS:
// RequestID first so the logger can tag lines with it, Recoverer last so
// it wraps the handlers directly.
func (s *Server) routes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	clock := service.Clock(s.config.Clock)
	authSvc := service.NewAuthService(s.coord, tokens, s.logger)
	users := service.NewUserService(s.coord, clock, s.logger)
	payments := service.NewPaymentService(s.coord, clock, s.logger)
	issues := service.NewIssueService(s.coord, clock, s.logger)
	notifications := service.NewNotificationService(s.coord, clock, s.logger)
	overview := service.NewOverviewService(s.coord, clock)

	authHandler := handler.NewAuthHandler(authSvc, tokens.TTL(), s.logger)
	syncHandler := handler.NewSyncHandler(s.coord, s.logger)
	userHandler := handler.NewUserHandler(users)
	recordHandler := handler.NewRecordHandler(payments, issues, notifications, overview)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, s.coord))

			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
			r.Post("/reload", syncHandler.HandleReload)
			r.Get("/sync", syncHandler.HandleStatus)
			r.Get("/overview", recordHandler.HandleOverview)
			r.Get("/payments", recordHandler.HandleListPayments)
			r.Get("/issues", recordHandler.HandleListIssues)
			r.Post("/issues", recordHandler.HandleRaiseIssue)
			r.Get("/notifications", recordHandler.HandleListNotifications)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Get("/users", userHandler.HandleList)
				r.Post("/users", userHandler.HandleCreate)
				r.Put("/users/{username}", userHandler.HandleUpdate)
				r.Delete("/users/{username}", userHandler.HandleDelete)
				r.Post("/payments", recordHandler.HandleRecordPayment)
				r.Post("/payments/{id}/paid", recordHandler.HandleMarkPaid)
				r.Put("/issues/{id}", recordHandler.HandleUpdateIssue)
				r.Post("/notifications", recordHandler.HandleSendNotification)
			})
		})
	})
}

// Close sends any pending remote write, then closes the local cache.
func (s *Server) Close() error {
	s.coord.Close()
	return s.db.Close()
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully:
//  1. Stop accepting connections and drain in-flight requests
//  2. Let the pusher send the latest snapshot
//  3. Close the local cache
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("closing local cache", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("server starting",
		slog.Int("port", s.config.Port),
		slog.String("cache", s.config.CachePath),
		slog.Bool("remote", remote.Configured(s.config.RemoteURL)),
	)
	return serve(srv, s.logger)
}

// serve runs srv until it fails or the process is signalled.
func serve(srv *http.Server, logger *slog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server stopped gracefully")
	}
	return nil
}
