package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/township/internal/handler"
	"github.com/sakif/township/internal/middleware"
	sqliteRepo "github.com/sakif/township/internal/repository/sqlite"
	"github.com/sakif/township/internal/seed"
	"github.com/sakif/township/internal/tablestore"
)

// TableStoreConfig holds the remote table store configuration.
type TableStoreConfig struct {
	Port   int
	DBPath string
}

// TableStore serves the remote store wire contract on GET / and POST /.
type TableStore struct {
	router *chi.Mux
	config TableStoreConfig
	logger *slog.Logger
	db     *sqliteRepo.DB
	store  *tablestore.Store
}

func NewTableStore(cfg TableStoreConfig, logger *slog.Logger) (*TableStore, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening table database: %w", err)
	}

	ts := &TableStore{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		store:  tablestore.New(db, logger),
	}

	ts.router.Use(chimiddleware.RequestID)
	ts.router.Use(chimiddleware.RealIP)
	ts.router.Use(middleware.Logger(logger))
	ts.router.Use(chimiddleware.Recoverer)

	h := handler.NewTableStoreHandler(ts.store, logger)
	ts.router.Get("/", h.HandleRead)
	ts.router.Post("/", h.HandleWrite)

	return ts, nil
}

// Handler exposes the router, for tests.
func (ts *TableStore) Handler() http.Handler { return ts.router }

// Initialize overwrites every table with the seed data.
func (ts *TableStore) Initialize(ctx context.Context) error {
	return ts.store.Initialize(ctx, seed.Dataset(time.Now()))
}

func (ts *TableStore) Close() error {
	return ts.db.Close()
}

// Start serves until SIGINT/SIGTERM, then closes the database.
func (ts *TableStore) Start() error {
	defer ts.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", ts.config.Port),
		Handler:      ts.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	ts.logger.Info("table store starting",
		slog.Int("port", ts.config.Port),
		slog.String("database", ts.config.DBPath),
	)
	return serve(srv, ts.logger)
}
