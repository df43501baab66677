// Package main runs the remote table store: the four-table service the
// township server syncs with.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docopt/docopt-go"
	"github.com/joho/godotenv"

	"github.com/sakif/township/internal/server"
)

const version = "1.0"

const usage = `Township table store.

Serves GET / (read every table) and POST / (replace tables) for the
township server's REMOTE_URL.

Usage:
    tablestore serve [--port=<port>] [--db=<path>]
    tablestore init [--db=<path>]
    tablestore -h | --help
    tablestore --version

Options:
    -h --help        Show this screen.
    --version        Show version.
    --port=<port>    Listen port [default: 8090].
    --db=<path>      Table database file [default: data/tables.db].`

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not read .env", slog.String("error", err.Error()))
	}

	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	dbPath, _ := opts.String("--db")
	if env := os.Getenv("TABLES_DB"); env != "" && dbPath == "data/tables.db" {
		dbPath = env
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if serve, _ := opts.Bool("serve"); serve {
		port, err := opts.Int("--port")
		if err != nil {
			logger.Error("invalid --port", slog.String("error", err.Error()))
			os.Exit(2)
		}
		runServe(logger, server.TableStoreConfig{Port: port, DBPath: dbPath})
	} else if initialize, _ := opts.Bool("init"); initialize {
		runInit(logger, dbPath)
	}
}

func runServe(logger *slog.Logger, cfg server.TableStoreConfig) {
	ts, err := server.NewTableStore(cfg, logger)
	if err != nil {
		logger.Error("failed to create table store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := ts.Start(); err != nil {
		logger.Error("table store error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runInit overwrites every table with the seed data, headers included.
func runInit(logger *slog.Logger, dbPath string) {
	ts, err := server.NewTableStore(server.TableStoreConfig{DBPath: dbPath}, logger)
	if err != nil {
		logger.Error("failed to open table store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer ts.Close()

	if err := ts.Initialize(context.Background()); err != nil {
		logger.Error("initialization failed", slog.String("error", err.Error()))
		ts.Close()
		os.Exit(1)
	}
	logger.Info("tables initialized with seed data", slog.String("database", dbPath))
}
