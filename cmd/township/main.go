// Package main is the entry point for the township records server.
//
// MAIN PACKAGE IN GO:
// The main package stays minimal. Its job is to:
// 1. Read configuration (from env vars, optionally loaded from a .env file)
// 2. Create the logger
// 3. Hand everything to internal/server and start it
//
// WHY cmd/township/?
// cmd/ holds one directory per executable. This repo has two: the app
// server here and the remote table store in cmd/tablestore.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/township/internal/server"
)

func main() {
	// === 1. SET UP LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === 2. LOAD .env ===
	// A missing .env is fine: real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not read .env", slog.String("error", err.Error()))
	}

	// === 3. READ CONFIGURATION ===
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	remoteTimeout := durationEnv(logger, "REMOTE_TIMEOUT", 30*time.Second)
	tokenTTL := durationEnv(logger, "TOKEN_TTL", 0)

	// REMOTE_URL empty (or still the placeholder) means local-only mode.
	remoteURL := os.Getenv("REMOTE_URL")

	// JWT_SECRET signs login tokens. Generate one with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	// === 4. LOCAL CACHE PATH ===
	cachePath := "data/township.db"
	if envPath := os.Getenv("CACHE_PATH"); envPath != "" {
		cachePath = envPath
	}
	cacheDir := filepath.Dir(cachePath)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logger.Error("failed to create cache directory",
			slog.String("dir", cacheDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 5. CREATE AND START THE SERVER ===
	cfg := server.Config{
		Port:          port,
		CachePath:     cachePath,
		RemoteURL:     remoteURL,
		RemoteTimeout: remoteTimeout,
		JWTSecret:     jwtSecret,
		TokenTTL:      tokenTTL,
	}

	// New runs the initial load, which may wait on the remote store.
	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// durationEnv parses a Go duration ("30s", "12h") from the environment.
func durationEnv(logger *slog.Logger, key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Error("invalid duration", slog.String("key", key), slog.String("value", v))
		os.Exit(1)
	}
	return d
}
