package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sakif/township/internal/auth"
	"github.com/sakif/township/internal/coordinator"
	"github.com/sakif/township/internal/repository/sqlite"
)

// The services run against a real coordinator over an in-memory cache with
// no remote configured. That is cheap, and it exercises the same Mutate
// path production uses.

var fixedNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore returns a coordinator loaded with the seed data.
func newTestStore(t *testing.T) *coordinator.Coordinator {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	c := coordinator.New(nil, db, testLogger(), coordinator.WithClock(fixedClock))
	t.Cleanup(c.Close)
	if src := c.Load(context.Background()); src != coordinator.SourceSeed {
		t.Fatalf("Load() source = %q, want seed", src)
	}
	return c
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}
