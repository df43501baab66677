package tablestore

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/repository/sqlite"
	"github.com/sakif/township/internal/schema"
	"github.com/sakif/township/internal/seed"
)

func newTestStore(t *testing.T) (*Store, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, slog.New(slog.NewTextHandler(io.Discard, nil))), db
}

func TestReadAll_CreatesMissingTables(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)

	got, err := s.ReadAll(ctx)

	require.NoError(t, err)
	for _, c := range model.Collections() {
		assert.NotNil(t, got[c])
		assert.Empty(t, got[c])

		name, _ := schema.TableName(c)
		header, rows, exists, err := db.ReadTable(ctx, name)
		require.NoError(t, err)
		assert.True(t, exists, "%s should have been created", name)
		assert.Equal(t, schema.MustFor(c), header)
		assert.Empty(t, rows)
	}
}

func TestRead_SkipsBlankRowsAndPadsShortRows(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	require.NoError(t, db.WriteTable(ctx, "Users", []string{"username", "password", "role"}, []schema.Row{
		{"admin", "admin123", "admin"},
		{"", "orphan", "resident"},
		{"resident1", "pass123"},
	}))

	got, err := s.Read(ctx, model.Users)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Object{"username": "admin", "password": "admin123", "role": "admin"}, got[0])
	assert.Equal(t, "", got[1]["role"])
}

func TestWrite_RewritesHeaderFromSchema(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	require.NoError(t, db.WriteTable(ctx, "Payments", []string{"old", "columns"}, []schema.Row{{"x", "y"}}))

	err := s.Write(ctx, model.Payments, []map[string]any{
		{"id": "PAY-1", "amount": float64(5000), "status": "pending", "extra": "dropped"},
	})

	require.NoError(t, err)
	header, rows, _, err := db.ReadTable(ctx, "Payments")
	require.NoError(t, err)
	assert.Equal(t, schema.MustFor(model.Payments), header)
	require.Len(t, rows, 1)
	assert.Equal(t, schema.Row{"PAY-1", "", "", "5000", "", "", "pending", "", ""}, rows[0])
}

func TestWriteAll_OnlyTouchesSuppliedTables(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.NoError(t, s.Initialize(ctx, seed.Dataset(time.Now())))

	written, err := s.WriteAll(ctx, map[string][]map[string]any{
		"issues":  {},
		"unknown": {{"a": "b"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []model.Collection{model.Issues}, written)
	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got[model.Issues])
	assert.Len(t, got[model.Users], 4)
	assert.Len(t, got[model.Notifications], 2)
}

func TestInitialize_WritesSeedRows(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Initialize(ctx, seed.Dataset(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))))

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got[model.Users], 4)
	assert.Equal(t, "", got[model.Users][0]["flatNumber"], "admin has no flat")
	assert.Equal(t, "false", got[model.Notifications][0]["isRead"])
	assert.Equal(t, "5000", got[model.Payments][0]["amount"])
	assert.Equal(t, "2026-02", got[model.Payments][3]["month"])
}
