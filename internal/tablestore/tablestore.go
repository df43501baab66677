// Package tablestore is the service behind the remote endpoint: four named
// tables, each a header row plus positional data rows, read and written a
// whole table at a time.
//
// READ:
// A missing table is created with its schema header and reads as empty.
// Rows whose first cell is empty are skipped. Every other row becomes an
// object keyed by the stored header; short rows pad with "".
//
// WRITE:
// The table is cleared, the header is rewritten from the schema (not from
// what was stored before), and each record is projected onto the header
// with "" for anything it does not carry.
package tablestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/repository"
	"github.com/sakif/township/internal/schema"
)

// Object is one record as the wire carries it on read.
type Object = map[string]string

// Tables is the full read result, keyed by collection name.
type Tables map[model.Collection][]Object

// Store serves table reads and writes over a TableRepository.
type Store struct {
	tables repository.TableRepository
	logger *slog.Logger
}

func New(tables repository.TableRepository, logger *slog.Logger) *Store {
	return &Store{tables: tables, logger: logger}
}

// ReadAll reads all four tables, creating any that are missing.
func (s *Store) ReadAll(ctx context.Context) (Tables, error) {
	out := make(Tables, 4)
	for _, c := range model.Collections() {
		objs, err := s.Read(ctx, c)
		if err != nil {
			return nil, err
		}
		out[c] = objs
	}
	return out, nil
}

// Read reads one table.
func (s *Store) Read(ctx context.Context, c model.Collection) ([]Object, error) {
	name, err := schema.TableName(c)
	if err != nil {
		return nil, err
	}

	header, rows, exists, err := s.tables.ReadTable(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("tablestore: reading %s: %w", name, err)
	}
	if !exists {
		if err := s.initTable(ctx, c, name); err != nil {
			return nil, err
		}
		return []Object{}, nil
	}

	objs := make([]Object, 0, len(rows))
	for _, row := range rows {
		if schema.IsBlank(row) {
			continue
		}
		objs = append(objs, schema.ObjectFromRow(header, row))
	}
	return objs, nil
}

// initTable creates an empty table holding only its header.
func (s *Store) initTable(ctx context.Context, c model.Collection, name string) error {
	fields, err := schema.For(c)
	if err != nil {
		return err
	}
	if err := s.tables.WriteTable(ctx, name, fields, nil); err != nil {
		return fmt.Errorf("tablestore: creating %s: %w", name, err)
	}
	s.logger.Info("table created", slog.String("table", name))
	return nil
}

// Write replaces one table with records. Values may be any JSON scalar.
func (s *Store) Write(ctx context.Context, c model.Collection, records []map[string]any) error {
	fields, err := schema.For(c)
	if err != nil {
		return err
	}
	rows := make([]schema.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, schema.RowFromObject(fields, rec))
	}
	return s.writeRows(ctx, c, fields, rows)
}

func (s *Store) writeRows(ctx context.Context, c model.Collection, fields []string, rows []schema.Row) error {
	name, err := schema.TableName(c)
	if err != nil {
		return err
	}
	if err := s.tables.WriteTable(ctx, name, fields, rows); err != nil {
		return fmt.Errorf("tablestore: writing %s: %w", name, err)
	}
	s.logger.Debug("table written", slog.String("table", name), slog.Int("rows", len(rows)))
	return nil
}

// WriteAll writes every collection present in payload and leaves the rest
// untouched. Unknown keys are ignored.
func (s *Store) WriteAll(ctx context.Context, payload map[string][]map[string]any) ([]model.Collection, error) {
	var written []model.Collection
	for _, c := range model.Collections() {
		records, ok := payload[string(c)]
		if !ok || records == nil {
			continue
		}
		if err := s.Write(ctx, c, records); err != nil {
			return written, err
		}
		written = append(written, c)
	}
	return written, nil
}

// Initialize overwrites all four tables with d.
func (s *Store) Initialize(ctx context.Context, d model.Dataset) error {
	d.Normalize()
	writes := []struct {
		c    model.Collection
		rows func([]string) []schema.Row
	}{
		{model.Users, func(f []string) []schema.Row { return schema.FlattenAll(f, d.Users) }},
		{model.Payments, func(f []string) []schema.Row { return schema.FlattenAll(f, d.Payments) }},
		{model.Issues, func(f []string) []schema.Row { return schema.FlattenAll(f, d.Issues) }},
		{model.Notifications, func(f []string) []schema.Row { return schema.FlattenAll(f, d.Notifications) }},
	}
	for _, w := range writes {
		fields := schema.MustFor(w.c)
		if err := s.writeRows(ctx, w.c, fields, w.rows(fields)); err != nil {
			return err
		}
	}
	s.logger.Info("tables initialized",
		slog.Int("users", len(d.Users)),
		slog.Int("payments", len(d.Payments)),
		slog.Int("issues", len(d.Issues)),
		slog.Int("notifications", len(d.Notifications)),
	)
	return nil
}
