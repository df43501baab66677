// Package repository declares the storage interfaces the rest of the
// application depends on. Implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/schema"
)

// Cache is the local persistent store: the last-known-good snapshot of every
// collection plus the logged-in identity.
//
// Every write replaces a value in full. There are no partial updates.
type Cache interface {
	// Get returns the stored bytes of a collection; ok is false if the
	// collection was never written.
	Get(ctx context.Context, c model.Collection) (data []byte, ok bool, err error)
	Put(ctx context.Context, c model.Collection, data []byte) error

	// LoadDataset reads all four collections. Absent collections come back
	// empty.
	LoadDataset(ctx context.Context) (model.Dataset, error)
	// StoreDataset writes all four collections atomically.
	StoreDataset(ctx context.Context, d model.Dataset) error

	// Session returns the logged-in user, or nil if nobody is logged in.
	Session(ctx context.Context) (*model.User, error)
	SetSession(ctx context.Context, u model.User) error
	ClearSession(ctx context.Context) error
}

// TableRepository stores named tables as a header row plus positional rows.
type TableRepository interface {
	// ReadTable returns the header and data rows of a table. exists is false
	// if the table was never created.
	ReadTable(ctx context.Context, name string) (header []string, rows []schema.Row, exists bool, err error)
	// WriteTable clears the table (creating it if needed) and writes header
	// and rows.
	WriteTable(ctx context.Context, name string, header []string, rows []schema.Row) error
}
