package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/township/internal/repository"
	"github.com/sakif/township/internal/schema"
)

// compile-time check that *DB implements repository.TableRepository
var _ repository.TableRepository = (*DB)(nil)

// ReadTable returns the header (position 0) and data rows of a sheet in
// position order.
func (db *DB) ReadTable(ctx context.Context, name string) ([]string, []schema.Row, bool, error) {
	var exists int
	err := db.conn.QueryRowContext(ctx, `SELECT 1 FROM sheets WHERE name = ?`, name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, fmt.Errorf("sqlite: looking up sheet %s: %w", name, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT position, cells FROM sheet_rows WHERE sheet = ? ORDER BY position`, name)
	if err != nil {
		return nil, nil, true, fmt.Errorf("sqlite: reading sheet %s: %w", name, err)
	}
	// ALWAYS close rows. An open cursor holds the only pooled connection.
	defer rows.Close()

	var header []string
	var data []schema.Row
	for rows.Next() {
		var position int
		var cells string
		if err := rows.Scan(&position, &cells); err != nil {
			return nil, nil, true, fmt.Errorf("sqlite: scanning sheet %s: %w", name, err)
		}
		var row schema.Row
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return nil, nil, true, fmt.Errorf("sqlite: decoding sheet %s row %d: %w", name, position, err)
		}
		if position == 0 {
			header = row
			continue
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, true, fmt.Errorf("sqlite: iterating sheet %s: %w", name, err)
	}

	return header, data, true, nil
}

// WriteTable clears a sheet and rewrites it: header at position 0, then one
// row per record.
func (db *DB) WriteTable(ctx context.Context, name string, header []string, data []schema.Row) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning sheet transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sheets (name, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET updated_at = excluded.updated_at`,
		name, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating sheet %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet = ?`, name); err != nil {
		return fmt.Errorf("sqlite: clearing sheet %s: %w", name, err)
	}

	insert := func(position int, cells []string) error {
		b, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("sqlite: encoding sheet %s row %d: %w", name, position, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (sheet, position, cells) VALUES (?, ?, ?)`,
			name, position, string(b),
		)
		if err != nil {
			return fmt.Errorf("sqlite: writing sheet %s row %d: %w", name, position, err)
		}
		return nil
	}

	if err := insert(0, header); err != nil {
		return err
	}
	for i, row := range data {
		if err := insert(i+1, row); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing sheet %s: %w", name, err)
	}
	return nil
}
