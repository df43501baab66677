package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/repository"
)

// compile-time check that *DB implements repository.Cache
var _ repository.Cache = (*DB)(nil)

const (
	keyPrefix  = "township_"
	sessionKey = "township_current_user"
)

func collectionKey(c model.Collection) string {
	return keyPrefix + string(c)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putEntry(ctx context.Context, ex execer, key string, value []byte) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: writing %s: %w", key, err)
	}
	return nil
}

func (db *DB) getEntry(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: reading %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Get returns the raw JSON stored for a collection.
func (db *DB) Get(ctx context.Context, c model.Collection) ([]byte, bool, error) {
	return db.getEntry(ctx, collectionKey(c))
}

// Put replaces the stored JSON for a collection. Bytes are stored verbatim,
// so Put(Get(c)) never changes what is persisted.
func (db *DB) Put(ctx context.Context, c model.Collection, data []byte) error {
	return putEntry(ctx, db.conn, collectionKey(c), data)
}

// decodeInto unmarshals a stored collection into dst. A missing entry leaves
// dst untouched.
func (db *DB) decodeInto(ctx context.Context, c model.Collection, dst any) error {
	data, ok, err := db.Get(ctx, c)
	if err != nil || !ok {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("sqlite: decoding %s: %w", c, err)
	}
	return nil
}

// LoadDataset reads every collection. Collections that were never written
// come back as empty slices.
func (db *DB) LoadDataset(ctx context.Context) (model.Dataset, error) {
	var d model.Dataset
	targets := map[model.Collection]any{
		model.Users:         &d.Users,
		model.Payments:      &d.Payments,
		model.Issues:        &d.Issues,
		model.Notifications: &d.Notifications,
	}
	for _, c := range model.Collections() {
		if err := db.decodeInto(ctx, c, targets[c]); err != nil {
			return model.Dataset{}, err
		}
	}
	d.Normalize()
	return d, nil
}

// StoreDataset writes all four collections in one transaction, so a user
// delete and its cascade land together or not at all.
func (db *DB) StoreDataset(ctx context.Context, d model.Dataset) error {
	d.Normalize()
	values := map[model.Collection]any{
		model.Users:         d.Users,
		model.Payments:      d.Payments,
		model.Issues:        d.Issues,
		model.Notifications: d.Notifications,
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning cache transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	for _, c := range model.Collections() {
		data, err := json.Marshal(values[c])
		if err != nil {
			return fmt.Errorf("sqlite: encoding %s: %w", c, err)
		}
		if err := putEntry(ctx, tx, collectionKey(c), data); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing cache transaction: %w", err)
	}
	return nil
}

// Session returns the stored logged-in user, or nil.
func (db *DB) Session(ctx context.Context) (*model.User, error) {
	data, ok, err := db.getEntry(ctx, sessionKey)
	if err != nil || !ok {
		return nil, err
	}
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("sqlite: decoding session: %w", err)
	}
	return &u, nil
}

// SetSession stores u as the single logged-in identity.
func (db *DB) SetSession(ctx context.Context, u model.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("sqlite: encoding session: %w", err)
	}
	return putEntry(ctx, db.conn, sessionKey, data)
}

func (db *DB) ClearSession(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, sessionKey); err != nil {
		return fmt.Errorf("sqlite: clearing session: %w", err)
	}
	return nil
}
