package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/solatis/groupsight/internal/core/db"
)

type snapshotRow struct {
	SnapshotKey string `db:"snapshot_key"`
	Payload     string `db:"payload"`
	ExpiresAt   string `db:"expires_at"`
}

// DB is a Store backed by the snapshots table. Snapshots survive process
// restarts, which matters for the scheduled refresher: a restart between
// schedule ticks does not force a cold fetch.
//
// Expiry is enforced on read; expired rows are deleted when observed.
type DB struct {
	queries *db.Queries
	now     func() time.Time
}

func NewDB(queries *db.Queries) (*DB, error) {
	if queries == nil {
		return nil, fmt.Errorf("queries are required")
	}
	return &DB{queries: queries, now: time.Now}, nil
}

// Get implements Store.
func (d *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var row snapshotRow
	if err := d.queries.Get("get-snapshot", &row, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}

	expiresAt, err := time.Parse(time.RFC3339, row.ExpiresAt)
	if err != nil {
		// Unreadable timestamp: treat the row as expired.
		_ = d.Delete(ctx, key)
		return nil, false, nil
	}

	if d.now().After(expiresAt) {
		_ = d.Delete(ctx, key)
		return nil, false, nil
	}
	return []byte(row.Payload), true, nil
}

// Set implements Store.
func (d *DB) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Payload is stored as text; snapshots are JSON documents.
	expiresAt := d.now().Add(ttl).UTC().Format(time.RFC3339)
	if _, err := d.queries.Exec("upsert-snapshot", key, string(value), expiresAt); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (d *DB) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := d.queries.Exec("delete-snapshot", key); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}
	return nil
}
