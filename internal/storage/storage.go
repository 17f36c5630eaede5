package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var ddl embed.FS

// DB caches price lookups by their encoded query.
type DB struct{ *sql.DB }

// New opens (or creates) the sqlite database at path and applies the schema.
// ":memory:" keeps the cache in process memory.
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one connection: ":memory:" is per connection and sqlite has a single writer anyway
	db.SetMaxOpenConns(1)

	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &DB{db}, nil
}

func migrate(db *sql.DB) error {
	b, err := ddl.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

// ---------- lookups ---------------------------------------------------------

// GetLookup returns the cached result for query if it was stored at or after notBefore.
func (d *DB) GetLookup(ctx context.Context, query string, notBefore time.Time) (string, bool, error) {
	var result string
	err := d.QueryRowContext(ctx, `
        SELECT result FROM lookups
        WHERE query = ? AND created_at >= ?`, query, notBefore.Unix(),
	).Scan(&result)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return result, true, nil
}

func (d *DB) PutLookup(ctx context.Context, query, result string, at time.Time) error {
	_, err := d.ExecContext(ctx, `
        INSERT INTO lookups (query, result, created_at) VALUES (?,?,?)
        ON CONFLICT(query) DO UPDATE SET result=excluded.result,
            created_at=excluded.created_at
    `, query, result, at.Unix())
	return err
}

// PurgeLookups deletes entries stored before the given time.
func (d *DB) PurgeLookups(ctx context.Context, before time.Time) (int64, error) {
	res, err := d.ExecContext(ctx, `DELETE FROM lookups WHERE created_at < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
