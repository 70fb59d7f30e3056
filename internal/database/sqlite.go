package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the single long-lived store handle shared by all requests. It holds
// exactly one connection, so statements are serialized by database/sql.
type DB struct {
	db *sql.DB
}

// Result reports the outcome of a write statement.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// StorageError wraps any failure reported by the store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Open opens (or creates) the SQLite database at path and pings it within timeout.
// Caller should call Close.
func Open(ctx context.Context, path string, timeout time.Duration) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

// Run executes a write statement (INSERT/UPDATE/DELETE/DDL).
func (d *DB) Run(ctx context.Context, q sq.Sqlizer) (Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return Result{}, &StorageError{Op: "build", Err: err}
	}
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, &StorageError{Op: "run", Err: err}
	}
	// the sqlite3 driver never fails these two
	id, _ := res.LastInsertId()
	n, _ := res.RowsAffected()
	return Result{LastInsertID: id, RowsAffected: n}, nil
}

// Query runs a multi-row read and scans every row with scan. It returns an
// empty, non-nil slice when nothing matches.
func Query[T any](ctx context.Context, d *DB, q sq.Sqlizer, scan func(Scanner) (T, error)) ([]T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, &StorageError{Op: "build", Err: err}
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan", Err: err}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "rows", Err: err}
	}
	return out, nil
}

// Get runs a single-row read. The boolean is false, with a nil error, when no
// row matches.
func Get[T any](ctx context.Context, d *DB, q sq.Sqlizer, scan func(Scanner) (T, error)) (T, bool, error) {
	var zero T
	query, args, err := q.ToSql()
	if err != nil {
		return zero, false, &StorageError{Op: "build", Err: err}
	}
	v, err := scan(d.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, &StorageError{Op: "get", Err: err}
	}
	return v, true, nil
}
