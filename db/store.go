// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// ConnectionError wraps a driver failure to reach the store
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("error %q connecting to database during %s; check your connection parameters and that the database is reachable", e.Err, e.Op)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err was caused by a failure to reach the store
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// Store is an explicitly constructed handle to the backing database.
// Operations borrow a dedicated connection through WithConn.
type Store struct {
	conn   *sql.DB
	dbType string
}

// Open connects to the database and verifies it is reachable.
// dbType is "postgres" (lib/pq) or "sqlite" (modernc.org/sqlite, dsn is a file path).
func Open(ctx context.Context, dbType, dsn string) (*Store, error) {
	dbType = strings.ToLower(strings.TrimSpace(dbType))
	switch dbType {
	case TypePostgres:
	case TypeSQLite:
		if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q (use %s or %s)", dbType, TypePostgres, TypeSQLite)
	}

	conn, err := sql.Open(dbType, dsn)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Err: err}
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Op: "ping", Err: err}
	}

	if dbType == TypeSQLite {
		// One writer; views and checkpoints assume a single session anyway
		conn.SetMaxOpenConns(1)
	}

	return &Store{conn: conn, dbType: dbType}, nil
}

// Type returns the database type the store was opened with
func (s *Store) Type() string {
	return s.dbType
}

// RawDB returns the underlying pool. Used by fixtures and schema setup.
func (s *Store) RawDB() *sql.DB {
	return s.conn
}

// WithConn acquires a connection, runs fn with it and releases the connection
// on every exit path, including when fn panics.
func (s *Store) WithConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.conn.Conn(ctx)
	if err != nil {
		return &ConnectionError{Op: "acquire", Err: err}
	}
	defer conn.Close()

	return fn(conn)
}

// Close releases the pool
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}
