// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/surveyview/db"
	"github.com/danielhkuo/surveyview/table"
)

var ErrNonPermittedQuery = errors.New("non-permitted query")

// forbiddenKeywords are rejected anywhere in a query, case-insensitively.
// This is a substring check, not a parser: it also rejects identifiers and
// string literals that contain these words, and it does not look at
// statement separators.
var forbiddenKeywords = []string{"update", "drop", "delete", "create", "alter"}

// CheckPermitted returns ErrNonPermittedQuery if sqlText is empty or contains
// a schema- or data-mutating keyword
func CheckPermitted(sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return fmt.Errorf("%w: query is empty", ErrNonPermittedQuery)
	}

	lower := strings.ToLower(sqlText)
	for _, kw := range forbiddenKeywords {
		if strings.Contains(lower, kw) {
			return fmt.Errorf("%w: contains %q", ErrNonPermittedQuery, strings.ToUpper(kw))
		}
	}

	return nil
}

// IsPermitted reports whether CheckPermitted accepts sqlText
func IsPermitted(sqlText string) bool {
	return CheckPermitted(sqlText) == nil
}

// Executor runs queries against a store, one connection per call
type Executor struct {
	store *db.Store
}

func NewExecutor(store *db.Store) *Executor {
	return &Executor{store: store}
}

// ExecuteSelect validates sqlText against the allowlist and returns its rows.
// Rejected queries never reach the database.
func (e *Executor) ExecuteSelect(ctx context.Context, sqlText string) (*table.Table, error) {
	if err := CheckPermitted(sqlText); err != nil {
		return nil, err
	}

	var result *table.Table
	err := e.store.WithConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, sqlText)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		defer rows.Close()

		result, err = table.FromRows(rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("select executed", "rows", result.Len(), "columns", len(result.Columns))
	return result, nil
}

// ExecDDL runs a single trusted statement, such as a view drop or create.
// It bypasses the allowlist and must never receive user input.
func (e *Executor) ExecDDL(ctx context.Context, stmt string) error {
	return e.store.WithConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
		return nil
	})
}
