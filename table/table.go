// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package table

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// NullToken marks a NULL cell in the canonical text form
const NullToken = `\N`

var ErrUnknownColumn = errors.New("unknown column")

// Table is an in-memory tabular result set.
// Cells hold int64, float64, bool, string, time.Time or nil.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New creates an empty table with the given columns
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// FromRows drains rows into a Table. The caller still owns rows and must close it.
func FromRows(rows *sql.Rows) (*Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	t := New(columns...)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		t.Rows = append(t.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return t, nil
}

// normalize maps driver values onto the cell types a Table holds
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

// Append adds a row. Panics if the row width does not match the columns.
func (t *Table) Append(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("table: row has %d values, want %d", len(values), len(t.Columns)))
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = normalize(v)
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnIndex returns the index of the named column (case-insensitive)
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
}

// Int64 returns the cell at row i, column name as an int64
func (t *Table) Int64(i int, name string) (int64, error) {
	col, err := t.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	return toInt64(t.Rows[i][col])
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case float64:
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", x)
		}
		return n, nil
	case nil:
		return 0, errors.New("unexpected NULL")
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

// SortBy orders rows by the named columns, ascending. NULLs sort first.
// The sort is stable so ties keep their fetch order.
func (t *Table) SortBy(columns ...string) error {
	idx := make([]int, len(columns))
	for i, name := range columns {
		col, err := t.ColumnIndex(name)
		if err != nil {
			return err
		}
		idx[i] = col
	}

	sort.SliceStable(t.Rows, func(a, b int) bool {
		for _, col := range idx {
			if c := compare(t.Rows[a][col], t.Rows[b][col]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return nil
}

func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmpOrdered(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmpOrdered(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(FormatCell(a), FormatCell(b))
}

func cmpOrdered[T int64 | float64](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// FormatCell renders a single cell as text. NULL renders as an empty string.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

// CanonicalText serializes the table in row order as CSV, with NULL written as NullToken.
// Two tables with the same columns, cells and row order produce identical text.
func (t *Table) CanonicalText() (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.UseCRLF = false

	if err := w.Write(t.Columns); err != nil {
		return "", err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return "", fmt.Errorf("row has %d values, want %d", len(row), len(t.Columns))
		}
		for i, v := range row {
			if v == nil {
				record[i] = NullToken
				continue
			}
			record[i] = FormatCell(v)
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return b.String(), nil
}

// WriteCSV writes a header line followed by every row
func (t *Table) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = FormatCell(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// SaveCSV writes the table to path, replacing any existing file.
// Returns the number of bytes written.
func (t *Table) SaveCSV(path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	cw := &countingWriter{w: f}
	if err := t.WriteCSV(cw); err != nil {
		f.Close()
		return cw.n, err
	}
	if err := f.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to close %s: %w", path, err)
	}

	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
