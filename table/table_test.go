// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package table

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleTable() *Table {
	t := New("user_id", "survey_id", "ans_q1")
	t.Append(int64(3), int64(1), int64(5))
	t.Append(int64(1), int64(2), nil)
	t.Append(int64(1), int64(1), int64(-1))
	return t
}

func TestSortBy(t *testing.T) {
	tbl := sampleTable()
	if err := tbl.SortBy("user_id", "survey_id"); err != nil {
		t.Fatalf("SortBy() error = %v", err)
	}

	want := [][]any{
		{int64(1), int64(1), int64(-1)},
		{int64(1), int64(2), nil},
		{int64(3), int64(1), int64(5)},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("SortBy() rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSortBy_UnknownColumn(t *testing.T) {
	tbl := sampleTable()
	err := tbl.SortBy("nope")
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("SortBy() error = %v, want ErrUnknownColumn", err)
	}
}

func TestSortBy_NullsFirst(t *testing.T) {
	tbl := New("v")
	tbl.Append(int64(2))
	tbl.Append(nil)
	tbl.Append(int64(1))

	if err := tbl.SortBy("v"); err != nil {
		t.Fatal(err)
	}
	want := [][]any{{nil}, {int64(1)}, {int64(2)}}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonicalText(t *testing.T) {
	tbl := sampleTable()
	got, err := tbl.CanonicalText()
	if err != nil {
		t.Fatalf("CanonicalText() error = %v", err)
	}

	want := "user_id,survey_id,ans_q1\n3,1,5\n1,2,\\N\n1,1,-1\n"
	if got != want {
		t.Errorf("CanonicalText() = %q, want %q", got, want)
	}
}

func TestCanonicalText_NullDiffersFromEmptyString(t *testing.T) {
	a := New("c")
	a.Append(nil)
	b := New("c")
	b.Append("")

	ta, _ := a.CanonicalText()
	tb, _ := b.CanonicalText()
	if ta == tb {
		t.Error("NULL and empty string produced the same canonical text")
	}
}

func TestCanonicalText_RaggedRow(t *testing.T) {
	tbl := &Table{Columns: []string{"a", "b"}, Rows: [][]any{{int64(1)}}}
	if _, err := tbl.CanonicalText(); err == nil {
		t.Error("expected error for ragged row")
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := sampleTable()
	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "user_id,survey_id,ans_q1" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "1,2," {
		t.Errorf("NULL cell should export empty, got %q", lines[2])
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	n, err := sampleTable().SaveCSV(path)
	if err != nil {
		t.Fatalf("SaveCSV() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(data)) != n {
		t.Errorf("SaveCSV() reported %d bytes, file has %d", n, len(data))
	}
}

func TestInt64(t *testing.T) {
	tbl := New("id", "flag", "text")
	tbl.Append(int64(7), true, "42")

	tests := []struct {
		column string
		want   int64
	}{
		{"id", 7},
		{"ID", 7},
		{"flag", 1},
		{"text", 42},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, err := tbl.Int64(0, tt.column)
			if err != nil {
				t.Fatalf("Int64() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Int64() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppend_NormalizesBytes(t *testing.T) {
	tbl := New("c")
	tbl.Append([]byte("hello"))
	if s, ok := tbl.Rows[0][0].(string); !ok || s != "hello" {
		t.Errorf("Append() stored %#v, want string", tbl.Rows[0][0])
	}
}
