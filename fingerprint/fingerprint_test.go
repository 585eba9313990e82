// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fingerprint

import (
	"testing"

	"github.com/danielhkuo/surveyview/table"
)

func build(cells ...[]any) *table.Table {
	t := table.New("user_id", "survey_id", "ans_q1")
	for _, row := range cells {
		t.Append(row...)
	}
	return t
}

func TestOf_Deterministic(t *testing.T) {
	a := build([]any{int64(1), int64(1), int64(3)}, []any{int64(2), int64(1), nil})
	b := build([]any{int64(1), int64(1), int64(3)}, []any{int64(2), int64(1), nil})

	fa, fb := Of(a), Of(b)
	if fa != fb {
		t.Errorf("same content produced %s and %s", fa, fb)
	}
	if len(fa) != 32 {
		t.Errorf("expected 32 hex chars, got %d (%s)", len(fa), fa)
	}
	if Of(a) != fa {
		t.Error("Of() not stable across calls")
	}
}

func TestOf_DetectsCellChanges(t *testing.T) {
	base := build([]any{int64(1), int64(1), int64(3)})

	tests := []struct {
		name  string
		other *table.Table
	}{
		{"value changed", build([]any{int64(1), int64(1), int64(4)})},
		{"answer became unanswered", build([]any{int64(1), int64(1), int64(-1)})},
		{"answer became null", build([]any{int64(1), int64(1), nil})},
		{"row added", build([]any{int64(1), int64(1), int64(3)}, []any{int64(2), int64(1), int64(3)})},
		{"empty", build()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Of(base) == Of(tt.other) {
				t.Error("different tables produced the same fingerprint")
			}
		})
	}
}

func TestOf_RowOrderMatters(t *testing.T) {
	a := build([]any{int64(1), int64(1), int64(3)}, []any{int64(2), int64(1), int64(4)})
	b := build([]any{int64(2), int64(1), int64(4)}, []any{int64(1), int64(1), int64(3)})

	if Of(a) == Of(b) {
		t.Error("row order should change the fingerprint")
	}
	if err := b.SortBy("user_id"); err != nil {
		t.Fatal(err)
	}
	if Of(a) != Of(b) {
		t.Error("sorted tables should match")
	}
}

func TestOf_FailureReturnsSentinel(t *testing.T) {
	ragged := &table.Table{Columns: []string{"a", "b"}, Rows: [][]any{{int64(1)}}}
	if got := Of(ragged); got != Unavailable {
		t.Errorf("Of(ragged) = %q, want Unavailable", got)
	}
	if got := Of(nil); got != Unavailable {
		t.Errorf("Of(nil) = %q, want Unavailable", got)
	}
}

func TestIsStale(t *testing.T) {
	tests := []struct {
		name         string
		stored, live string
		want         bool
	}{
		{"equal", "abc", "abc", false},
		{"different", "abc", "def", true},
		{"live unavailable", "abc", Unavailable, true},
		{"stored unavailable", Unavailable, "abc", true},
		{"both unavailable", Unavailable, Unavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStale(tt.stored, tt.live); got != tt.want {
				t.Errorf("IsStale(%q, %q) = %v, want %v", tt.stored, tt.live, got, tt.want)
			}
		})
	}
}
