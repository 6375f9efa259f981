// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package query

import (
	"testing"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}

	if wb.Count() != 0 {
		t.Errorf("Expected count 0, got %d", wb.Count())
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_AddAnyOf(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddAnyOf([]string{Contains("lower(m.name)"), Contains("lower(d.name)")}, "nolan")

	whereClause, args := wb.Build()
	expected := "(contains(lower(m.name), ?) OR contains(lower(d.name), ?))"
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}
	if len(args) != 2 || args[0] != "nolan" || args[1] != "nolan" {
		t.Errorf("Expected two 'nolan' args, got %v", args)
	}
}

func TestWhereBuilder_AddAnyOf_SkipsEmpty(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddAnyOf([]string{Contains("m.name")}, "")
	wb.AddAnyOf(nil, "x")

	if !wb.IsEmpty() {
		t.Errorf("Expected empty builder, got %d clauses", wb.Count())
	}
}

func TestAddIn(t *testing.T) {
	wb := NewWhereBuilder()
	AddIn(wb, "mg.movie_id", []int64{1, 2, 3})

	whereClause, args := wb.Build()
	if whereClause != "mg.movie_id IN (?, ?, ?)" {
		t.Errorf("unexpected clause %q", whereClause)
	}
	if len(args) != 3 || args[2] != int64(3) {
		t.Errorf("unexpected args %v", args)
	}
}

func TestAddIn_EmptyMatchesNothing(t *testing.T) {
	wb := NewWhereBuilder()
	AddIn(wb, "id", []int64{})

	whereClause, _ := wb.Build()
	if whereClause != "1=0" {
		t.Errorf("Expected '1=0', got %q", whereClause)
	}
}

func TestWhereBuilder_Combined(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddAnyOf([]string{Contains("lower(m.name)")}, "dark")
	wb.AddAnyOf([]string{Contains("lower(m.name)")}, "knight")
	wb.AddClause("m.director_id = ?", int64(7))

	whereClause, args := wb.BuildWithPrefix()
	expected := "WHERE (contains(lower(m.name), ?)) AND (contains(lower(m.name), ?)) AND m.director_id = ?"
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}
	if len(args) != 3 {
		t.Errorf("Expected 3 args, got %d", len(args))
	}
	if wb.Count() != 3 {
		t.Errorf("Expected count 3, got %d", wb.Count())
	}
}

func TestWhereBuilder_AddAnyOf_Subquery(t *testing.T) {
	wb := NewWhereBuilder()
	wb.AddAnyOf([]string{
		Contains("lower(m.name)"),
		"EXISTS (SELECT 1 FROM movie_genres mg WHERE mg.movie_id = m.id AND contains(mg.tag, ?))",
	}, "noir")

	_, args := wb.Build()
	if len(args) != 2 {
		t.Errorf("Expected one arg per predicate, got %d", len(args))
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}

	for _, tt := range tests {
		if got := Placeholders(tt.n); got != tt.want {
			t.Errorf("Placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
