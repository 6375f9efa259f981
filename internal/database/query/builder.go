// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package query provides SQL query building utilities for the database package.
// Every value is bound as a placeholder argument; column names come only from
// the caller's code, never from request input.
//
// Example usage:
//
//	wb := query.NewWhereBuilder()
//	wb.AddAnyOf([]string{query.Contains("lower(m.name)"), query.Contains("lower(d.name)")}, "nolan")
//	query.AddIn(wb, "m.id", ids)
//	whereClause, args := wb.BuildWithPrefix()
//	// WHERE (contains(lower(m.name), ?) OR contains(lower(d.name), ?)) AND m.id IN (?, ?)
package query

import (
	"strings"
)

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
// Clauses are AND-ed together.
type WhereBuilder struct {
	clauses []string
	args    []any
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []any{},
	}
}

// AddClause adds a raw WHERE clause with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...any) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddAnyOf adds one clause that matches when any predicate matches. Each
// predicate holds exactly one "?" placeholder, bound to value. An empty
// value or predicate list is skipped.
//
// Generates:
//
//	(predicate1 OR predicate2 ...)
func (wb *WhereBuilder) AddAnyOf(predicates []string, value string) *WhereBuilder {
	if value == "" || len(predicates) == 0 {
		return wb
	}

	for range predicates {
		wb.args = append(wb.args, value)
	}
	wb.clauses = append(wb.clauses, "("+strings.Join(predicates, " OR ")+")")
	return wb
}

// Contains returns a "contains(expr, ?)" predicate for AddAnyOf.
func Contains(expr string) string {
	return "contains(" + expr + ", ?)"
}

// AddIn adds "column IN (?, ?, ...)". An empty values slice adds "1=0" so the
// query matches nothing instead of everything.
func AddIn[T any](wb *WhereBuilder, column string, values []T) *WhereBuilder {
	if len(values) == 0 {
		wb.clauses = append(wb.clauses, "1=0")
		return wb
	}

	wb.clauses = append(wb.clauses, column+" IN ("+Placeholders(len(values))+")")
	for _, v := range values {
		wb.args = append(wb.args, v)
	}
	return wb
}

// Build constructs the final WHERE clause and returns it with arguments.
// Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.clauses) == 0 {
		return "1=1", []any{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []any) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}

// Placeholders returns n comma-separated "?" placeholders.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
