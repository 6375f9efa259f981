// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package models holds the catalog entities and their persistence-neutral
// invariants. Entities carry no storage behavior; see internal/database for
// the repositories.
package models

import "strings"

// Column limits shared by validation and schema.
const (
	DirectorNameMaxLength = 150
	GenreNameMaxLength    = 100
	MovieNameMaxLength    = 150
)

// Director owns zero or more movies. Deleting a director deletes its movies.
type Director struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Genre is associated with zero or more movies. Deleting a genre detaches it.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie always references exactly one director and any number of genres.
type Movie struct {
	ID         int64
	Name       string
	IMDBScore  Decimal
	Popularity Decimal
	Director   Director
	Genres     []Genre
}

// GenreNames returns the names of the movie's genres in stored order.
func (m *Movie) GenreNames() []string {
	names := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		names[i] = g.Name
	}
	return names
}

// MovieQuery filters and orders a movie listing.
type MovieQuery struct {
	// Search holds free text matched against name, score, popularity,
	// director name and genre name.
	Search string

	// OrderByName sorts by name instead of id.
	OrderByName bool

	// Descending reverses the name order. Ignored unless OrderByName is set.
	Descending bool
}

// SearchTerms splits Search on whitespace and commas. Every term must match
// at least one searchable field.
func (q MovieQuery) SearchTerms() []string {
	return strings.FieldsFunc(q.Search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// ParseOrdering maps an ordering query value to a MovieQuery. Only "name"
// and "-name" are recognized; anything else keeps the default id order.
func ParseOrdering(value string) (orderByName, descending bool) {
	for _, field := range strings.Split(value, ",") {
		switch strings.TrimSpace(field) {
		case "name":
			return true, false
		case "-name":
			return true, true
		}
	}
	return false, false
}

// MovieChanges carries a write request after validation. Nil fields are left
// untouched on update; create requires every scalar and the director.
type MovieChanges struct {
	Name         *string
	IMDBScore    *Decimal
	Popularity   *Decimal
	DirectorName *string

	// GenreNames, when non-nil, is merged into the movie's genre set by name.
	GenreNames []string
}
