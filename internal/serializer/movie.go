// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package serializer maps movies between their JSON wire form and the
// models package. Genres travel as a flat list of names and the director as
// a nested object holding only its name.
package serializer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// DirectorWire is the nested director object of a movie.
type DirectorWire struct {
	Name string `json:"name"`
}

// MovieWire is the JSON representation of a movie.
type MovieWire struct {
	Name       string         `json:"name"`
	Score      models.Decimal `json:"score" swaggertype:"string" example:"8.80"`
	Popularity models.Decimal `json:"popularity" swaggertype:"string" example:"88.00"`
	Genre      []string       `json:"genre"`
	Director   DirectorWire   `json:"director"`
	ID         int64          `json:"id"`
}

// ToWire converts a movie to its wire form. Genre is never null.
func ToWire(m *models.Movie) MovieWire {
	return MovieWire{
		Name:       m.Name,
		Score:      m.IMDBScore,
		Popularity: m.Popularity,
		Genre:      m.GenreNames(),
		Director:   DirectorWire{Name: m.Director.Name},
		ID:         m.ID,
	}
}

// ToWireList converts movies in order. An empty input yields an empty,
// non-nil slice so it encodes as [].
func ToWireList(movies []models.Movie) []MovieWire {
	out := make([]MovieWire, len(movies))
	for i := range movies {
		out[i] = ToWire(&movies[i])
	}
	return out
}

// Mode selects which fields a write payload must carry.
type Mode int

const (
	// ModeCreate requires name, score, popularity and director.
	ModeCreate Mode = iota
	// ModeReplace has the same requirements as ModeCreate, for PUT.
	ModeReplace
	// ModePatch makes every field optional.
	ModePatch
)

// DecimalInput holds a decimal exactly as the client wrote it. It accepts a
// JSON string or a JSON number; precision is checked by the "decimal" tag.
type DecimalInput string

// UnmarshalJSON keeps the literal text of numbers and the content of strings.
// Other JSON values are kept verbatim and fail validation later.
func (d *DecimalInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DecimalInput(s)
		return nil
	}
	*d = DecimalInput(data)
	return nil
}

// DirectorPayload is the nested director of a write payload.
type DirectorPayload struct {
	Name *string `json:"name" validate:"required,notblank,max=150"`
}

// MoviePayload is the body of POST and PUT.
type MoviePayload struct {
	Name       *string          `json:"name" validate:"required,notblank,max=150"`
	Score      *DecimalInput    `json:"score" validate:"required,decimal"`
	Popularity *DecimalInput    `json:"popularity" validate:"required,decimal"`
	Director   *DirectorPayload `json:"director" validate:"required"`
	Genre      []string         `json:"genre" validate:"omitempty,dive,notblank,max=100"`
}

// MoviePatch is the body of PATCH.
type MoviePatch struct {
	Name       *string          `json:"name" validate:"omitempty,notblank,max=150"`
	Score      *DecimalInput    `json:"score" validate:"omitempty,decimal"`
	Popularity *DecimalInput    `json:"popularity" validate:"omitempty,decimal"`
	Director   *DirectorPayload `json:"director" validate:"omitempty"`
	Genre      []string         `json:"genre" validate:"omitempty,dive,notblank,max=100"`
}

// FromWire decodes and validates a write body. Invalid input never reaches
// the repository: every failure is a *validation.RequestValidationError.
func FromWire(data []byte, mode Mode) (models.MovieChanges, *validation.RequestValidationError) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.MovieChanges{}, validation.NewRequestValidationError("body", "required", "request body is required")
	}

	if mode == ModePatch {
		var patch MoviePatch
		if verr := decode(data, &patch); verr != nil {
			return models.MovieChanges{}, verr
		}
		if verr := validation.ValidateStruct(&patch); verr != nil {
			return models.MovieChanges{}, verr
		}
		return changes(patch.Name, patch.Score, patch.Popularity, patch.Director, patch.Genre, false), nil
	}

	var payload MoviePayload
	if verr := decode(data, &payload); verr != nil {
		return models.MovieChanges{}, verr
	}
	if verr := validation.ValidateStruct(&payload); verr != nil {
		return models.MovieChanges{}, verr
	}
	return changes(payload.Name, payload.Score, payload.Popularity, payload.Director, payload.Genre, true), nil
}

func decode(data []byte, v any) *validation.RequestValidationError {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return validation.NewRequestValidationError(field, "type",
			fmt.Sprintf("%s has the wrong type: got %s", field, typeErr.Value))
	}

	return validation.NewRequestValidationError("body", "json", "request body is not valid JSON")
}

// changes converts validated payload fields. With defaultGenres a missing
// genre list becomes an empty one.
func changes(name *string, score, popularity *DecimalInput, director *DirectorPayload, genre []string, defaultGenres bool) models.MovieChanges {
	out := models.MovieChanges{
		Name:       name,
		IMDBScore:  parsedDecimal(score),
		Popularity: parsedDecimal(popularity),
		GenreNames: genre,
	}
	if director != nil {
		out.DirectorName = director.Name
	}
	if out.GenreNames == nil && defaultGenres {
		out.GenreNames = []string{}
	}
	return out
}

// parsedDecimal converts input that already passed the "decimal" tag.
func parsedDecimal(in *DecimalInput) *models.Decimal {
	if in == nil {
		return nil
	}
	d, err := models.ParseDecimal(string(*in))
	if err != nil {
		return nil
	}
	return &d
}
