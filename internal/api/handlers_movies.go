// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/serializer"
)

// ListMovies lists movies, optionally filtered and ordered.
//
// @Summary List movies
// @Description Every whitespace or comma separated term of search must match the name, score, popularity, director name or a genre name (case-insensitive substring).
// @Tags Movies
// @Produce json
// @Param search query string false "Free-text filter"
// @Param ordering query string false "name or -name; anything else keeps id order"
// @Success 200 {array} serializer.MovieWire
// @Failure 401 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /movies/ [get]
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	byName, desc := models.ParseOrdering(r.URL.Query().Get("ordering"))
	query := models.MovieQuery{
		Search:      r.URL.Query().Get("search"),
		OrderByName: byName,
		Descending:  desc,
	}

	movies, err := h.catalog.Movies.Search(r.Context(), query)
	if err != nil {
		respondRepositoryError(w, r, "Movie", err)
		return
	}

	respondJSON(w, r, http.StatusOK, serializer.ToWireList(movies))
}

// GetMovie fetches one movie.
//
// @Summary Get a movie
// @Tags Movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} serializer.MovieWire
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /movies/{id}/ [get]
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Movie not found", nil)
		return
	}

	movie, err := h.catalog.Movies.Find(r.Context(), id)
	if err != nil {
		respondRepositoryError(w, r, "Movie", err)
		return
	}

	respondJSON(w, r, http.StatusOK, serializer.ToWire(movie))
}

// CreateMovie creates a movie, reusing or creating its director and genres
// by name.
//
// @Summary Create a movie
// @Tags Movies
// @Accept json
// @Produce json
// @Param movie body serializer.MoviePayload true "Movie"
// @Success 201 {object} serializer.MovieWire
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /movies/ [post]
func (h *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	changes, ok := h.decodeMovie(w, r, serializer.ModeCreate)
	if !ok {
		return
	}

	movie, err := h.catalog.Movies.Create(r.Context(), changes)
	if err != nil {
		respondRepositoryError(w, r, "Movie", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("movie_id", movie.ID).
		Str("director", movie.Director.Name).
		Msg("Movie created")
	h.catalogChanged(r, audit.EventMovieCreated, movie.ID, movie.Name, "Movie created")
	w.Header().Set("Location", basePath(h.config)+"/movies/"+formatID(movie.ID)+"/")
	respondJSON(w, r, http.StatusCreated, serializer.ToWire(movie))
}

// ReplaceMovie applies a full update.
//
// @Summary Replace a movie
// @Description Scalars are overwritten, the movie is re-pointed to the named director and the genre list is merged into the existing genres.
// @Tags Movies
// @Accept json
// @Produce json
// @Param id path int true "Movie ID"
// @Param movie body serializer.MoviePayload true "Movie"
// @Success 200 {object} serializer.MovieWire
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /movies/{id}/ [put]
func (h *Handler) ReplaceMovie(w http.ResponseWriter, r *http.Request) {
	h.updateMovie(w, r, serializer.ModeReplace)
}

// PatchMovie applies a partial update. Omitted fields are left unchanged.
//
// @Summary Update part of a movie
// @Tags Movies
// @Accept json
// @Produce json
// @Param id path int true "Movie ID"
// @Param movie body serializer.MoviePatch true "Fields to change"
// @Success 200 {object} serializer.MovieWire
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /movies/{id}/ [patch]
func (h *Handler) PatchMovie(w http.ResponseWriter, r *http.Request) {
	h.updateMovie(w, r, serializer.ModePatch)
}

func (h *Handler) updateMovie(w http.ResponseWriter, r *http.Request, mode serializer.Mode) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Movie not found", nil)
		return
	}

	// A missing movie is reported before any problem with the body.
	if _, err := h.catalog.Movies.Find(r.Context(), id); err != nil {
		respondRepositoryError(w, r, "Movie", err)
		return
	}

	changes, ok := h.decodeMovie(w, r, mode)
	if !ok {
		return
	}

	movie, err := h.catalog.Movies.Update(r.Context(), id, changes)
	if err != nil {
		respondRepositoryError(w, r, "Movie", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("movie_id", movie.ID).Msg("Movie updated")
	h.catalogChanged(r, audit.EventMovieUpdated, movie.ID, movie.Name, "Movie updated")
	respondJSON(w, r, http.StatusOK, serializer.ToWire(movie))
}

// DeleteMovie deletes a movie. Its director and genres are kept.
//
// @Summary Delete a movie
// @Tags Movies
// @Param id path int true "Movie ID"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /movies/{id}/ [delete]
func (h *Handler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Movie not found", nil)
		return
	}

	if err := h.catalog.Movies.Delete(r.Context(), id); err != nil {
		respondRepositoryError(w, r, "Movie", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("movie_id", id).Msg("Movie deleted")
	h.catalogChanged(r, audit.EventMovieDeleted, id, "", "Movie deleted")
	w.WriteHeader(http.StatusNoContent)
}

// decodeMovie reads and validates a write body, answering 400 or 413 itself.
func (h *Handler) decodeMovie(w http.ResponseWriter, r *http.Request, mode serializer.Mode) (models.MovieChanges, bool) {
	body, err := readBody(w, r, h.maxBodyBytes())
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, models.CodeRequestTooLarge,
				"Request body too large", nil)
		} else {
			respondError(w, r, http.StatusBadRequest, models.CodeValidation, "Could not read request body", err)
		}
		return models.MovieChanges{}, false
	}

	changes, verr := serializer.FromWire(body, mode)
	if verr != nil {
		respondValidationError(w, r, verr)
		return models.MovieChanges{}, false
	}
	return changes, true
}
