// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

// APIRoot lists the resource collections with absolute URLs.
//
// @Summary API root
// @Tags Catalog
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router / [get]
func (h *Handler) APIRoot(w http.ResponseWriter, r *http.Request) {
	base := requestScheme(r) + "://" + r.Host + basePath(h.config)
	respondJSON(w, r, http.StatusOK, map[string]string{
		"movies":    base + "/movies/",
		"directors": base + "/directors/",
		"genres":    base + "/genres/",
	})
}

// ListDirectors lists every director.
//
// @Summary List directors
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.Director
// @Failure 401 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /directors/ [get]
func (h *Handler) ListDirectors(w http.ResponseWriter, r *http.Request) {
	directors, err := h.catalog.Directors.List(r.Context())
	if err != nil {
		respondRepositoryError(w, r, "Director", err)
		return
	}
	if directors == nil {
		directors = []models.Director{}
	}
	respondJSON(w, r, http.StatusOK, directors)
}

// GetDirector fetches one director.
//
// @Summary Get a director
// @Tags Catalog
// @Produce json
// @Param id path int true "Director ID"
// @Success 200 {object} models.Director
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /directors/{id}/ [get]
func (h *Handler) GetDirector(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Director not found", nil)
		return
	}

	director, err := h.catalog.Directors.Get(r.Context(), id)
	if err != nil {
		respondRepositoryError(w, r, "Director", err)
		return
	}
	respondJSON(w, r, http.StatusOK, director)
}

// DeleteDirector deletes a director and every movie it directed.
//
// @Summary Delete a director
// @Description Cascades: the director's movies are deleted too.
// @Tags Catalog
// @Param id path int true "Director ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /directors/{id}/ [delete]
func (h *Handler) DeleteDirector(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Director not found", nil)
		return
	}

	if err := h.catalog.Directors.Delete(r.Context(), id); err != nil {
		respondRepositoryError(w, r, "Director", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("director_id", id).Msg("Director deleted")
	h.catalogChanged(r, audit.EventDirectorDeleted, id, "", "Director deleted with its movies")
	w.WriteHeader(http.StatusNoContent)
}

// ListGenres lists every genre.
//
// @Summary List genres
// @Tags Catalog
// @Produce json
// @Success 200 {array} models.Genre
// @Failure 401 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /genres/ [get]
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.Genres.List(r.Context())
	if err != nil {
		respondRepositoryError(w, r, "Genre", err)
		return
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	respondJSON(w, r, http.StatusOK, genres)
}

// GetGenre fetches one genre.
//
// @Summary Get a genre
// @Tags Catalog
// @Produce json
// @Param id path int true "Genre ID"
// @Success 200 {object} models.Genre
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /genres/{id}/ [get]
func (h *Handler) GetGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Genre not found", nil)
		return
	}

	genre, err := h.catalog.Genres.Get(r.Context(), id)
	if err != nil {
		respondRepositoryError(w, r, "Genre", err)
		return
	}
	respondJSON(w, r, http.StatusOK, genre)
}

// DeleteGenre deletes a genre and detaches it from its movies.
//
// @Summary Delete a genre
// @Description Movies are kept; their genre list no longer includes the genre.
// @Tags Catalog
// @Param id path int true "Genre ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Security BearerAuth
// @Router /genres/{id}/ [delete]
func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "Genre not found", nil)
		return
	}

	if err := h.catalog.Genres.Delete(r.Context(), id); err != nil {
		respondRepositoryError(w, r, "Genre", err)
		return
	}

	logging.Ctx(r.Context()).Info().Int64("genre_id", id).Msg("Genre deleted")
	h.catalogChanged(r, audit.EventGenreDeleted, id, "", "Genre deleted and detached from movies")
	w.WriteHeader(http.StatusNoContent)
}

// requestScheme honours X-Forwarded-Proto from a proxy.
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
