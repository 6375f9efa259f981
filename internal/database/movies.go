// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/marquee/internal/database/query"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// MovieRepository persists movies together with their director and genres.
type MovieRepository interface {
	Find(ctx context.Context, id int64) (*models.Movie, error)
	Search(ctx context.Context, q models.MovieQuery) ([]models.Movie, error)
	Create(ctx context.Context, changes models.MovieChanges) (*models.Movie, error)
	Update(ctx context.Context, id int64, changes models.MovieChanges) (*models.Movie, error)
	Delete(ctx context.Context, id int64) error
}

// Movies is the DuckDB MovieRepository.
type Movies struct {
	db *DB
}

var _ MovieRepository = (*Movies)(nil)

// Movies returns the movie repository
func (db *DB) Movies() *Movies {
	return &Movies{db: db}
}

// Decimals are read as text so they keep their two-digit scale.
const movieSelect = `SELECT m.id, m.name,
	CAST(m.imdb_score AS VARCHAR), CAST(m.popularity AS VARCHAR),
	d.id, d.name
FROM movies m
JOIN directors d ON d.id = m.director_id`

// searchPredicates are OR-ed per search term. The value bound to each is the
// lowercased term.
var searchPredicates = []string{
	query.Contains("lower(m.name)"),
	query.Contains("CAST(m.imdb_score AS VARCHAR)"),
	query.Contains("CAST(m.popularity AS VARCHAR)"),
	query.Contains("lower(d.name)"),
	`EXISTS (SELECT 1 FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id = m.id AND contains(lower(g.name), ?))`,
}

// Find returns the movie with id, or ErrMovieNotFound.
func (r *Movies) Find(ctx context.Context, id int64) (*models.Movie, error) {
	var movie *models.Movie
	err := r.db.run(ctx, "select", "movies", func(ctx context.Context) error {
		var err error
		movie, err = findMovie(ctx, r.db.conn, id)
		return err
	})
	return movie, err
}

// Search lists movies matching every search term, ordered by id unless q
// asks for name order.
func (r *Movies) Search(ctx context.Context, q models.MovieQuery) ([]models.Movie, error) {
	wb := query.NewWhereBuilder()
	for _, term := range q.SearchTerms() {
		wb.AddAnyOf(searchPredicates, strings.ToLower(term))
	}
	where, args := wb.BuildWithPrefix()

	order := "m.id ASC"
	if q.OrderByName {
		direction := "ASC"
		if q.Descending {
			direction = "DESC"
		}
		order = "m.name " + direction + ", m.id ASC"
	}

	stmt := movieSelect + "\n" + where + "\nORDER BY " + order

	var movies []models.Movie
	err := r.db.run(ctx, "select", "movies", func(ctx context.Context) error {
		var err error
		movies, err = queryMovies(ctx, r.db.conn, stmt, args...)
		return err
	})
	return movies, err
}

// Create resolves the director and genres by name, creating missing ones,
// and inserts the movie. Everything commits in one transaction.
func (r *Movies) Create(ctx context.Context, changes models.MovieChanges) (*models.Movie, error) {
	if changes.Name == nil || changes.IMDBScore == nil || changes.Popularity == nil || changes.DirectorName == nil {
		return nil, ErrIncompleteMovie
	}

	var created *models.Movie
	err := r.db.run(ctx, "insert", "movies", func(ctx context.Context) error {
		return r.db.withTx(ctx, "create_movie", func(tx *sql.Tx) error {
			directorID, err := getOrCreateDirector(ctx, tx, *changes.DirectorName)
			if err != nil {
				return err
			}

			genreIDs, err := getOrCreateGenres(ctx, tx, changes.GenreNames)
			if err != nil {
				return err
			}

			var id int64
			err = tx.QueryRowContext(ctx,
				`INSERT INTO movies (name, imdb_score, popularity, director_id)
				VALUES (?, CAST(? AS DECIMAL(5,2)), CAST(? AS DECIMAL(5,2)), ?)
				RETURNING id`,
				*changes.Name, changes.IMDBScore.String(), changes.Popularity.String(), directorID,
			).Scan(&id)
			if err != nil {
				return fmt.Errorf("failed to insert movie: %w", err)
			}

			if err := attachGenres(ctx, tx, id, genreIDs); err != nil {
				return err
			}

			created, err = findMovie(ctx, tx, id)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCatalogWrite("movie", "create")
	return created, nil
}

// Update applies the non-nil fields of changes to movie id. A director name
// re-points the movie to the director with that name. Genre names are added
// to the movie's set; existing associations are kept and never duplicated.
func (r *Movies) Update(ctx context.Context, id int64, changes models.MovieChanges) (*models.Movie, error) {
	var updated *models.Movie
	err := r.db.run(ctx, "update", "movies", func(ctx context.Context) error {
		return r.db.withTx(ctx, "update_movie", func(tx *sql.Tx) error {
			if err := ensureMovieExists(ctx, tx, id); err != nil {
				return err
			}

			var (
				sets []string
				args []any
			)
			if changes.Name != nil {
				sets = append(sets, "name = ?")
				args = append(args, *changes.Name)
			}
			if changes.IMDBScore != nil {
				sets = append(sets, "imdb_score = CAST(? AS DECIMAL(5,2))")
				args = append(args, changes.IMDBScore.String())
			}
			if changes.Popularity != nil {
				sets = append(sets, "popularity = CAST(? AS DECIMAL(5,2))")
				args = append(args, changes.Popularity.String())
			}
			if changes.DirectorName != nil {
				directorID, err := getOrCreateDirector(ctx, tx, *changes.DirectorName)
				if err != nil {
					return err
				}
				sets = append(sets, "director_id = ?")
				args = append(args, directorID)
			}

			if len(sets) > 0 {
				args = append(args, id)
				stmt := "UPDATE movies SET " + strings.Join(sets, ", ") + " WHERE id = ?"
				if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
					return fmt.Errorf("failed to update movie %d: %w", id, err)
				}
			}

			if changes.GenreNames != nil {
				genreIDs, err := getOrCreateGenres(ctx, tx, changes.GenreNames)
				if err != nil {
					return err
				}
				if err := attachGenres(ctx, tx, id, genreIDs); err != nil {
					return err
				}
			}

			var err error
			updated, err = findMovie(ctx, tx, id)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCatalogWrite("movie", "update")
	return updated, nil
}

// Delete removes movie id and its genre associations.
func (r *Movies) Delete(ctx context.Context, id int64) error {
	err := r.db.run(ctx, "delete", "movies", func(ctx context.Context) error {
		return r.db.withTx(ctx, "delete_movie", func(tx *sql.Tx) error {
			if err := ensureMovieExists(ctx, tx, id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM movie_genres WHERE movie_id = ?`, id); err != nil {
				return fmt.Errorf("failed to detach genres from movie %d: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id); err != nil {
				return fmt.Errorf("failed to delete movie %d: %w", id, err)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	metrics.RecordCatalogWrite("movie", "delete")
	return nil
}

func ensureMovieExists(ctx context.Context, q querier, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMovieNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up movie %d: %w", id, err)
	}
	return nil
}

func findMovie(ctx context.Context, q querier, id int64) (*models.Movie, error) {
	movies, err := queryMovies(ctx, q, movieSelect+"\nWHERE m.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, ErrMovieNotFound
	}
	return &movies[0], nil
}

// queryMovies runs a movieSelect statement and loads the genres of every
// returned movie with one extra query.
func queryMovies(ctx context.Context, q querier, stmt string, args ...any) ([]models.Movie, error) {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	movies := make([]models.Movie, 0)
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(
			&m.ID, &m.Name,
			&m.IMDBScore, &m.Popularity,
			&m.Director.ID, &m.Director.Name,
		); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		m.Genres = []models.Genre{}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}

	if err := loadGenres(ctx, q, movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func loadGenres(ctx context.Context, q querier, movies []models.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	index := make(map[int64]int, len(movies))
	ids := make([]int64, len(movies))
	for i := range movies {
		index[movies[i].ID] = i
		ids[i] = movies[i].ID
	}

	wb := query.NewWhereBuilder()
	query.AddIn(wb, "mg.movie_id", ids)
	where, args := wb.BuildWithPrefix()

	rows, err := q.QueryContext(ctx, `SELECT mg.movie_id, g.id, g.name
		FROM movie_genres mg
		JOIN genres g ON g.id = mg.genre_id
		`+where+`
		ORDER BY mg.movie_id, mg.attach_order`, args...)
	if err != nil {
		return fmt.Errorf("failed to query movie genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			movieID int64
			genre   models.Genre
		)
		if err := rows.Scan(&movieID, &genre.ID, &genre.Name); err != nil {
			return fmt.Errorf("failed to scan movie genre: %w", err)
		}
		if i, ok := index[movieID]; ok {
			movies[i].Genres = append(movies[i].Genres, genre)
		}
	}
	return rows.Err()
}

// attachGenres associates genreIDs with the movie in order, skipping
// existing pairs.
func attachGenres(ctx context.Context, q querier, movieID int64, genreIDs []int64) error {
	for _, genreID := range genreIDs {
		_, err := q.ExecContext(ctx,
			`INSERT INTO movie_genres (movie_id, genre_id)
			SELECT CAST(? AS BIGINT), CAST(? AS BIGINT)
			WHERE NOT EXISTS (SELECT 1 FROM movie_genres WHERE movie_id = ? AND genre_id = ?)`,
			movieID, genreID, movieID, genreID)
		if err != nil {
			return fmt.Errorf("failed to attach genre %d to movie %d: %w", genreID, movieID, err)
		}
	}
	return nil
}
