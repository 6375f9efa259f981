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

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// Genres reads and deletes genres. Genres are created through the movie
// write path.
type Genres struct {
	db *DB
}

// Genres returns the genre repository
func (db *DB) Genres() *Genres {
	return &Genres{db: db}
}

// List returns every genre ordered by id.
func (r *Genres) List(ctx context.Context) ([]models.Genre, error) {
	genres := make([]models.Genre, 0)
	err := r.db.run(ctx, "select", "genres", func(ctx context.Context) error {
		rows, err := r.db.conn.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY id`)
		if err != nil {
			return fmt.Errorf("failed to list genres: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var g models.Genre
			if err := rows.Scan(&g.ID, &g.Name); err != nil {
				return fmt.Errorf("failed to scan genre: %w", err)
			}
			genres = append(genres, g)
		}
		return rows.Err()
	})
	return genres, err
}

// Get returns genre id, or ErrGenreNotFound.
func (r *Genres) Get(ctx context.Context, id int64) (*models.Genre, error) {
	var g models.Genre
	err := r.db.run(ctx, "select", "genres", func(ctx context.Context) error {
		err := r.db.conn.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE id = ?`, id).Scan(&g.ID, &g.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGenreNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get genre %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Delete removes genre id and detaches it from every movie. Movies are kept.
func (r *Genres) Delete(ctx context.Context, id int64) error {
	err := r.db.run(ctx, "delete", "genres", func(ctx context.Context) error {
		return r.db.withTx(ctx, "delete_genre", func(tx *sql.Tx) error {
			var one int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM genres WHERE id = ?`, id).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrGenreNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to look up genre %d: %w", id, err)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM movie_genres WHERE genre_id = ?`, id); err != nil {
				return fmt.Errorf("failed to detach genre %d: %w", id, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id); err != nil {
				return fmt.Errorf("failed to delete genre %d: %w", id, err)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	metrics.RecordCatalogWrite("genre", "delete")
	return nil
}

// getOrCreateGenres resolves names to genre ids in input order, creating
// missing genres. Repeated names resolve once.
func getOrCreateGenres(ctx context.Context, q querier, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		var id int64
		err := q.QueryRowContext(ctx, `SELECT id FROM genres WHERE name = ?`, name).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			err = q.QueryRowContext(ctx, `INSERT INTO genres (name) VALUES (?) RETURNING id`, name).Scan(&id)
			if err != nil {
				return nil, fmt.Errorf("failed to create genre %q: %w", name, err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to look up genre %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
