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

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// Directors reads and deletes directors. Directors are created through the
// movie write path.
type Directors struct {
	db *DB
}

// Directors returns the director repository
func (db *DB) Directors() *Directors {
	return &Directors{db: db}
}

// List returns every director ordered by id.
func (r *Directors) List(ctx context.Context) ([]models.Director, error) {
	directors := make([]models.Director, 0)
	err := r.db.run(ctx, "select", "directors", func(ctx context.Context) error {
		rows, err := r.db.conn.QueryContext(ctx, `SELECT id, name FROM directors ORDER BY id`)
		if err != nil {
			return fmt.Errorf("failed to list directors: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var d models.Director
			if err := rows.Scan(&d.ID, &d.Name); err != nil {
				return fmt.Errorf("failed to scan director: %w", err)
			}
			directors = append(directors, d)
		}
		return rows.Err()
	})
	return directors, err
}

// Get returns director id, or ErrDirectorNotFound.
func (r *Directors) Get(ctx context.Context, id int64) (*models.Director, error) {
	var d models.Director
	err := r.db.run(ctx, "select", "directors", func(ctx context.Context) error {
		err := r.db.conn.QueryRowContext(ctx, `SELECT id, name FROM directors WHERE id = ?`, id).Scan(&d.ID, &d.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDirectorNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get director %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Delete removes director id together with its movies and their genre
// associations.
func (r *Directors) Delete(ctx context.Context, id int64) error {
	var removedMovies int64
	err := r.db.run(ctx, "delete", "directors", func(ctx context.Context) error {
		return r.db.withTx(ctx, "delete_director", func(tx *sql.Tx) error {
			var one int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM directors WHERE id = ?`, id).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDirectorNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to look up director %d: %w", id, err)
			}

			_, err = tx.ExecContext(ctx,
				`DELETE FROM movie_genres WHERE movie_id IN (SELECT id FROM movies WHERE director_id = ?)`, id)
			if err != nil {
				return fmt.Errorf("failed to detach genres for director %d: %w", id, err)
			}

			res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE director_id = ?`, id)
			if err != nil {
				return fmt.Errorf("failed to delete movies for director %d: %w", id, err)
			}
			removedMovies, _ = res.RowsAffected()

			if _, err := tx.ExecContext(ctx, `DELETE FROM directors WHERE id = ?`, id); err != nil {
				return fmt.Errorf("failed to delete director %d: %w", id, err)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Int64("director_id", id).
		Int64("movies_deleted", removedMovies).
		Msg("Director deleted")
	metrics.RecordCatalogWrite("director", "delete")
	return nil
}

// getOrCreateDirector returns the id of the director named name, inserting
// it when absent.
func getOrCreateDirector(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM directors WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up director %q: %w", name, err)
	}

	err = q.QueryRowContext(ctx, `INSERT INTO directors (name) VALUES (?) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create director %q: %w", name, err)
	}
	return id, nil
}
