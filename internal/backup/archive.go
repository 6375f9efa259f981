// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
)

// archiveWriters closes the file, gzip and tar writers in reverse order.
type archiveWriters struct {
	tw      *tar.Writer
	closers []io.Closer
}

func (aw *archiveWriters) Close() error {
	var firstErr error
	for i := len(aw.closers) - 1; i >= 0; i-- {
		if err := aw.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newArchiveWriters(path string) (*archiveWriters, error) {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup file: %w", err)
	}
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)
	return &archiveWriters{tw: tw, closers: []io.Closer{out, gz, tw}}, nil
}

// Create checkpoints db and writes a backup archive to dest. dest must not
// exist. A partially written archive is removed on failure.
func Create(ctx context.Context, db Source, dest string) (manifest *Manifest, err error) {
	dbPath := db.Path()
	if dbPath == "" || dbPath == ":memory:" {
		return nil, ErrInMemoryDatabase
	}

	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint failed, backup may need its WAL to be complete")
	}
	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}

	aw, err := newArchiveWriters(dest)
	if err != nil {
		return nil, err
	}
	defer func() {
		closeErr := aw.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(dest)
			manifest = nil
		}
	}()

	manifest = &Manifest{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		SchemaVersion: version,
	}

	file, err := addFile(aw.tw, dbPath, databaseEntry)
	if err != nil {
		return nil, err
	}
	manifest.Files = append(manifest.Files, file)

	switch file, err := addFile(aw.tw, dbPath+".wal", walEntry); {
	case err == nil:
		manifest.Files = append(manifest.Files, file)
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if err := addManifest(aw.tw, manifest); err != nil {
		return nil, err
	}

	logging.Info().
		Str("path", dest).
		Int("schema_version", version).
		Int64("bytes", manifest.TotalSize()).
		Msg("Backup created")
	return manifest, nil
}

func addFile(tw *tar.Writer, src, name string) (File, error) {
	f, err := os.Open(src) //nolint:gosec // G304: path comes from the database configuration
	if err != nil {
		return File{}, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	info, err := f.Stat()
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", src, err)
	}

	header := &tar.Header{
		Name:    name,
		Mode:    0o600,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return File{}, fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}

	hasher := sha256.New()
	if _, err := io.CopyN(io.MultiWriter(tw, hasher), f, info.Size()); err != nil {
		return File{}, fmt.Errorf("failed to copy %s to archive: %w", src, err)
	}

	return File{Name: name, Size: info.Size(), Checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
}

func addManifest(tw *tar.Writer, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	header := &tar.Header{
		Name:    manifestEntry,
		Mode:    0o600,
		Size:    int64(len(data)),
		ModTime: manifest.CreatedAt,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write manifest header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
