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
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver for restore verification
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
)

// maxManifestBytes bounds the manifest entry.
const maxManifestBytes = 1 << 20

// Verify checks that every entry of the archive matches its manifest.
func Verify(archive string) (*Manifest, error) {
	return readArchive(archive, "")
}

// Restore replaces the database at target with the archive's contents.
// The server must not have target open. An existing target is only
// replaced when force is true.
func Restore(ctx context.Context, archive, target string, force bool) (*Manifest, error) {
	if target == "" || target == ":memory:" {
		return nil, ErrInMemoryDatabase
	}
	if _, err := os.Stat(target); err == nil && !force {
		return nil, fmt.Errorf("%w: %s", ErrTargetExists, target)
	}

	dir, err := os.MkdirTemp(filepath.Dir(target), ".marquee-restore-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create restore directory: %w", err)
	}
	defer os.RemoveAll(dir) //nolint:errcheck // temporary directory

	manifest, err := readArchive(archive, dir)
	if err != nil {
		return nil, err
	}

	restored := filepath.Join(dir, path.Base(databaseEntry))
	version, err := schemaVersion(ctx, restored)
	if err != nil {
		return nil, fmt.Errorf("restored database does not open: %w", err)
	}
	if version != manifest.SchemaVersion {
		return nil, fmt.Errorf("restored database is at schema version %d, manifest says %d", version, manifest.SchemaVersion)
	}

	// A WAL left next to the target would be replayed onto the restored file.
	if err := os.Remove(target + ".wal"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale WAL: %w", err)
	}
	if err := os.Rename(restored, target); err != nil {
		return nil, fmt.Errorf("failed to move restored database into place: %w", err)
	}
	if err := os.Rename(restored+".wal", target+".wal"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to move restored WAL into place: %w", err)
	}

	logging.Info().
		Str("archive", archive).
		Str("target", target).
		Int("schema_version", version).
		Msg("Backup restored")
	return manifest, nil
}

// readArchive streams the archive, hashing every entry and writing it to
// dir when dir is set, then checks the hashes against the manifest.
func readArchive(archive, dir string) (*Manifest, error) {
	f, err := os.Open(archive) //nolint:gosec // G304: operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	defer gz.Close() //nolint:errcheck // read-only

	var manifest *Manifest
	seen := make(map[string]File)

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read backup: %w", err)
		}

		switch header.Name {
		case manifestEntry:
			manifest, err = decodeManifest(tr)
			if err != nil {
				return nil, err
			}
		case databaseEntry, walEntry:
			file, err := readEntry(tr, header, dir)
			if err != nil {
				return nil, err
			}
			seen[header.Name] = file
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnexpectedEntry, header.Name)
		}
	}

	if manifest == nil {
		return nil, ErrMissingManifest
	}
	if manifest.FormatVersion < 1 || manifest.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("%w: format version %d", ErrUnsupported, manifest.FormatVersion)
	}
	if _, ok := manifest.file(databaseEntry); !ok {
		return nil, fmt.Errorf("%w: manifest lists no database file", ErrUnsupported)
	}
	for _, want := range manifest.Files {
		got, ok := seen[want.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s is listed but missing", ErrChecksumMismatch, want.Name)
		}
		if got != want {
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, want.Name)
		}
		delete(seen, want.Name)
	}
	for name := range seen {
		return nil, fmt.Errorf("%w: %q is not in the manifest", ErrUnexpectedEntry, name)
	}
	return manifest, nil
}

func decodeManifest(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxManifestBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

func readEntry(r io.Reader, header *tar.Header, dir string) (File, error) {
	hasher := sha256.New()
	var dst io.Writer = hasher

	if dir != "" {
		out, err := os.OpenFile(filepath.Join(dir, path.Base(header.Name)), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			return File{}, fmt.Errorf("failed to extract %s: %w", header.Name, err)
		}
		defer out.Close() //nolint:errcheck // closed explicitly below on success
		dst = io.MultiWriter(out, hasher)

		n, err := io.Copy(dst, r)
		if err != nil {
			return File{}, fmt.Errorf("failed to extract %s: %w", header.Name, err)
		}
		if err := out.Close(); err != nil {
			return File{}, fmt.Errorf("failed to extract %s: %w", header.Name, err)
		}
		return File{Name: header.Name, Size: n, Checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
	}

	n, err := io.Copy(dst, r)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", header.Name, err)
	}
	return File{Name: header.Name, Size: n, Checksum: hex.EncodeToString(hasher.Sum(nil))}, nil
}

func schemaVersion(ctx context.Context, dbPath string) (int, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close() //nolint:errcheck // verification connection

	var version int
	err = db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	return version, err
}
