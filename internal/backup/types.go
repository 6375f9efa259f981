// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package backup

import (
	"context"
	"errors"
	"time"
)

// FormatVersion is written to every manifest. Archives with a newer
// format are rejected.
const FormatVersion = 1

// Archive entry names.
const (
	databaseEntry = "database/marquee.duckdb"
	walEntry      = "database/marquee.duckdb.wal"
	manifestEntry = "manifest.json"
)

// Errors returned by Verify and Restore.
var (
	ErrInMemoryDatabase = errors.New("in-memory databases cannot be backed up")
	ErrTargetExists     = errors.New("restore target already exists")
	ErrMissingManifest  = errors.New("archive has no manifest")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrUnexpectedEntry  = errors.New("unexpected archive entry")
	ErrUnsupported      = errors.New("unsupported backup format")
)

// Source is the database being backed up.
type Source interface {
	Checkpoint(ctx context.Context) error
	Path() string
	SchemaVersion(ctx context.Context) (int, error)
}

// Manifest describes an archive.
type Manifest struct {
	FormatVersion int       `json:"format_version"`
	CreatedAt     time.Time `json:"created_at"`
	SchemaVersion int       `json:"schema_version"`
	Files         []File    `json:"files"`
}

// File is one archived file.
type File struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"sha256"`
}

// TotalSize returns the uncompressed size of all files.
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}

func (m *Manifest) file(name string) (File, bool) {
	for _, f := range m.Files {
		if f.Name == name {
			return f, true
		}
	}
	return File{}, false
}
