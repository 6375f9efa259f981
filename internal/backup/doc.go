// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package backup snapshots and restores the DuckDB catalog database.

# Archive Format

A backup is a gzip-compressed tar archive:

	database/marquee.duckdb      checkpointed database file
	database/marquee.duckdb.wal  write-ahead log, only if one exists
	manifest.json                format version, schema version, file checksums

manifest.json is written last and lists the SHA-256 checksum and size of
every other entry. Verify and Restore reject archives whose contents do not
match their manifest, and entries with any other name.

# Consistency

Create checkpoints the database before copying it, so the archive normally
holds a single self-contained file. DuckDB allows one writing process per
file: run backups from marqueectl while the server is stopped, or from
inside the server process.

# Restore

Restore extracts into a temporary directory next to the target, verifies
checksums, opens the extracted database to confirm its schema version, and
only then moves it into place. An existing target is replaced only when
force is set.

# Usage Example

	manifest, err := backup.Create(ctx, db, "/backups/marquee-2026-01-01.tar.gz")
	manifest, err = backup.Verify("/backups/marquee-2026-01-01.tar.gz")
	manifest, err = backup.Restore(ctx, "/backups/marquee-2026-01-01.tar.gz", "/data/marquee.duckdb", false)
*/
package backup
