// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestBackupCreateVerifyRestore(t *testing.T) {
	setupEnv(t)

	if _, _, err := runCLI(t, "user", "create", "--username", "dana", "--password", "s3cret-pass", "--staff"); err != nil {
		t.Fatalf("user create: %v", err)
	}

	archive := filepath.Join(t.TempDir(), "marquee.tar.gz")
	out, _, err := runCLI(t, "backup", "create", "--out", archive)
	if err != nil {
		t.Fatalf("backup create: %v", err)
	}
	if !strings.Contains(out, "wrote "+archive) {
		t.Errorf("unexpected create output:\n%s", out)
	}

	if _, _, err := runCLI(t, "backup", "create", "--out", archive); err == nil {
		t.Error("expected error when the archive already exists")
	}

	out, _, err = runCLI(t, "backup", "verify", archive)
	if err != nil {
		t.Fatalf("backup verify: %v", err)
	}
	if !strings.Contains(out, "SHA256") || !strings.Contains(out, "database/marquee.duckdb") {
		t.Errorf("unexpected verify output:\n%s", out)
	}

	// The configured database exists, so restore needs --force.
	if _, _, err := runCLI(t, "backup", "restore", archive); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("restore without --force error = %v", err)
	}

	t.Setenv("DUCKDB_PATH", filepath.Join(t.TempDir(), "restored.duckdb"))
	out, _, err = runCLI(t, "backup", "restore", archive)
	if err != nil {
		t.Fatalf("backup restore: %v", err)
	}
	if !strings.Contains(out, "restored ") {
		t.Errorf("unexpected restore output:\n%s", out)
	}

	out, _, err = runCLI(t, "user", "list")
	if err != nil {
		t.Fatalf("user list on restored database: %v", err)
	}
	if !strings.Contains(out, "dana") {
		t.Errorf("restored database is missing user dana:\n%s", out)
	}
}

func TestBackupVerify_MissingFile(t *testing.T) {
	setupEnv(t)
	if _, _, err := runCLI(t, "backup", "verify", filepath.Join(t.TempDir(), "nope.tar.gz")); err == nil {
		t.Error("expected error for a missing archive")
	}
}
