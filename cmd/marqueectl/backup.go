// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/tomtom215/marquee/internal/backup"
)

// BackupCmd groups backup subcommands. The server must be stopped while a
// backup is created or restored: DuckDB allows one process per file.
type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Write a backup archive of the database."`
	Verify  BackupVerifyCmd  `cmd:"" help:"Check an archive against its manifest."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the database with an archive's contents."`
}

// BackupCreateCmd archives the configured database.
type BackupCreateCmd struct {
	Out string `required:"" short:"o" type:"path" placeholder:"FILE" help:"Archive to write. Must not exist."`
}

func (c *BackupCreateCmd) Run(app *App) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	db, err := app.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	manifest, err := backup.Create(ctx, db, c.Out)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "wrote %s (schema version %d, %d bytes)\n", c.Out, manifest.SchemaVersion, manifest.TotalSize())
	return nil
}

// BackupVerifyCmd checks an archive without touching the database.
type BackupVerifyCmd struct {
	Archive string `arg:"" type:"existingfile" help:"Archive to check."`
}

func (c *BackupVerifyCmd) Run(app *App) error {
	manifest, err := backup.Verify(c.Archive)
	if err != nil {
		return err
	}
	return printManifest(app.Out, manifest)
}

// BackupRestoreCmd restores an archive over the configured database path.
type BackupRestoreCmd struct {
	Archive string `arg:"" type:"existingfile" help:"Archive to restore."`
	Force   bool   `help:"Replace an existing database."`
}

func (c *BackupRestoreCmd) Run(app *App) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	target := app.Config.Database.Path
	manifest, err := backup.Restore(ctx, c.Archive, target, c.Force)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "restored %s to %s (schema version %d)\n", c.Archive, target, manifest.SchemaVersion)
	return nil
}

func printManifest(out io.Writer, m *backup.Manifest) error {
	fmt.Fprintf(out, "created %s, format %d, schema version %d\n",
		m.CreatedAt.UTC().Format(time.RFC3339), m.FormatVersion, m.SchemaVersion)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSIZE\tSHA256")
	for _, f := range m.Files {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", f.Name, f.Size, f.Checksum)
	}
	return tw.Flush()
}
