// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Command marqueectl administers a Marquee database: it applies migrations,
// manages API users, mints bearer tokens for scripting and takes offline
// backups.
//
//	marqueectl migrate
//	marqueectl user create --username alice --password s3cret-pass --staff
//	marqueectl user list
//	marqueectl token --username alice --password s3cret-pass
//	marqueectl audit list --since 24h --type movie.deleted
//	marqueectl backup create --out marquee-2026-10-18.tar.gz
//	marqueectl backup restore --force marquee-2026-10-18.tar.gz
//
// Configuration is read the same way as the server (defaults, CONFIG_PATH,
// environment), so DUCKDB_PATH and JWT_SECRET must match the server's.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
)

var version = "dev"

// CLI is the command tree.
type CLI struct {
	Config   string `help:"Path to a YAML config file." type:"path" placeholder:"FILE"`
	LogLevel string `help:"Log level." default:"warn" enum:"trace,debug,info,warn,error"`

	Migrate MigrateCmd `cmd:"" help:"Create or upgrade the database schema."`
	User    UserCmd    `cmd:"" help:"Manage API users."`
	Token   TokenCmd   `cmd:"" help:"Print a bearer token for a user."`
	Audit   AuditCmd   `cmd:"" help:"Inspect the audit trail."`
	Backup  BackupCmd  `cmd:"" help:"Back up or restore the database file."`

	Version kong.VersionFlag `help:"Print version and exit."`
}

// App is bound into every command's Run method.
type App struct {
	Config *config.Config
	Out    io.Writer
}

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr, os.Exit); err != nil {
		os.Exit(1)
	}
}

// execute parses args and runs the selected command. exit is called by kong
// for --help and --version.
func execute(args []string, stdout, stderr io.Writer, exit func(int)) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("marqueectl"),
		kong.Description("Administer the Marquee movie catalog."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return err
	}

	logging.Init(logging.Config{
		Level:     cli.LogLevel,
		Format:    "console",
		Timestamp: true,
		Output:    stderr,
	})

	if cli.Config != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, cli.Config); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		parser.Errorf("%s", err)
		return err
	}

	if err := kctx.Run(&App{Config: cfg, Out: stdout}); err != nil {
		parser.Errorf("%s", err)
		return err
	}
	return nil
}
