// Marquee - Movie Catalog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/tomtom215/marquee/internal/audit"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
)

// commandTimeout bounds every database command.
const commandTimeout = time.Minute

// openDB opens the configured database. Opening applies pending migrations.
func (a *App) openDB() (*database.DB, error) {
	db, err := database.New(&a.Config.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", a.Config.Database.Path, err)
	}
	return db, nil
}

// MigrateCmd applies pending migrations and prints the history.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(app *App) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	db, err := app.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	history, err := db.MigrationHistory(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED")
	for _, m := range history {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", m.Version, m.Name, m.AppliedAt.UTC().Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "schema is at version %d\n", version)
	return nil
}

// UserCmd groups user subcommands.
type UserCmd struct {
	Create UserCreateCmd `cmd:"" help:"Create a user."`
	List   UserListCmd   `cmd:"" help:"List users."`
}

// UserCreateCmd creates a user account.
type UserCreateCmd struct {
	Username  string `required:"" help:"Login name."`
	Password  string `required:"" env:"MARQUEE_PASSWORD" help:"Password (at least 8 characters)."`
	Staff     bool   `help:"Allow catalog writes."`
	Superuser bool   `help:"Grant the admin role. Implies --staff."`
}

func (c *UserCreateCmd) Run(app *App) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	user, err := auth.NewUser(c.Username, c.Password, c.Staff, c.Superuser)
	if err != nil {
		return err
	}

	db, err := app.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Users().Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			return fmt.Errorf("user %q already exists", user.Username)
		}
		return err
	}

	if app.Config.Audit.Enabled {
		event := audit.NewUserCreatedEvent(user, cliActor())
		if err := audit.NewDuckDBStore(db.Conn()).Save(ctx, event); err != nil {
			logging.Warn().Err(err).Msg("Failed to record audit event")
		}
	}

	fmt.Fprintf(app.Out, "created user %s (id %d, role %s)\n", user.Username, user.ID, user.Role())
	return nil
}

// UserListCmd prints every user.
type UserListCmd struct{}

func (c *UserListCmd) Run(app *App) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	db, err := app.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := db.Users().List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tCREATED")
	for i := range users {
		u := &users[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Role(), u.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

// TokenCmd verifies credentials and prints a JWT.
type TokenCmd struct {
	Username string `required:"" help:"Login name."`
	Password string `required:"" env:"MARQUEE_PASSWORD" help:"Password."`
}

func (c *TokenCmd) Run(app *App) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	jwtManager, err := auth.NewJWTManager(&app.Config.Security)
	if err != nil {
		return err
	}

	db, err := app.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := auth.VerifyCredentials(ctx, db.Users(), c.Username, c.Password)
	if err != nil {
		return err
	}

	token, _, err := jwtManager.GenerateToken(user)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Out, token)
	return nil
}

// AuditCmd groups audit trail subcommands.
type AuditCmd struct {
	List AuditListCmd `cmd:"" help:"Show recent audit events, newest first."`
}

// AuditListCmd prints audit events.
type AuditListCmd struct {
	Type   []string      `help:"Only events of these types (e.g. movie.deleted)." placeholder:"TYPE"`
	Actor  string        `help:"Only events by this username."`
	Target string        `help:"Only events on this resource type (movie, director, genre, user)."`
	Since  time.Duration `help:"Only events newer than this (e.g. 24h)."`
	Limit  int           `help:"Maximum number of events." default:"50"`
}

func (c *AuditListCmd) Run(app *App) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	db, err := app.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	filter := audit.Filter{
		Actor:      c.Actor,
		TargetType: c.Target,
		Limit:      c.Limit,
	}
	for _, t := range c.Type {
		filter.Types = append(filter.Types, audit.EventType(t))
	}
	if c.Since > 0 {
		filter.Since = time.Now().Add(-c.Since)
	}

	events, err := audit.NewDuckDBStore(db.Conn()).Query(ctx, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTYPE\tOUTCOME\tACTOR\tTARGET\tDESCRIPTION")
	for i := range events {
		e := &events[i]
		target := "-"
		if e.Target != nil {
			target = e.Target.Type + "/" + e.Target.ID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.UTC().Format(time.RFC3339), e.Type, e.Outcome, e.Actor.Name, target, e.Description)
	}
	return tw.Flush()
}

// cliActor names the operator in audit events.
func cliActor() string {
	if u := os.Getenv("USER"); u != "" {
		return "marqueectl:" + u
	}
	return "marqueectl"
}
