package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/thankyoudoc/thankyoudoc-api/internal/bootstrap"
	"github.com/thankyoudoc/thankyoudoc-api/internal/migrate"
)

const defaultMigrationTimeout = 5 * time.Minute

type migrateOptions struct {
	Timeout time.Duration
}

func parseMigrateFlags(name string, args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "Maximum duration to wait for migrations to complete")

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags("migrate", args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runMigrateStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags("migrate-status", args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		pending, pendingErr := migrate.Pending(ctx, db)
		if pendingErr != nil {
			return fmt.Errorf("list pending migrations: %w", pendingErr)
		}
		return printPendingMigrations(cmdCtx.Out, pending)
	})
}

func printPendingMigrations(w io.Writer, pending []string) error {
	if len(pending) == 0 {
		return writeln(w, "Schema is up to date.")
	}
	if err := writef(w, "%d pending migration(s):\n", len(pending)); err != nil {
		return err
	}
	for _, v := range pending {
		if err := writef(w, "  %s\n", v); err != nil {
			return err
		}
	}
	return nil
}
