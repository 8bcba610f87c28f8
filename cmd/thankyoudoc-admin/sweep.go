package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thankyoudoc/thankyoudoc-api/internal/adapters/sweeper"
)

func runSweepOnce(cmdCtx *commandContext, _ []string) error {
	return withDatabase(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		runner, err := sweeper.NewRunner(sweeper.RunnerOptions{
			DB:     db,
			Config: cmdCtx.Config.Sweeper,
			Logger: cmdCtx.Logger,
		})
		if err != nil {
			return fmt.Errorf("create sweeper runner: %w", err)
		}
		completed, err := runner.SweepOnce(ctx)
		if err != nil {
			return fmt.Errorf("sweep appointments: %w", err)
		}
		return writef(cmdCtx.Out, "Marked %d appointment(s) completed.\n", completed)
	})
}
