// Package sweeper provides the adapter that runs the appointment sweeper loop.
package sweeper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	"github.com/thankyoudoc/thankyoudoc-api/internal/data"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/notify"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/statsd"
	"github.com/thankyoudoc/thankyoudoc-api/internal/service"
)

// Runner wires the appointment sweeper to the database and runs it.
type Runner struct {
	sweeper *service.AppointmentSweeper
	logger  *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	DB     *sql.DB
	Config config.SweeperConfig
	Logger *slog.Logger
	Alerts notify.Sink // optional

	// Optional dependency injection for testing
	Repo    core.AppointmentSweepRepository
	Metrics statsd.Sink
	Clock   data.TimeProvider
}

// NewRunner creates a new sweeper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.DB == nil && opts.Repo == nil {
		return nil, errors.New("database connection is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Repo == nil {
		opts.Repo = data.NewAppointmentRepo(opts.DB)
	}
	if opts.Clock == nil {
		opts.Clock = &data.RealTimeProvider{}
	}

	sw, err := service.NewAppointmentSweeper(service.AppointmentSweeperOptions{
		Repo:    opts.Repo,
		Config:  opts.Config,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
		Alerts:  opts.Alerts,
		Now:     opts.Clock.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("wire appointment sweeper: %w", err)
	}
	return &Runner{sweeper: sw, logger: opts.Logger}, nil
}

// Run starts the sweeper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting appointment sweeper runner")
	return r.sweeper.Run(ctx)
}

// SweepOnce performs a single sweep. The admin CLI uses it for manual runs.
func (r *Runner) SweepOnce(ctx context.Context) (int64, error) {
	return r.sweeper.Sweep(ctx)
}
