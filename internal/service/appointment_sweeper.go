package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	"github.com/thankyoudoc/thankyoudoc-api/internal/core"
	obserrors "github.com/thankyoudoc/thankyoudoc-api/internal/observability/errors"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/metrics"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/notify"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/statsd"
)

// AppointmentSweeperOptions groups dependencies for AppointmentSweeper.
type AppointmentSweeperOptions struct {
	Repo    core.AppointmentSweepRepository // Required
	Config  config.SweeperConfig            // Required
	Logger  *slog.Logger                    // Optional
	Metrics statsd.Sink                     // Optional
	Alerts  notify.Sink                     // Optional; receives repeated-failure alerts
	Now     func() time.Time                // Optional; defaults to time.Now
}

// AppointmentSweeper periodically marks booked appointments whose slot ended
// more than Config.Grace ago as completed, which frees them from the
// cancellation path and keeps patient histories accurate.
type AppointmentSweeper struct {
	repo    core.AppointmentSweepRepository
	config  config.SweeperConfig
	logger  *slog.Logger
	metrics statsd.Sink
	alerts  notify.Sink
	now     func() time.Time

	failures atomic.Int64
}

// NewAppointmentSweeper constructs a new AppointmentSweeper.
func NewAppointmentSweeper(opts AppointmentSweeperOptions) (*AppointmentSweeper, error) {
	if opts.Repo == nil {
		return nil, errors.New("AppointmentSweepRepository is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("sweeper interval must be positive")
	}
	if opts.Config.BatchSize <= 0 {
		return nil, errors.New("sweeper batch size must be positive")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricsSink := opts.Metrics
	if metricsSink == nil {
		metricsSink = statsd.Discard
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &AppointmentSweeper{
		repo:    opts.Repo,
		config:  opts.Config,
		logger:  logger.With("component", "appointment_sweeper"),
		metrics: metricsSink,
		alerts:  opts.Alerts,
		now:     now,
	}, nil
}

// Run sweeps at the configured interval until ctx is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *AppointmentSweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting appointment sweeper",
		"interval", s.config.Interval,
		"grace", s.config.Grace,
		"batch_size", s.config.BatchSize,
	)

	// Jitter spreads instances that start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if _, err := s.Sweep(ctx); err != nil {
		s.logSweepError(ctx, err, "initial sweep")
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "appointment sweeper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logSweepError(ctx, err, "sweep")
			}
		}
	}
}

// Sweep completes past appointments in batches until none remain and returns
// the number of appointments changed.
func (s *AppointmentSweeper) Sweep(ctx context.Context) (int64, error) {
	start := time.Now()
	cutoff := s.now().Add(-s.config.Grace)

	var total int64
	var err error
	for {
		var n int64
		n, err = s.repo.CompletePast(ctx, cutoff, s.config.BatchSize)
		total += n
		if err != nil || n < int64(s.config.BatchSize) {
			break
		}
		if err = ctx.Err(); err != nil {
			break
		}
	}

	s.emitSweepMetrics(total, time.Since(start), err)
	s.trackFailure(ctx, err)
	if err != nil {
		return total, fmt.Errorf("complete past appointments: %w", err)
	}
	if total > 0 {
		s.logger.InfoContext(ctx, "completed past appointments", "count", total, "cutoff", cutoff)
	}
	return total, nil
}

func (s *AppointmentSweeper) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter

	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (s *AppointmentSweeper) emitSweepMetrics(count int64, elapsed time.Duration, err error) {
	result := metrics.ResultSuccess
	errorClass := "none"
	switch {
	case err != nil && isContextCancellation(err):
		return
	case err != nil:
		result = metrics.ResultError
		errorClass = obserrors.Classify(err)
	case count == 0:
		result = metrics.ResultNoop
	}

	tags := map[string]string{"result": result, "error_class": errorClass}
	s.metrics.Count(metrics.SweeperRun, 1, tags)
	s.metrics.Timing(metrics.SweeperDuration, elapsed, metrics.CloneTags(tags))
	if count > 0 {
		s.metrics.Count(metrics.SweeperCompleted, count, nil)
	}
	if err == nil {
		s.metrics.Gauge(metrics.SweeperLastOK, float64(s.now().Unix()), nil)
	}
}

// trackFailure counts consecutive failed sweeps and raises one alert when the
// count reaches Config.AlertAfter. A successful sweep resets the count.
func (s *AppointmentSweeper) trackFailure(ctx context.Context, err error) {
	if err == nil {
		s.failures.Store(0)
		return
	}
	if isContextCancellation(err) {
		return
	}
	n := s.failures.Add(1)
	if s.alerts == nil || s.config.AlertAfter <= 0 || n != int64(s.config.AlertAfter) {
		return
	}

	alert := notify.Alert{
		Source:     "appointment_sweeper",
		Summary:    "Appointment sweeper failing",
		Error:      err.Error(),
		ErrorClass: obserrors.Classify(err),
		Severity:   notify.SeverityCritical,
		OccurredAt: s.now(),
		Metadata: map[string]string{
			"consecutive_failures": strconv.FormatInt(n, 10),
			"batch_size":           strconv.Itoa(s.config.BatchSize),
		},
	}
	if sendErr := s.alerts.Send(ctx, alert); sendErr != nil {
		s.logger.WarnContext(ctx, "failed to deliver sweeper alert", "error", sendErr)
	}
}

func (s *AppointmentSweeper) logSweepError(ctx context.Context, err error, label string) {
	if isContextCancellation(err) {
		s.logger.DebugContext(ctx, label+" cancelled by context", "error", err)
		return
	}
	s.logger.ErrorContext(ctx, label+" failed", "error", err)
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
