package bootstrap

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/metrics"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/notify"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/notify/pagerduty"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/notify/slack"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/statsd"
)

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	Sink     statsd.Sink
	Recorder *metrics.AccessRecorder
	// Handler serves the Prometheus registry; nil for other backends.
	Handler http.Handler
	// Alerts receives operational alerts; nil when no sink is configured.
	Alerts notify.Sink
	closer io.Closer
}

// Close releases the metrics transport, if any.
func (o ObservabilityContainer) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}

// BuildObservability selects the metrics sink configured by cfg. A sink that
// fails to initialise degrades to statsd.Discard.
func BuildObservability(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) ObservabilityContainer {
	if logger == nil {
		logger = slog.Default()
	}
	out := ObservabilityContainer{Sink: statsd.Discard}

	if cfg.IsEnabled() {
		switch cfg.Backend {
		case config.MetricsBackendPrometheus:
			sink := metrics.NewPrometheusSink(cfg.Prefix, logger)
			out.Sink = sink
			out.Handler = sink.Handler()
		case config.MetricsBackendStatsd:
			client, err := statsd.NewClient(statsd.Config{
				Enabled: true,
				Address: cfg.StatsdAddress,
				Prefix:  cfg.Prefix,
				Logger:  logger,
			})
			if err != nil {
				logger.Error("failed to initialise statsd client", "error", err)
			} else {
				out.Sink = client
				out.closer = client
			}
		case config.MetricsBackendNone:
		}
	}

	out.Recorder = metrics.NewAccessRecorder(out.Sink)
	return out
}

// BuildAlertSink returns a fanout over every configured alert sink, or nil
// when none is configured. Sinks that fail to build are skipped with an error log.
//
//nolint:ireturn // nil interface disables alerts.
func BuildAlertSink(logger *slog.Logger, cfg config.NotifyConfig) notify.Sink {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled() {
		return nil
	}

	var sinks notify.Fanout
	if cfg.SlackWebhookURL != "" {
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.SlackWebhookURL,
			Channel:    cfg.SlackChannel,
			Username:   cfg.SlackUsername,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise slack alerts", "error", err)
		} else {
			sinks = append(sinks, client)
		}
	}
	if cfg.PagerDutyRoutingKey != "" {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDutyRoutingKey,
			Source:     cfg.PagerDutySource,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty alerts", "error", err)
		} else {
			sinks = append(sinks, client)
		}
	}
	if len(sinks) == 0 {
		return nil
	}
	logger.Info("operational alerts enabled", "sinks", len(sinks))
	return sinks
}
