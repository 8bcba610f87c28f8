package config

import (
	"strings"
	"time"
)

// MetricsBackend selects the metrics sink.
type MetricsBackend string

const (
	MetricsBackendNone       MetricsBackend = "none"
	MetricsBackendStatsd     MetricsBackend = "statsd"
	MetricsBackendPrometheus MetricsBackend = "prometheus"
)

// ObservabilityConfig groups configuration that controls metrics and logging.
type ObservabilityConfig struct {
	Metrics  ObservabilityMetricsConfig
	Notify   NotifyConfig
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Notify.Sanitize()
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// ObservabilityMetricsConfig controls emission of metrics to StatsD or Prometheus.
type ObservabilityMetricsConfig struct {
	Enabled       bool           `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	Backend       MetricsBackend `env:"OBSERVABILITY_METRICS_BACKEND"        envDefault:"statsd"`
	StatsdAddress string         `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string         `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"thankyoudoc"`
	// MetricsPath is where the Prometheus registry is served.
	MetricsPath string `env:"OBSERVABILITY_METRICS_PATH" envDefault:"/metrics"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.TrimSpace(c.Prefix)
	switch MetricsBackend(strings.ToLower(strings.TrimSpace(string(c.Backend)))) {
	case MetricsBackendPrometheus:
		c.Backend = MetricsBackendPrometheus
	case MetricsBackendStatsd:
		c.Backend = MetricsBackendStatsd
		if c.StatsdAddress == "" {
			c.Enabled = false
		}
	default:
		c.Backend = MetricsBackendNone
		c.Enabled = false
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		c.MetricsPath = "/metrics"
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.Backend != MetricsBackendNone
}

// NotifyConfig selects where operational alerts (such as repeated sweeper
// failures) are delivered. Each sink is enabled by setting its credential.
type NotifyConfig struct {
	SlackWebhookURL     string        `env:"NOTIFY_SLACK_WEBHOOK_URL"`
	SlackChannel        string        `env:"NOTIFY_SLACK_CHANNEL"`
	SlackUsername       string        `env:"NOTIFY_SLACK_USERNAME"        envDefault:"thankyoudoc"`
	PagerDutyRoutingKey string        `env:"NOTIFY_PAGERDUTY_ROUTING_KEY"`
	PagerDutySource     string        `env:"NOTIFY_PAGERDUTY_SOURCE"      envDefault:"thankyoudoc-api"`
	Timeout             time.Duration `env:"NOTIFY_TIMEOUT"               envDefault:"5s"`
	RetryLimit          int           `env:"NOTIFY_RETRY_LIMIT"           envDefault:"2"`
}

// Sanitize trims credentials and clamps delivery settings.
func (c *NotifyConfig) Sanitize() {
	c.SlackWebhookURL = strings.TrimSpace(c.SlackWebhookURL)
	c.SlackChannel = strings.TrimSpace(c.SlackChannel)
	c.PagerDutyRoutingKey = strings.TrimSpace(c.PagerDutyRoutingKey)
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}
	if c.RetryLimit > 5 {
		c.RetryLimit = 5
	}
}

// Enabled reports whether at least one alert sink is configured.
func (c *NotifyConfig) Enabled() bool {
	return c.SlackWebhookURL != "" || c.PagerDutyRoutingKey != ""
}
