// Package pagerduty delivers alerts as PagerDuty Events API v2 triggers.
package pagerduty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/notify"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

// Config captures runtime configuration for the PagerDuty sink.
type Config struct {
	RoutingKey string
	Source     string
	Endpoint   string // defaults to APIEndpoint
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
}

// Client publishes events via PagerDuty's Events API v2.
type Client struct {
	routingKey string
	source     string
	endpoint   string
	retryLimit int
	client     *http.Client
}

var _ notify.Sink = (*Client)(nil)

// NewClient constructs a PagerDuty events client from config. Callers must provide a routing key.
func NewClient(cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.RoutingKey)
	if key == "" {
		return nil, errors.New("pagerduty routing key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		routingKey: key,
		source:     fallback(strings.TrimSpace(cfg.Source), "thankyoudoc-api"),
		endpoint:   fallback(strings.TrimSpace(cfg.Endpoint), APIEndpoint),
		retryLimit: max(cfg.RetryLimit, 0),
		client:     hc,
	}, nil
}

// Send submits a trigger event to PagerDuty.
func (c *Client) Send(ctx context.Context, alert notify.Alert) error {
	body, err := json.Marshal(c.buildEvent(alert))
	if err != nil {
		return fmt.Errorf("encode pagerduty payload: %w", err)
	}
	return notify.Retry(ctx, c.retryLimit+1, func() error {
		return notify.PostJSON(ctx, c.client, c.endpoint, body, "pagerduty api")
	})
}

func (c *Client) buildEvent(alert notify.Alert) map[string]any {
	severity := strings.ToLower(fallback(alert.Severity, notify.SeverityCritical))

	occurredAt := alert.OccurredAt.UTC()
	if alert.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	custom := map[string]any{
		"error":       alert.Error,
		"error_class": alert.ErrorClass,
	}
	for k, v := range alert.Metadata {
		if _, exists := custom[k]; !exists {
			custom[k] = v
		}
	}

	component := fallback(alert.Source, "unknown")
	return map[string]any{
		"routing_key":  c.routingKey,
		"event_action": "trigger",
		"dedup_key":    c.source + ":" + component,
		"payload": map[string]any{
			"summary":        fallback(alert.Summary, component+" failed"),
			"severity":       severity,
			"source":         c.source,
			"component":      component,
			"timestamp":      occurredAt.Format(time.RFC3339),
			"custom_details": custom,
		},
	}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
