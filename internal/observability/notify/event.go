// Package notify defines operational alerts and the sinks that deliver them.
package notify

import (
	"context"
	"errors"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Alert is the payload delivered to every sink. Source identifies the
// failing component and doubles as the deduplication key.
type Alert struct {
	Source     string
	Summary    string
	Error      string
	ErrorClass string
	Severity   string
	OccurredAt time.Time
	Metadata   map[string]string
}

// Sink describes a destination capable of delivering alerts.
type Sink interface {
	Send(ctx context.Context, alert Alert) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, alert Alert) error

// Send implements the Sink interface.
func (f SinkFunc) Send(ctx context.Context, alert Alert) error {
	if f == nil {
		return nil
	}
	return f(ctx, alert)
}

// Fanout delivers an alert to every sink and joins their errors.
type Fanout []Sink

// Send implements the Sink interface.
func (f Fanout) Send(ctx context.Context, alert Alert) error {
	var errs []error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.Send(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Retry calls fn up to attempts times with a linear backoff between tries.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error
	for attempt := range attempts {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * 200 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
