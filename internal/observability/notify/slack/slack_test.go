package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/notify"
)

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestFormatMessageIncludesFields(t *testing.T) {
	client, err := NewClient(Config{
		WebhookURL: "https://hooks.slack.com/services/test",
		Channel:    "#alerts",
		Username:   "bot",
	})
	require.NoError(t, err)

	msg := client.formatMessage(notify.Alert{
		Source:     "appointment_sweeper",
		Summary:    "Appointment sweeper failing",
		Error:      "dial tcp <db>: refused",
		ErrorClass: "op_error",
		OccurredAt: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
		Metadata:   map[string]string{"failures": "3", "batch_size": "500"},
	})

	assert.Equal(t, "bot", msg["username"])
	assert.Equal(t, "#alerts", msg["channel"])

	text, ok := msg["text"].(string)
	require.True(t, ok)
	assert.Contains(t, text, "*Appointment sweeper failing*")
	assert.Contains(t, text, "• Severity: critical")
	assert.Contains(t, text, "• Source: appointment_sweeper")
	assert.Contains(t, text, "dial tcp &lt;db&gt;: refused")
	assert.Contains(t, text, "    • batch_size: 500\n    • failures: 3\n")
	assert.Contains(t, text, "• Timestamp: 2026-05-10T12:00:00Z")
}

func TestFormatMessageOmitsChannel(t *testing.T) {
	client, err := NewClient(Config{WebhookURL: "https://hooks.slack.com/services/test"})
	require.NoError(t, err)

	msg := client.formatMessage(notify.Alert{})
	_, hasChannel := msg["channel"]
	assert.False(t, hasChannel)
	assert.Equal(t, "thankyoudoc", msg["username"])
}

func TestSendRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(Config{WebhookURL: srv.URL, RetryLimit: 1, Client: srv.Client()})
	require.NoError(t, err)

	require.NoError(t, client.Send(context.Background(), notify.Alert{Source: "appointment_sweeper"}))
	assert.Equal(t, int32(2), hits.Load())
}
