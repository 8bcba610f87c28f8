package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/thankyoudoc/thankyoudoc-api/internal/domain/auth"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

type recordedMetric struct {
	kind  string
	name  string
	value float64
	tags  map[string]string
}

type recordingSink struct {
	mu      sync.Mutex
	metrics []recordedMetric
}

func (s *recordingSink) add(m recordedMetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
}

func (s *recordingSink) Count(name string, value int64, tags map[string]string) {
	s.add(recordedMetric{kind: "count", name: name, value: float64(value), tags: tags})
}

func (s *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	s.add(recordedMetric{kind: "gauge", name: name, value: value, tags: tags})
}

func (s *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	s.add(recordedMetric{kind: "timing", name: name, value: value.Seconds(), tags: tags})
}

func TestAccessRecorder(t *testing.T) {
	sink := &recordingSink{}
	rec := NewAccessRecorder(sink)

	rec.RecordDecision(ports.DecisionRecord{
		Decision:       domainauth.DecisionDeniedUnauthorized,
		RequiredRole:   domainauth.RoleAdmin,
		OverrideActive: false,
		Duration:       2 * time.Millisecond,
	})

	require.Len(t, sink.metrics, 2)
	want := map[string]string{
		"decision":      "denied_unauthorized",
		"required_role": "admin",
		"override":      "false",
	}
	assert.Equal(t, recordedMetric{kind: "count", name: AccessDecision, value: 1, tags: want}, sink.metrics[0])
	assert.Equal(t, "timing", sink.metrics[1].kind)
	assert.Equal(t, AccessDuration, sink.metrics[1].name)
	assert.Equal(t, want, sink.metrics[1].tags)
}

func TestAccessRecorder_NoDurationSkipsTiming(t *testing.T) {
	sink := &recordingSink{}
	NewAccessRecorder(sink).RecordDecision(ports.DecisionRecord{
		Decision:       domainauth.DecisionGranted,
		RequiredRole:   domainauth.RoleUser,
		OverrideActive: true,
	})
	require.Len(t, sink.metrics, 1)
	assert.Equal(t, "true", sink.metrics[0].tags["override"])
}

func TestAccessRecorder_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		NewAccessRecorder(nil).RecordDecision(ports.DecisionRecord{Duration: time.Millisecond})
	})
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "1"}
	cp := CloneTags(src)
	cp["a"] = "2"
	assert.Equal(t, "1", src["a"])
}

func scrape(t *testing.T, sink *PrometheusSink) string {
	t.Helper()
	rec := httptest.NewRecorder()
	sink.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusSink(t *testing.T) {
	sink := NewPrometheusSink("thankyoudoc", nil)
	tags := map[string]string{"decision": "granted", "required_role": "user", "override": "false"}

	sink.Count(AccessDecision, 1, tags)
	sink.Count(AccessDecision, 2, tags)
	sink.Timing(AccessDuration, 20*time.Millisecond, tags)
	sink.Gauge(SweeperLastOK, 1700000000, nil)

	body := scrape(t, sink)
	assert.Contains(t, body,
		`thankyoudoc_access_decision_total{decision="granted",override="false",required_role="user"} 3`)
	assert.Contains(t, body, `thankyoudoc_access_duration_seconds_count{decision="granted",override="false",required_role="user"} 1`)
	assert.Contains(t, body, `thankyoudoc_sweeper_last_success_epoch 1.7e+09`)
	assert.Contains(t, body, "go_goroutines")
}

func TestPrometheusSink_MismatchedLabelsDropped(t *testing.T) {
	sink := NewPrometheusSink("tyd", nil)
	sink.Count("sweeper.run", 1, map[string]string{"result": "success"})
	sink.Count("sweeper.run", 1, map[string]string{"result": "error", "error_class": "timeout"})
	sink.Count("sweeper.run", -1, map[string]string{"result": "success"})

	body := scrape(t, sink)
	assert.Contains(t, body, `tyd_sweeper_run_total{result="success"} 1`)
	assert.NotContains(t, body, "timeout")
}

func TestPromName(t *testing.T) {
	assert.Equal(t, "access_decision", promName("access.decision"))
	assert.Equal(t, "sweeper_last_success_epoch", promName(" sweeper.last-success/epoch "))
	assert.Empty(t, promName(".."))
}
