// Package metrics holds the metric names and tag conventions shared by the API
// and the StatsD and Prometheus sinks that carry them.
package metrics

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Metric names.
const (
	AccessDecision   = "access.decision"
	AccessDuration   = "access.duration"
	SweeperRun       = "sweeper.run"
	SweeperDuration  = "sweeper.duration"
	SweeperCompleted = "appointments.completed"
	SweeperLastOK    = "sweeper.last_success_epoch"
)

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
