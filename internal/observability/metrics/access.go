package metrics

import (
	"strconv"

	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/statsd"
	"github.com/thankyoudoc/thankyoudoc-api/internal/ports"
)

// AccessRecorder emits one counter and one timing per access decision.
type AccessRecorder struct {
	sink statsd.Sink
}

var _ ports.DecisionRecorder = (*AccessRecorder)(nil)

// NewAccessRecorder returns a recorder over sink. A nil sink discards.
func NewAccessRecorder(sink statsd.Sink) *AccessRecorder {
	if sink == nil {
		sink = statsd.Discard
	}
	return &AccessRecorder{sink: sink}
}

// RecordDecision implements ports.DecisionRecorder.
func (r *AccessRecorder) RecordDecision(rec ports.DecisionRecord) {
	tags := map[string]string{
		"decision":      rec.Decision.String(),
		"required_role": rec.RequiredRole.String(),
		"override":      strconv.FormatBool(rec.OverrideActive),
	}
	r.sink.Count(AccessDecision, 1, tags)
	if rec.Duration > 0 {
		r.sink.Timing(AccessDuration, rec.Duration, CloneTags(tags))
	}
}
