package errors

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: fmt.Errorf("sweep: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "app error", err: fmt.Errorf("wrap: %w", apperrors.Conflict("slot taken")), want: "app_conflict"},
		{name: "net error", err: fmt.Errorf("dial: %w", &net.OpError{Op: "dial"}), want: "net_operror"},
		{name: "plain", err: fmt.Errorf("boom"), want: "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
