package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/thankyoudoc/thankyoudoc-api/config"
	apperrors "github.com/thankyoudoc/thankyoudoc-api/internal/errors"
	"github.com/thankyoudoc/thankyoudoc-api/internal/mocks"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/metrics"
	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/notify"
)

type sweepSink struct {
	mu     sync.Mutex
	counts map[string]int64
	tags   map[string]map[string]string
	gauges map[string]float64
}

func newSweepSink() *sweepSink {
	return &sweepSink{
		counts: make(map[string]int64),
		tags:   make(map[string]map[string]string),
		gauges: make(map[string]float64),
	}
}

func (s *sweepSink) Count(name string, value int64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[name] += value
	s.tags[name] = tags
}

func (s *sweepSink) Gauge(name string, value float64, _ map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauges[name] = value
}

func (s *sweepSink) Timing(string, time.Duration, map[string]string) {}

var sweepNow = time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)

func newTestSweeper(t *testing.T, batch int) (*AppointmentSweeper, *mocks.MockAppointmentSweepRepository, *sweepSink) {
	t.Helper()
	repo := mocks.NewMockAppointmentSweepRepository(gomock.NewController(t))
	sink := newSweepSink()
	sw, err := NewAppointmentSweeper(AppointmentSweeperOptions{
		Repo:    repo,
		Config:  config.SweeperConfig{Interval: 10 * time.Millisecond, Grace: 2 * time.Hour, BatchSize: batch},
		Metrics: sink,
		Now:     func() time.Time { return sweepNow },
	})
	require.NoError(t, err)
	return sw, repo, sink
}

func TestNewAppointmentSweeper_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewAppointmentSweeper(AppointmentSweeperOptions{})
	require.Error(t, err)

	repo := mocks.NewMockAppointmentSweepRepository(gomock.NewController(t))
	_, err = NewAppointmentSweeper(AppointmentSweeperOptions{Repo: repo, Config: config.SweeperConfig{BatchSize: 1}})
	require.Error(t, err)
	_, err = NewAppointmentSweeper(AppointmentSweeperOptions{Repo: repo, Config: config.SweeperConfig{Interval: time.Minute}})
	require.Error(t, err)
}

func TestAppointmentSweeper_Sweep_Batches(t *testing.T) {
	t.Parallel()
	sw, repo, sink := newTestSweeper(t, 100)
	cutoff := sweepNow.Add(-2 * time.Hour)

	gomock.InOrder(
		repo.EXPECT().CompletePast(gomock.Any(), cutoff, 100).Return(int64(100), nil),
		repo.EXPECT().CompletePast(gomock.Any(), cutoff, 100).Return(int64(100), nil),
		repo.EXPECT().CompletePast(gomock.Any(), cutoff, 100).Return(int64(7), nil),
	)

	n, err := sw.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(207), n)
	assert.Equal(t, int64(207), sink.counts[metrics.SweeperCompleted])
	assert.Equal(t, int64(1), sink.counts[metrics.SweeperRun])
	assert.Equal(t, metrics.ResultSuccess, sink.tags[metrics.SweeperRun]["result"])
	assert.Equal(t, float64(sweepNow.Unix()), sink.gauges[metrics.SweeperLastOK])
}

func TestAppointmentSweeper_Sweep_Noop(t *testing.T) {
	t.Parallel()
	sw, repo, sink := newTestSweeper(t, 100)

	repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), 100).Return(int64(0), nil)

	n, err := sw.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, metrics.ResultNoop, sink.tags[metrics.SweeperRun]["result"])
	assert.Zero(t, sink.counts[metrics.SweeperCompleted])
}

func TestAppointmentSweeper_Sweep_Error(t *testing.T) {
	t.Parallel()
	sw, repo, sink := newTestSweeper(t, 10)

	gomock.InOrder(
		repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), 10).Return(int64(10), nil),
		repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), 10).Return(int64(0), apperrors.Internal("db down")),
	)

	n, err := sw.Sweep(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, metrics.ResultError, sink.tags[metrics.SweeperRun]["result"])
	assert.Equal(t, "app_internal", sink.tags[metrics.SweeperRun]["error_class"])
	_, ok := sink.gauges[metrics.SweeperLastOK]
	assert.False(t, ok)
}

func TestAppointmentSweeper_Run_StopsOnCancel(t *testing.T) {
	t.Parallel()
	sw, repo, _ := newTestSweeper(t, 50)

	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), 50).
		DoAndReturn(func(context.Context, time.Time, int) (int64, error) {
			calls++
			if calls == 2 {
				cancel()
			}
			return 0, nil
		}).MinTimes(2)

	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestAppointmentSweeper_Run_DeadlineReturnsError(t *testing.T) {
	t.Parallel()
	sw, repo, _ := newTestSweeper(t, 50)
	repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), 50).Return(int64(0), nil).AnyTimes()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := sw.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAppointmentSweeper_AlertsOnceAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	repo := mocks.NewMockAppointmentSweepRepository(gomock.NewController(t))
	var alerts []notify.Alert
	sw, err := NewAppointmentSweeper(AppointmentSweeperOptions{
		Repo:   repo,
		Config: config.SweeperConfig{Interval: time.Minute, BatchSize: 10, AlertAfter: 2},
		Alerts: notify.SinkFunc(func(_ context.Context, a notify.Alert) error {
			alerts = append(alerts, a)
			return nil
		}),
		Now: func() time.Time { return sweepNow },
	})
	require.NoError(t, err)

	dbErr := errors.New("connection refused")
	repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), 10).Return(int64(0), dbErr).Times(3)

	for range 3 {
		_, sweepErr := sw.Sweep(context.Background())
		require.Error(t, sweepErr)
	}
	require.Len(t, alerts, 1)
	assert.Equal(t, "appointment_sweeper", alerts[0].Source)
	assert.Equal(t, "2", alerts[0].Metadata["consecutive_failures"])
	assert.Equal(t, sweepNow, alerts[0].OccurredAt)

	repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), 10).Return(int64(0), nil)
	_, err = sw.Sweep(context.Background())
	require.NoError(t, err)

	repo.EXPECT().CompletePast(gomock.Any(), gomock.Any(), 10).Return(int64(0), dbErr).Times(2)
	for range 2 {
		_, sweepErr := sw.Sweep(context.Background())
		require.Error(t, sweepErr)
	}
	assert.Len(t, alerts, 2)
}
