package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cryptotrack/internal/adapters/logger"
	"cryptotrack/internal/domain/alert"
)

type countingChecker struct {
	calls atomic.Int32
	err   error
}

func (c *countingChecker) CheckAlerts(context.Context) ([]alert.Alert, error) {
	c.calls.Add(1)
	return nil, c.err
}

func TestScheduler_RunsAlertChecks(t *testing.T) {
	s := New(logger.NewNopLogger(), time.Second)
	checker := &countingChecker{}

	require.NoError(t, s.AddAlertCheck("@every 1s", checker))
	s.Start()

	assert.Eventually(t, func() bool { return checker.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(nil, 0)
	err := s.AddAlertCheck("every minute please", &countingChecker{})
	assert.ErrorContains(t, err, "invalid alert schedule")
}

func TestScheduler_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(logger.New(zap.New(core)), time.Second)

	s.runAlertCheck(&countingChecker{err: errors.New("db locked")})

	failures := logs.FilterMessage("Alert check failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "db locked", failures[0].ContextMap()["error"])
}
