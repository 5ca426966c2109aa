package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	loggeradapter "cryptotrack/internal/adapters/logger"
	"cryptotrack/internal/domain/alert"
)

// AlertChecker is the part of the alert service the scheduler drives.
type AlertChecker interface {
	CheckAlerts(ctx context.Context) ([]alert.Alert, error)
}

// Scheduler runs periodic background jobs on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	logger     *loggeradapter.Logger
	jobTimeout time.Duration
}

func New(logger *loggeradapter.Logger, jobTimeout time.Duration) *Scheduler {
	if logger == nil {
		logger = loggeradapter.NewNopLogger()
	}
	cronLogger := logger.Cron()
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger:     logger.Named("scheduler"),
		jobTimeout: jobTimeout,
	}
}

// AddAlertCheck registers checker on schedule, e.g. "@every 1m" or "*/5 * * * *".
func (s *Scheduler) AddAlertCheck(schedule string, checker AlertChecker) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.runAlertCheck(checker)
	})
	if err != nil {
		return fmt.Errorf("invalid alert schedule %q: %w", schedule, err)
	}
	s.logger.Info("Scheduled alert checks", zap.String("schedule", schedule))
	return nil
}

func (s *Scheduler) runAlertCheck(checker AlertChecker) {
	ctx := context.Background()
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	start := time.Now()
	fired, err := checker.CheckAlerts(ctx)
	if err != nil {
		s.logger.Error("Alert check failed", zap.Error(err))
		return
	}
	s.logger.Debug("Alert check finished",
		zap.Int("triggered", len(fired)),
		zap.Duration("took", time.Since(start)),
	)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
