package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type overdueSweepRunner interface {
	SweepOverdue(ctx context.Context) (int64, error)
}

// OverdueSweeper persists pending installments past due as overdue on a cron schedule.
type OverdueSweeper struct {
	runner  overdueSweepRunner
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger
}

// NewOverdueSweeper registers the sweep on schedule, evaluated in loc.
func NewOverdueSweeper(runner overdueSweepRunner, schedule string, loc *time.Location, logger *zap.Logger) (*OverdueSweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	cronLog := cronLogger{logger: logger.Sugar()}
	s := &OverdueSweeper{
		runner:  runner,
		timeout: 2 * time.Minute,
		logger:  logger,
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog))),
	}
	if _, err := s.cron.AddFunc(schedule, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule overdue sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *OverdueSweeper) Start() {
	s.cron.Start()
	s.logger.Info("overdue sweeper started")
}

// Stop halts the schedule and returns a context done once a running sweep finishes.
func (s *OverdueSweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce executes a single sweep bounded by the sweeper timeout.
func (s *OverdueSweeper) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.runner.SweepOverdue(ctx)
	if err != nil {
		s.logger.Error("overdue sweep failed", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
