// Package jobs runs the periodic maintenance tasks of the mailroom.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SubscriptionExpirer moves lapsed subscriptions to EXPIRED.
type SubscriptionExpirer interface {
	ExpireLapsed(ctx context.Context, grace time.Duration) (int64, error)
}

// Scheduler wraps a cron runner whose jobs never overlap with themselves.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	timeout time.Duration
}

// New creates a scheduler evaluating cron schedules in loc. Each run gets at most timeout.
func New(loc *time.Location, timeout time.Duration, log *zap.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:     log,
		timeout: timeout,
	}
}

// AddSubscriptionExpiry schedules ExpireSubscriptions on schedule ("@hourly", "0 */6 * * *").
func (s *Scheduler) AddSubscriptionExpiry(schedule string, svc SubscriptionExpirer, grace time.Duration) error {
	if _, err := s.cron.AddFunc(schedule, ExpireSubscriptions(svc, grace, s.timeout, s.log)); err != nil {
		return fmt.Errorf("schedule subscription expiry %q: %w", schedule, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler_started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler_stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExpireSubscriptions returns the job body. It is exported so it can also be run once
// on demand.
func ExpireSubscriptions(svc SubscriptionExpirer, grace, timeout time.Duration, log *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		n, err := svc.ExpireLapsed(ctx, grace)
		if err != nil {
			log.Error("subscription_expiry_failed", zap.Error(err), zap.Duration("grace", grace))
			return
		}
		log.Info("subscription_expiry_done",
			zap.Int64("expired", n),
			zap.Duration("grace", grace),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron_"+msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron_"+msg, zap.Error(err), zap.Any("details", keysAndValues))
}
