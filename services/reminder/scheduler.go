package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrScanInProgress is returned by RunOnce while another scan holds the scheduler.
var ErrScanInProgress = errors.New("reminder scan already running")

// Scheduler runs the scanner on a fixed interval. Ticks that arrive while a
// scan is still running are skipped, never run concurrently.
type Scheduler struct {
	Scanner    *Scanner
	Interval   time.Duration
	RunOnStart bool
	Logger     *zap.Logger

	running sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cron != nil {
		return errors.New("reminder scheduler already started")
	}
	logger := cronLogger{s.logger().Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	runCtx, cancel := context.WithCancel(ctx)
	if _, err := c.AddFunc("@every "+s.interval().String(), func() { s.tick(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule reminder scan: %w", err)
	}
	s.cron = c
	s.cancel = cancel
	c.Start()

	s.logger().Info("reminder scheduler started", zap.Duration("interval", s.interval()))
	if s.RunOnStart {
		go s.tick(runCtx)
	}
	return nil
}

// Stop waits for an in-flight scan until ctx expires, then cancels it.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger().Warn("reminder scan interrupted by shutdown")
	}
	s.cancel()
	s.running.Lock()
	s.running.Unlock()
	s.logger().Info("reminder scheduler stopped")
}

// RunOnce performs a single scan unless one is already running.
func (s *Scheduler) RunOnce(ctx context.Context) (ScanResult, error) {
	if !s.running.TryLock() {
		return ScanResult{}, ErrScanInProgress
	}
	defer s.running.Unlock()
	return s.Scanner.ScanAndFire(ctx)
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrScanInProgress) {
			s.logger().Debug("reminder tick skipped, scan in progress")
			return
		}
		s.logger().Error("reminder scan failed", zap.Error(err))
	}
}

func (s *Scheduler) interval() time.Duration {
	if s.Interval >= time.Second {
		return s.Interval
	}
	return time.Hour
}

func (s *Scheduler) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

// cronLogger routes robfig/cron logs through zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
