// Package health runs periodic liveness probes against the admin backend
// and logs the retry telemetry each probe produces.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc is a scheduled unit of work.
type JobFunc func(ctx context.Context) error

// cronLogger adapts the cron logger interface to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, kvAttrs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	attrs := append([]slog.Attr{slog.Any("error", err)}, kvAttrs(keysAndValues)...)
	l.logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

func kvAttrs(keysAndValues []interface{}) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, keysAndValues[i+1]))
	}
	return attrs
}

// Scheduler runs jobs on cron schedules with slog-integrated logging.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewScheduler creates a stopped scheduler bound to parentCtx.
func NewScheduler(parentCtx context.Context, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger{logger: logger.With("component", "cron")}),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add schedules job under the given cron spec (e.g. "@every 1m").
func (s *Scheduler) Add(spec, name string, job JobFunc) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		s.wg.Add(1)
		defer s.wg.Done()

		start := time.Now()
		err := job(s.ctx)
		dur := time.Since(start)
		if err != nil {
			s.logger.Warn("job failed", slog.String("job", name), slog.Duration("dur", dur), slog.Any("error", err))
			return
		}
		s.logger.Debug("job finished", slog.String("job", name), slog.Duration("dur", dur))
	})
	if err != nil {
		s.logger.Error("failed to add job", slog.String("job", name), slog.String("spec", spec), slog.Any("error", err))
		return 0, err
	}
	s.logger.Info("job scheduled", slog.String("job", name), slog.String("spec", spec))
	return id, nil
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the job context and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.cron.Stop().Done()
		s.wg.Wait()
	})
}
