// Package scheduler triggers the daily edition on a cron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/logging"
	"github.com/pep299/american-standard/internal/service"
)

// Generator is the part of service.Editions the schedule needs
type Generator interface {
	Generate(ctx context.Context, force bool) service.Result
}

// Scheduler runs Generate(ctx, false) on a cron schedule in UTC
type Scheduler struct {
	cron   *cron.Cron
	gen    Generator
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New parses spec (standard five-field cron) and registers the job.
// Overlapping runs are skipped and panics are recovered.
func New(spec string, gen Generator, logger *zap.Logger) (*Scheduler, error) {
	logger = logging.OrNop(logger).Named("scheduler")
	cronLog := cronLogger{logger.Sugar()}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		gen:    gen,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		cancel()
		return nil, err
	}
	logger.Info("scheduled edition generation", zap.String("schedule", spec))
	return s, nil
}

// Start begins running the schedule in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels an in-flight run and waits for it, or for ctx
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduled run did not finish before shutdown")
	}
}

func (s *Scheduler) run() {
	s.logger.Info("scheduled execution starting")
	result := s.gen.Generate(s.ctx, false)
	if !result.Success {
		s.logger.Error("scheduled generation failed",
			zap.String("date", result.Date),
			zap.String("error", result.Error),
			zap.String("details", result.Details),
			zap.String("fallback_date", result.FallbackDate),
		)
		return
	}
	s.logger.Info("scheduled generation completed",
		zap.String("date", result.Date),
		zap.String("message", result.Message),
		zap.Int("articles", result.ArticleCount),
	)
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
