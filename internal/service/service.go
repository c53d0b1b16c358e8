// Package service coordinates generation: the existence check, the
// pipeline run, persistence, fallback reporting and notifications.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/llm"
	"github.com/pep299/american-standard/internal/logging"
	"github.com/pep299/american-standard/internal/metrics"
	"github.com/pep299/american-standard/internal/model"
	"github.com/pep299/american-standard/internal/repository"
)

// Generator produces articles. *pipeline.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context) ([]model.Article, error)
	RegenerateReactions(ctx context.Context, articles []model.Article) (int, error)
}

// Notifier is told about published and failed editions
type Notifier interface {
	EditionPublished(ctx context.Context, edition *model.Edition) error
	GenerationFailed(ctx context.Context, date, reason, fallbackDate string) error
}

// Recorder counts generation outcomes
type Recorder interface {
	ObserveGeneration(outcome string, articles int)
}

// Messages returned to callers
const (
	MsgGenerated      = "Edition generated successfully"
	MsgAlreadyExists  = "Edition already exists for today"
	MsgFallback       = "Generation failed, using previous edition"
	MsgReactionsDone  = "Reactions regenerated"
	errSaveFailedText = "failed to save edition"
)

// DefaultTimeout bounds one generation run when no limit is configured
const DefaultTimeout = 300 * time.Second

// ErrEditionNotFound is returned when an operation needs a stored edition
var ErrEditionNotFound = errors.New("edition not found")

// Result is the generation envelope returned to HTTP and CLI callers
type Result struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	Details      string `json:"details,omitempty"`
	Date         string `json:"date,omitempty"`
	ArticleCount int    `json:"articleCount,omitempty"`
	FallbackDate string `json:"fallbackDate,omitempty"`
	Stale        bool   `json:"stale,omitempty"`
}

// ReactionsResult is the envelope for a reaction refresh
type ReactionsResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Date         string `json:"date"`
	ArticleCount int    `json:"articleCount"`
	Updated      int    `json:"updated"`
}

// Editions runs generation against a repository
type Editions struct {
	repo            *repository.Repository
	generator       Generator
	modelConfigured bool
	notifier        Notifier
	recorder        Recorder
	logger          *zap.Logger
	now             func() time.Time
	timeout         time.Duration
}

// Option configures Editions
type Option func(*Editions)

// WithNotifier sends publish and failure notices to n
func WithNotifier(n Notifier) Option {
	return func(e *Editions) { e.notifier = n }
}

// WithRecorder counts outcomes on r
func WithRecorder(r Recorder) Option {
	return func(e *Editions) { e.recorder = r }
}

// WithTimeout sets the overall limit on one run. Non-positive values keep
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Editions) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithClock overrides the clock used for today's date
func WithClock(now func() time.Time) Option {
	return func(e *Editions) { e.now = now }
}

// NewEditions creates the service. When modelConfigured is false every
// generation fails with llm.ErrMissingAPIKey before the pipeline runs.
func NewEditions(repo *repository.Repository, generator Generator, modelConfigured bool, logger *zap.Logger, opts ...Option) *Editions {
	e := &Editions{
		repo:            repo,
		generator:       generator,
		modelConfigured: modelConfigured,
		logger:          logging.OrNop(logger).Named("editions"),
		now:             time.Now,
		timeout:         DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the current edition date
func (e *Editions) Today() string {
	return model.TodayDate(e.now())
}

// Generate builds and saves today's edition. Without force an existing
// edition short-circuits with no model calls. Failures never return an
// error: they are reported in the envelope, pointing at the latest saved
// edition when there is one.
//
// The run is detached from ctx cancellation. Only the configured timeout
// stops it, so a dropped client connection still ends in a saved edition.
func (e *Editions) Generate(ctx context.Context, force bool) Result {
	ctx = context.WithoutCancel(ctx)
	today := e.Today()
	logger := logging.For(ctx, e.logger).With(zap.String("date", today), zap.Bool("force", force))

	if !force && e.repo.EditionExists(ctx, today) {
		logger.Info("edition already exists, skipping generation")
		e.record(metrics.OutcomeExists, 0)
		return Result{Success: true, Message: MsgAlreadyExists, Date: today}
	}

	if !e.modelConfigured {
		return e.fail(ctx, logger, today, llm.ErrMissingAPIKey)
	}

	logger.Info("generating edition")
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	articles, err := e.generator.Generate(runCtx)
	cancel()
	if err != nil {
		return e.fail(ctx, logger, today, err)
	}

	edition := model.NewEdition(today, articles, e.now())
	if !e.repo.SaveEdition(ctx, edition) {
		return e.fail(ctx, logger, today, errors.New(errSaveFailedText))
	}

	logger.Info("edition generated", zap.Int("articles", len(articles)))
	e.record(metrics.OutcomeGenerated, len(articles))
	if e.notifier != nil {
		if err := e.notifier.EditionPublished(ctx, edition); err != nil {
			logger.Warn("publish notification failed", zap.Error(err))
		}
	}

	return Result{
		Success:      true,
		Message:      MsgGenerated,
		Date:         today,
		ArticleCount: len(articles),
	}
}

func (e *Editions) fail(ctx context.Context, logger *zap.Logger, today string, cause error) Result {
	logger.Error("edition generation failed", zap.Error(cause))

	result := Result{Success: false, Error: cause.Error(), Date: today}
	if fallback := e.repo.GetLatestEdition(ctx); fallback != nil {
		result = Result{
			Success:      false,
			Error:        MsgFallback,
			Details:      cause.Error(),
			Date:         today,
			FallbackDate: fallback.Date,
			Stale:        true,
		}
		e.record(metrics.OutcomeFallback, 0)
	} else {
		e.record(metrics.OutcomeFailed, 0)
	}

	if e.notifier != nil {
		if err := e.notifier.GenerationFailed(ctx, today, cause.Error(), result.FallbackDate); err != nil {
			logger.Warn("failure notification failed", zap.Error(err))
		}
	}
	return result
}

func (e *Editions) record(outcome string, articles int) {
	if e.recorder != nil {
		e.recorder.ObserveGeneration(outcome, articles)
	}
}

// RegenerateReactions refreshes the reaction blocks of the edition for date
// (today when empty) and saves it.
func (e *Editions) RegenerateReactions(ctx context.Context, date string) (ReactionsResult, error) {
	ctx = context.WithoutCancel(ctx)
	if date == "" {
		date = e.Today()
	}
	logger := logging.For(ctx, e.logger).With(zap.String("date", date))

	edition := e.repo.GetEdition(ctx, date)
	if edition == nil {
		return ReactionsResult{}, ErrEditionNotFound
	}
	if !e.modelConfigured {
		return ReactionsResult{}, llm.ErrMissingAPIKey
	}

	logger.Info("regenerating reactions", zap.Int("articles", len(edition.Articles)))
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	updated, err := e.generator.RegenerateReactions(runCtx, edition.Articles)
	cancel()
	if err != nil {
		return ReactionsResult{}, err
	}
	if !e.repo.SaveEdition(ctx, edition) {
		return ReactionsResult{}, errors.New(errSaveFailedText)
	}

	return ReactionsResult{
		Success:      true,
		Message:      MsgReactionsDone,
		Date:         date,
		ArticleCount: len(edition.Articles),
		Updated:      updated,
	}, nil
}
