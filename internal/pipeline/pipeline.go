// Package pipeline turns a handful of model calls into an ordered list of
// articles: DISCOVER, DRAFT, FACT_CHECK, EDIT_REVIEW, then ASSEMBLY.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/llm"
	"github.com/pep299/american-standard/internal/logging"
	"github.com/pep299/american-standard/internal/model"
)

// Stage names, used in logs and metrics
const (
	StageDiscover  = "discover"
	StageDraft     = "draft"
	StageFactCheck = "fact_check"
	StageReview    = "edit_review"
	StageAssembly  = "assembly"
	StageReactions = "reactions"
)

// StageObserver is told how long each stage took
type StageObserver interface {
	ObserveStage(stage string, err error, elapsed time.Duration)
}

// Generator runs the generation pipeline
type Generator struct {
	search   llm.Gateway // live-search calls
	editor   llm.Gateway // the cheap no-search review call
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	observer StageObserver
}

// Option configures a Generator
type Option func(*Generator)

// WithClock overrides the clock used for dates and ids
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithSleep overrides the inter-batch pause
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Generator) { g.sleep = sleep }
}

// WithStageObserver reports stage timings to obs
func WithStageObserver(obs StageObserver) Option {
	return func(g *Generator) { g.observer = obs }
}

// New creates a generator. editor may be nil, in which case the search
// gateway also serves the review call (without search).
func New(search, editor llm.Gateway, opts Options, logger *zap.Logger, options ...Option) *Generator {
	if editor == nil {
		editor = search
	}
	g := &Generator{
		search: search,
		editor: editor,
		opts:   opts.normalized(),
		logger: logging.OrNop(logger).Named("pipeline"),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Generate runs every stage and returns the assembled articles. Only a
// DISCOVER failure, an empty DRAFT result or cancellation is an error.
func (g *Generator) Generate(ctx context.Context) ([]model.Article, error) {
	logger := logging.For(ctx, g.logger)

	var topics []Topic
	err := g.stage(StageDiscover, func() error {
		var err error
		topics, err = g.discover(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("discovering topics: %w", err)
	}
	logger.Info("topics discovered", zap.Int("count", len(topics)))

	var drafts []*Draft
	err = g.stage(StageDraft, func() error {
		var err error
		drafts, err = g.draftAll(ctx, topics)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("drafting articles: %w", err)
	}
	logger.Info("articles drafted", zap.Int("count", len(drafts)), zap.Int("topics", len(topics)))

	if g.opts.FactCheckTopK > 0 {
		_ = g.stage(StageFactCheck, func() error {
			g.factCheck(ctx, drafts)
			return nil
		})
	}

	_ = g.stage(StageReview, func() error {
		drafts = g.review(ctx, drafts)
		return nil
	})

	var articles []model.Article
	_ = g.stage(StageAssembly, func() error {
		articles = Assemble(drafts, g.now())
		return nil
	})
	logger.Info("articles assembled", zap.Int("count", len(articles)))

	return articles, nil
}

func (g *Generator) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if g.observer != nil {
		g.observer.ObserveStage(name, err, time.Since(start))
	}
	return err
}

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// displayDate formats the edition day the way prompts expect it
func displayDate(t time.Time) string {
	return t.UTC().Format("Monday, January 2, 2006")
}
