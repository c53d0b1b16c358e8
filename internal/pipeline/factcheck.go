package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pep299/american-standard/internal/llm"
	"github.com/pep299/american-standard/internal/logging"
)

// factCheck attaches media checks to the first FactCheckTopK drafts.
// Any failure leaves that draft without checks.
func (g *Generator) factCheck(ctx context.Context, drafts []*Draft) {
	selected := drafts
	if len(selected) > g.opts.FactCheckTopK {
		selected = selected[:g.opts.FactCheckTopK]
	}
	logger := logging.For(ctx, g.logger)

	var eg errgroup.Group
	eg.SetLimit(g.opts.BatchSize)
	for _, d := range selected {
		eg.Go(func() error {
			checks, err := g.checkDraft(ctx, d)
			if err != nil {
				logger.Warn("media check failed", zap.String("headline", d.Headline), zap.Error(err))
				return nil
			}
			d.MediaWatch = checks.validate()
			return nil
		})
	}
	_ = eg.Wait()
}

func (g *Generator) checkDraft(ctx context.Context, d *Draft) (rawChecks, error) {
	var raw rawChecks
	text, err := g.search.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(newsroomSystemPrompt),
			llm.User(factCheckPrompt(d)),
		},
		MaxTokens:   2500,
		Temperature: 0.3,
		Search: &llm.SearchOptions{
			Sources:         []string{llm.SourceNews, llm.SourceWeb, llm.SourceX},
			MaxResults:      20,
			ReturnCitations: true,
		},
	})
	if err != nil {
		return raw, err
	}
	err = llm.DecodeObject(text, &raw)
	return raw, err
}
