package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pep299/american-standard/internal/llm"
	"github.com/pep299/american-standard/internal/logging"
	"github.com/pep299/american-standard/internal/model"
)

// RegenerateReactions re-queries X reactions for every article, in batches,
// and replaces each reaction block in place. A failed call leaves the block
// untouched; an empty or unparseable answer clears it. It returns the number
// of articles whose block was replaced.
func (g *Generator) RegenerateReactions(ctx context.Context, articles []model.Article) (int, error) {
	logger := logging.For(ctx, g.logger)
	start := time.Now()
	defer func() {
		if g.observer != nil {
			g.observer.ObserveStage(StageReactions, nil, time.Since(start))
		}
	}()

	updated := 0
	for batchStart := 0; batchStart < len(articles); batchStart += g.opts.BatchSize {
		if batchStart > 0 {
			if err := g.sleep(ctx, g.opts.BatchDelay); err != nil {
				return updated, err
			}
		}

		end := min(batchStart+g.opts.BatchSize, len(articles))
		ok := make([]bool, end-batchStart)

		var eg errgroup.Group
		for i := batchStart; i < end; i++ {
			article := &articles[i]
			eg.Go(func() error {
				reactions, err := g.fetchReactions(ctx, article.Headline, article.LeadParagraph)
				if err != nil {
					logger.Warn("reactions unavailable",
						zap.String("article_id", article.ID),
						zap.Error(err))
					return nil
				}
				article.XReactions = reactions
				ok[i-batchStart] = true
				return nil
			})
		}
		_ = eg.Wait()

		for _, done := range ok {
			if done {
				updated++
			}
		}
	}
	return updated, nil
}

func (g *Generator) fetchReactions(ctx context.Context, headline, background string) ([]model.XReaction, error) {
	text, err := g.search.Complete(ctx, llm.Request{
		Messages:    []llm.Message{llm.User(reactionsPrompt(headline, background))},
		MaxTokens:   1500,
		Temperature: 0.5,
		Search: &llm.SearchOptions{
			Sources:         []string{llm.SourceX},
			MaxResults:      15,
			ReturnCitations: true,
		},
	})
	if err != nil {
		return nil, err
	}

	var raw rawReactions
	if err := llm.DecodeObject(text, &raw); err != nil {
		return nil, nil
	}
	return validateReactions(raw.Reactions, true), nil
}
