package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pep299/american-standard/internal/llm"
	"github.com/pep299/american-standard/internal/logging"
)

// draftAll writes one article per topic in sequential batches of
// concurrent calls. A failed topic is logged and dropped. The first
// successful draft of the first batch is the lead story.
func (g *Generator) draftAll(ctx context.Context, topics []Topic) ([]*Draft, error) {
	if len(topics) > g.opts.MaxArticles {
		topics = topics[:g.opts.MaxArticles]
	}
	logger := logging.For(ctx, g.logger)

	var drafts []*Draft
	for start := 0; start < len(topics); start += g.opts.BatchSize {
		if start > 0 {
			if err := g.sleep(ctx, g.opts.BatchDelay); err != nil {
				return nil, err
			}
		}

		end := min(start+g.opts.BatchSize, len(topics))
		results := make([]*Draft, end-start)

		var eg errgroup.Group
		for i := start; i < end; i++ {
			eg.Go(func() error {
				d, err := g.draftTopic(ctx, i, topics[i])
				if err != nil {
					logger.Warn("dropping topic",
						zap.Int("topic_index", i),
						zap.String("topic", topics[i].Title),
						zap.Error(err))
					return nil
				}
				results[i-start] = d
				return nil
			})
		}
		_ = eg.Wait()

		for _, d := range results {
			if d == nil {
				continue
			}
			if start == 0 && !hasLead(drafts) {
				d.IsLead = true
			}
			drafts = append(drafts, d)
		}
	}

	if len(drafts) == 0 {
		return nil, errNoDrafts
	}
	return drafts, nil
}

func (g *Generator) draftTopic(ctx context.Context, index int, topic Topic) (*Draft, error) {
	text, err := g.search.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(newsroomSystemPrompt),
			llm.User(draftPrompt(topic, index == 0, g.opts.WordTarget)),
		},
		MaxTokens:   4000,
		Temperature: 0.7,
		Search: &llm.SearchOptions{
			Sources:         []string{llm.SourceX, llm.SourceNews, llm.SourceWeb},
			MaxResults:      20,
			ReturnCitations: true,
		},
	})
	if err != nil {
		return nil, err
	}

	var raw rawDraft
	if err := llm.DecodeObject(text, &raw); err != nil {
		return nil, err
	}
	return raw.validate(index, topic)
}

func hasLead(drafts []*Draft) bool {
	for _, d := range drafts {
		if d.IsLead {
			return true
		}
	}
	return false
}
