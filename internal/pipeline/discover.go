package pipeline

import (
	"context"

	"github.com/pep299/american-standard/internal/llm"
)

func (g *Generator) discover(ctx context.Context) ([]Topic, error) {
	text, err := g.search.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System(newsroomSystemPrompt),
			llm.User(discoverPrompt(displayDate(g.now()), g.opts.TopicCount)),
		},
		MaxTokens:   4000,
		Temperature: 0.7,
		Search: &llm.SearchOptions{
			Sources:         []string{llm.SourceX, llm.SourceNews, llm.SourceWeb},
			MaxResults:      30,
			ReturnCitations: true,
		},
	})
	if err != nil {
		return nil, err
	}

	var raw rawTopics
	if err := llm.DecodeObject(text, &raw); err != nil {
		return nil, err
	}
	return raw.validate(g.opts.TopicCount)
}
