package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/american-standard/internal/llm"
	"github.com/pep299/american-standard/internal/model"
)

func TestRegenerateReactions(t *testing.T) {
	old := []model.XReaction{{Handle: "@old", Quote: "stale"}}
	articles := []model.Article{
		{ID: "a0", Headline: "Fresh", XReactions: old},
		{ID: "a1", Headline: "Broken", XReactions: old},
		{ID: "a2", Headline: "Quiet", XReactions: old},
		{ID: "a3", Headline: "Garbled", XReactions: old},
	}

	search := &fakeGateway{respond: func(prompt string, req llm.Request) (string, error) {
		switch {
		case strings.Contains(prompt, "Topic: Fresh"):
			return `{"reactions":[{"handle":"one","quote":"hot take","likes":"1K"},{"handle":"@two","quote":"other side","verified":false}]}`, nil
		case strings.Contains(prompt, "Topic: Broken"):
			return "", errors.New("rate limited")
		case strings.Contains(prompt, "Topic: Quiet"):
			return `{"reactions":[]}`, nil
		default:
			return "no idea", nil
		}
	}}

	var pauses int
	g := New(search, nil, Options{BatchSize: 3}, nil, WithSleep(func(context.Context, time.Duration) error {
		pauses++
		return nil
	}))

	updated, err := g.RegenerateReactions(context.Background(), articles)
	require.NoError(t, err)
	assert.Equal(t, 3, updated)
	assert.Equal(t, 1, pauses)

	require.Len(t, articles[0].XReactions, 2)
	assert.Equal(t, "@one", articles[0].XReactions[0].Handle)
	assert.True(t, articles[0].XReactions[1].Verified, "regenerated reactions are marked verified")

	assert.Equal(t, old, articles[1].XReactions, "a failed call leaves the block untouched")
	assert.Nil(t, articles[2].XReactions, "an empty answer clears the block")
	assert.Nil(t, articles[3].XReactions, "an unparseable answer clears the block")

	for _, req := range search.calls {
		require.NotNil(t, req.Search)
		assert.Equal(t, []string{llm.SourceX}, req.Search.Sources)
		assert.Equal(t, 15, req.Search.MaxResults)
		assert.Equal(t, 0.5, req.Temperature)
		assert.Equal(t, 1500, req.MaxTokens)
	}
}
