package pipeline

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/llm"
	"github.com/pep299/american-standard/internal/logging"
)

// review runs the editorial pass. It fails open: on any error the drafts
// are returned unchanged.
func (g *Generator) review(ctx context.Context, drafts []*Draft) []*Draft {
	logger := logging.For(ctx, g.logger)

	text, err := g.editor.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			llm.System("You are a careful newspaper copy chief. Answer with valid JSON only."),
			llm.User(reviewPrompt(drafts)),
		},
		MaxTokens:   2000,
		Temperature: 0.3,
	})
	if err != nil {
		logger.Warn("edit review unavailable, keeping drafts", zap.Error(err))
		return drafts
	}

	var raw rawReview
	if err := llm.DecodeObject(text, &raw); err != nil {
		logger.Warn("edit review unparseable, keeping drafts", zap.Error(err))
		return drafts
	}

	fixed := applyHeadlineFixes(drafts, raw)
	kept := applyRemovals(drafts, raw.Remove)
	if len(kept) == 0 {
		logger.Warn("edit review would remove every article, ignoring removals")
		return drafts
	}

	logger.Info("edit review applied",
		zap.Int("headline_fixes", fixed),
		zap.Int("removed", len(drafts)-len(kept)))
	return kept
}

func applyHeadlineFixes(drafts []*Draft, raw rawReview) int {
	fixed := 0
	for _, fix := range raw.HeadlineFixes {
		headline := strings.TrimSpace(fix.Headline)
		if fix.Index < 0 || fix.Index >= len(drafts) || headline == "" {
			continue
		}
		drafts[fix.Index].Headline = headline
		fixed++
	}
	return fixed
}

// applyRemovals drops the given indices, ignoring duplicates and indices out
// of range. Removal runs from the highest index down so earlier positions
// never shift. The input slice is not modified.
func applyRemovals(drafts []*Draft, remove []int) []*Draft {
	seen := make(map[int]bool)
	indices := make([]int, 0, len(remove))
	for _, i := range remove {
		if i < 0 || i >= len(drafts) || seen[i] {
			continue
		}
		seen[i] = true
		indices = append(indices, i)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))

	kept := append([]*Draft(nil), drafts...)
	for _, i := range indices {
		kept = append(kept[:i], kept[i+1:]...)
	}
	return kept
}
