package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/american-standard/internal/model"
	"github.com/pep299/american-standard/internal/store"
)

// failingStore errors on every call
type failingStore struct{}

var errBackend = errors.New("backend unavailable")

func (failingStore) Get(context.Context, string) ([]byte, error)  { return nil, errBackend }
func (failingStore) Set(context.Context, string, []byte) error    { return errBackend }
func (failingStore) Exists(context.Context, string) (bool, error) { return false, errBackend }
func (failingStore) Delete(context.Context, string) error         { return errBackend }
func (failingStore) Close() error                                 { return nil }
func (failingStore) Name() string                                 { return "failing" }

func newEdition(date string, headlines ...string) *model.Edition {
	articles := make([]model.Article, len(headlines))
	for i, h := range headlines {
		articles[i] = model.Article{
			ID:          fmt.Sprintf("article-%s-%d", date, i),
			Headline:    h,
			IsLeadStory: i == 0,
		}
	}
	return model.NewEdition(date, articles, time.Now())
}

func fixedClock(date string) Option {
	day, _ := time.Parse(model.DateLayout, date)
	return WithClock(func() time.Time { return day.Add(12 * time.Hour) })
}

func TestSaveAndGetEdition(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), nil)

	edition := newEdition("2025-04-01", "Lead story", "Second", "Third")
	require.True(t, repo.SaveEdition(ctx, edition))

	got := repo.GetEdition(ctx, "2025-04-01")
	require.NotNil(t, got)
	assert.Len(t, got.Articles, 3)
	assert.Equal(t, "Lead story", got.LeadArticle().Headline)
	assert.True(t, repo.EditionExists(ctx, "2025-04-01"))

	assert.Nil(t, repo.GetEdition(ctx, "2025-04-02"))
	assert.False(t, repo.EditionExists(ctx, "2025-04-02"))

	latest := repo.GetLatestEdition(ctx)
	require.NotNil(t, latest)
	assert.Equal(t, "2025-04-01", latest.Date)
}

func TestSaveEditionUpsertsIndex(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), nil)

	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-01", "A")))
	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-02", "B")))
	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-01", "A2", "A3")))

	index := repo.GetEditionsSummary(ctx)
	require.Len(t, index, 2)
	assert.Equal(t, "2025-04-02", index[0].Date)
	assert.Equal(t, model.EditionSummary{Date: "2025-04-01", ArticleCount: 2, LeadHeadline: "A2"}, index[1])

	// pointer follows the most recent write, not the most recent date
	assert.Equal(t, "2025-04-01", repo.GetLatestEdition(ctx).Date)
}

func TestIndexIsBounded(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), nil)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < MaxIndexEntries+10; i++ {
		date := start.AddDate(0, 0, i).Format(model.DateLayout)
		require.True(t, repo.SaveEdition(ctx, newEdition(date, "H")))
	}

	index := repo.GetEditionsSummary(ctx)
	assert.Len(t, index, MaxIndexEntries)
	assert.Equal(t, start.AddDate(0, 0, MaxIndexEntries+9).Format(model.DateLayout), index[0].Date)
}

func TestGetTodayEditionFallsBackToLatest(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), nil, fixedClock("2025-04-03"))

	assert.Nil(t, repo.GetTodayEdition(ctx))

	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-02", "Yesterday")))
	got := repo.GetTodayEdition(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "2025-04-02", got.Date)

	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-03", "Today")))
	assert.Equal(t, "2025-04-03", repo.GetTodayEdition(ctx).Date)
}

func TestGetArticle(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), nil)
	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-01", "A", "B")))

	edition, article := repo.GetArticle(ctx, "2025-04-01", "article-2025-04-01-1")
	require.NotNil(t, edition)
	require.NotNil(t, article)
	assert.Equal(t, "B", article.Headline)

	edition, article = repo.GetArticle(ctx, "2025-04-01", "missing")
	assert.Nil(t, edition)
	assert.Nil(t, article)
}

func TestDeleteArticlePromotesLead(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), nil)
	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-01", "Lead", "Second", "Third")))

	require.True(t, repo.DeleteArticle(ctx, "2025-04-01", "article-2025-04-01-0"))

	got := repo.GetEdition(ctx, "2025-04-01")
	require.Len(t, got.Articles, 2)
	leads := 0
	for _, a := range got.Articles {
		if a.IsLeadStory {
			leads++
		}
	}
	assert.Equal(t, 1, leads)
	assert.True(t, got.Articles[0].IsLeadStory)
	assert.Equal(t, "Second", got.Articles[0].Headline)

	index := repo.GetEditionsSummary(ctx)
	assert.Equal(t, "Second", index[0].LeadHeadline)
	assert.Equal(t, 2, index[0].ArticleCount)
}

func TestDeleteArticleUnknownID(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), nil)
	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-01", "Lead", "Second")))

	assert.False(t, repo.DeleteArticle(ctx, "2025-04-01", "nope"))
	assert.Len(t, repo.GetEdition(ctx, "2025-04-01").Articles, 2)

	assert.False(t, repo.DeleteArticle(ctx, "2025-05-01", "article-2025-04-01-0"))
}

func TestDeleteEditionRepointsLatest(t *testing.T) {
	ctx := context.Background()
	repo := New(store.NewMemoryStore(), nil)
	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-01", "A")))
	require.True(t, repo.SaveEdition(ctx, newEdition("2025-04-02", "B")))

	require.True(t, repo.DeleteEdition(ctx, "2025-04-02"))
	assert.Nil(t, repo.GetEdition(ctx, "2025-04-02"))
	assert.Equal(t, "2025-04-01", repo.GetLatestEdition(ctx).Date)
	assert.Len(t, repo.GetEditionsSummary(ctx), 1)

	require.True(t, repo.DeleteEdition(ctx, "2025-04-01"))
	assert.Nil(t, repo.GetLatestEdition(ctx))
	assert.Empty(t, repo.GetEditionsSummary(ctx))
}

func TestStoreFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	repo := New(failingStore{}, nil)

	assert.Nil(t, repo.GetEdition(ctx, "2025-04-01"))
	assert.Nil(t, repo.GetTodayEdition(ctx))
	assert.Nil(t, repo.GetLatestEdition(ctx))
	assert.False(t, repo.SaveEdition(ctx, newEdition("2025-04-01", "A")))
	assert.False(t, repo.EditionExists(ctx, "2025-04-01"))
	assert.Empty(t, repo.GetEditionsSummary(ctx))
	assert.False(t, repo.DeleteEdition(ctx, "2025-04-01"))
	assert.False(t, repo.DeleteArticle(ctx, "2025-04-01", "x"))
}
