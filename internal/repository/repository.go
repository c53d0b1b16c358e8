// Package repository persists editions and maintains the latest pointer and
// the archive index on top of a store.Store.
//
// Every operation logs and swallows storage failures: callers see nil, false
// or an empty slice and must treat absence and failure the same way.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/logging"
	"github.com/pep299/american-standard/internal/model"
	"github.com/pep299/american-standard/internal/store"
)

const (
	LatestKey = "edition:latest"
	IndexKey  = "editions:index"

	// MaxIndexEntries bounds the archive index
	MaxIndexEntries = 365
)

// Repository reads and writes editions
type Repository struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Repository
type Option func(*Repository)

// WithClock overrides the clock used to resolve today's date
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a repository over s
func New(s store.Store, logger *zap.Logger, opts ...Option) *Repository {
	r := &Repository{
		store:  s,
		logger: logging.OrNop(logger).Named("repository"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StoreName reports the backend label
func (r *Repository) StoreName() string {
	return r.store.Name()
}

// GetEdition returns the edition for date, or nil
func (r *Repository) GetEdition(ctx context.Context, date string) *model.Edition {
	var edition model.Edition
	if err := store.GetJSON(ctx, r.store, model.EditionKey(date), &edition); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Error("fetching edition", zap.String("date", date), zap.Error(err))
		}
		return nil
	}
	return &edition
}

// GetTodayEdition returns today's edition, else the latest one
func (r *Repository) GetTodayEdition(ctx context.Context) *model.Edition {
	if edition := r.GetEdition(ctx, r.Today()); edition != nil {
		return edition
	}
	return r.GetLatestEdition(ctx)
}

// GetLatestEdition resolves the latest pointer and fetches that edition
func (r *Repository) GetLatestEdition(ctx context.Context) *model.Edition {
	date := r.latestDate(ctx)
	if date == "" {
		return nil
	}
	return r.GetEdition(ctx, date)
}

// GetArticle returns the edition for date and the article with id inside it.
// Both are nil when either is missing.
func (r *Repository) GetArticle(ctx context.Context, date, articleID string) (*model.Edition, *model.Article) {
	edition := r.GetEdition(ctx, date)
	if edition == nil {
		return nil, nil
	}
	article := edition.FindArticle(articleID)
	if article == nil {
		return nil, nil
	}
	return edition, article
}

// SaveEdition writes the edition, moves the latest pointer and upserts the
// index entry. The three writes are not atomic; a failure part way leaves the
// earlier writes in place.
func (r *Repository) SaveEdition(ctx context.Context, edition *model.Edition) bool {
	logger := r.logger.With(zap.String("date", edition.Date))

	if err := store.SetJSON(ctx, r.store, model.EditionKey(edition.Date), edition); err != nil {
		logger.Error("saving edition", zap.Error(err))
		return false
	}
	if err := store.SetJSON(ctx, r.store, LatestKey, edition.Date); err != nil {
		logger.Error("updating latest pointer", zap.Error(err))
		return false
	}
	if err := r.upsertIndex(ctx, edition.Summary()); err != nil {
		logger.Error("updating editions index", zap.Error(err))
		return false
	}

	logger.Info("edition saved",
		zap.Int("articles", len(edition.Articles)),
		zap.String("store", r.store.Name()))
	return true
}

func (r *Repository) upsertIndex(ctx context.Context, summary model.EditionSummary) error {
	index, err := r.readIndex(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range index {
		if index[i].Date == summary.Date {
			index[i] = summary
			replaced = true
			break
		}
	}
	if !replaced {
		index = append([]model.EditionSummary{summary}, index...)
	}
	if len(index) > MaxIndexEntries {
		index = index[:MaxIndexEntries]
	}

	return store.SetJSON(ctx, r.store, IndexKey, index)
}

// readIndex treats a missing index as empty
func (r *Repository) readIndex(ctx context.Context) ([]model.EditionSummary, error) {
	var index []model.EditionSummary
	err := store.GetJSON(ctx, r.store, IndexKey, &index)
	if errors.Is(err, store.ErrNotFound) {
		return []model.EditionSummary{}, nil
	}
	return index, err
}

func (r *Repository) latestDate(ctx context.Context) string {
	var date string
	if err := store.GetJSON(ctx, r.store, LatestKey, &date); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Error("fetching latest pointer", zap.Error(err))
		}
		return ""
	}
	return date
}

// EditionExists reports whether an edition is stored for date
func (r *Repository) EditionExists(ctx context.Context, date string) bool {
	exists, err := r.store.Exists(ctx, model.EditionKey(date))
	if err != nil {
		r.logger.Error("checking edition existence", zap.String("date", date), zap.Error(err))
		return false
	}
	return exists
}

// GetEditionsSummary returns the archive index, most recent first
func (r *Repository) GetEditionsSummary(ctx context.Context) []model.EditionSummary {
	index, err := r.readIndex(ctx)
	if err != nil {
		r.logger.Error("fetching editions index", zap.Error(err))
		return []model.EditionSummary{}
	}
	return index
}

// DeleteEdition removes the edition and its index entry. When it was the
// latest, the pointer moves to the new head of the index, or is cleared when
// the index is empty.
func (r *Repository) DeleteEdition(ctx context.Context, date string) bool {
	logger := r.logger.With(zap.String("date", date))

	if err := r.store.Delete(ctx, model.EditionKey(date)); err != nil {
		logger.Error("deleting edition", zap.Error(err))
		return false
	}

	index, err := r.readIndex(ctx)
	if err != nil {
		logger.Error("fetching editions index", zap.Error(err))
		return false
	}
	filtered := make([]model.EditionSummary, 0, len(index))
	for _, summary := range index {
		if summary.Date != date {
			filtered = append(filtered, summary)
		}
	}
	if err := store.SetJSON(ctx, r.store, IndexKey, filtered); err != nil {
		logger.Error("updating editions index", zap.Error(err))
		return false
	}

	if r.latestDate(ctx) == date {
		if len(filtered) > 0 {
			err = store.SetJSON(ctx, r.store, LatestKey, filtered[0].Date)
		} else {
			err = r.store.Delete(ctx, LatestKey)
		}
		if err != nil {
			logger.Error("repointing latest edition", zap.Error(err))
			return false
		}
	}

	logger.Info("edition deleted")
	return true
}

// DeleteArticle removes one article and re-saves the edition. If no remaining
// article is the lead story, the first remaining one is promoted.
func (r *Repository) DeleteArticle(ctx context.Context, date, articleID string) bool {
	edition := r.GetEdition(ctx, date)
	if edition == nil {
		return false
	}

	remaining := make([]model.Article, 0, len(edition.Articles))
	for _, article := range edition.Articles {
		if article.ID != articleID {
			remaining = append(remaining, article)
		}
	}
	if len(remaining) == len(edition.Articles) {
		return false
	}

	edition.Articles = remaining
	edition.EnsureLead()

	if !r.SaveEdition(ctx, edition) {
		return false
	}
	r.logger.Info("article deleted", zap.String("date", date), zap.String("article_id", articleID))
	return true
}

// Today returns the current UTC date key
func (r *Repository) Today() string {
	return model.TodayDate(r.now())
}
