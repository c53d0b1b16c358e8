package pipeline

import (
	"fmt"
	"time"

	"github.com/pep299/american-standard/internal/model"
)

// Assemble converts drafts into persisted articles. Ids are
// article-<unix ms>-<position>. Exactly one article carries the lead flag
// when the result is non-empty: the drafted lead if it survived, else the
// first article.
func Assemble(drafts []*Draft, now time.Time) []model.Article {
	now = now.UTC()
	stamp := now.UnixMilli()

	articles := make([]model.Article, 0, len(drafts))
	for i, d := range drafts {
		articles = append(articles, model.Article{
			ID:              fmt.Sprintf("article-%d-%d", stamp, i),
			Headline:        d.Headline,
			Subheadline:     d.Subheadline,
			LeadParagraph:   d.LeadParagraph,
			Body:            d.Body,
			Section:         model.ClassifySection(d.SectionLabel),
			Byline:          model.Byline,
			PublishedAt:     now,
			IsLeadStory:     d.IsLead,
			WordCount:       model.CountWords(d.LeadParagraph + " " + d.Body),
			WhatItMeans:     d.WhatItMeans,
			FeaturedImage:   d.FeaturedImage,
			MediaWatch:      d.MediaWatch,
			ViralVideos:     d.ViralVideos,
			RelatedArticles: d.RelatedArticles,
			XReactions:      d.XReactions,
		})
	}

	edition := model.Edition{Articles: articles}
	edition.EnsureLead()
	return edition.Articles
}
