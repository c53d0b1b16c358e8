// Package model defines the persisted edition documents and the closed
// vocabularies model output is validated against.
package model

import (
	"strings"
	"time"
)

// SchemaVersion is stamped on every saved edition
const SchemaVersion = 1

// Byline is attached to every generated article
const Byline = "The American Standard Staff"

// DateLayout is the edition key format (UTC calendar date)
const DateLayout = "2006-01-02"

// Edition is the complete set of articles published for one date
type Edition struct {
	Date        string    `json:"date"`
	PublishedAt time.Time `json:"publishedAt"`
	Articles    []Article `json:"articles"`
	GeneratedAt time.Time `json:"generatedAt"`
	Version     int       `json:"version"`
}

// Article is one generated news item
type Article struct {
	ID              string         `json:"id"`
	Headline        string         `json:"headline"`
	Subheadline     string         `json:"subheadline,omitempty"`
	LeadParagraph   string         `json:"leadParagraph"`
	Body            string         `json:"body"`
	Section         Section        `json:"section"`
	Byline          string         `json:"byline"`
	PublishedAt     time.Time      `json:"publishedAt"`
	IsLeadStory     bool           `json:"isLeadStory"`
	WordCount       int            `json:"wordCount"`
	WhatItMeans     string         `json:"whatItMeans,omitempty"`
	FeaturedImage   *FeaturedImage `json:"featuredImage,omitempty"`
	MediaWatch      []MediaCheck   `json:"mediaWatch,omitempty"`
	ViralVideos     []ViralVideo   `json:"viralVideos,omitempty"`
	RelatedArticles []RelatedLink  `json:"relatedArticles,omitempty"`
	XReactions      []XReaction    `json:"xReactions,omitempty"`
}

// EditionSummary is the archive index projection of an edition
type EditionSummary struct {
	Date         string `json:"date"`
	ArticleCount int    `json:"articleCount"`
	LeadHeadline string `json:"leadHeadline"`
}

// FeaturedImage references an image found alongside the story
type FeaturedImage struct {
	ImageURL     string `json:"imageUrl"`
	Description  string `json:"description,omitempty"`
	SourceURL    string `json:"sourceUrl,omitempty"`
	SourceHandle string `json:"sourceHandle,omitempty"`
}

// MediaCheck compares another outlet's coverage of the story
type MediaCheck struct {
	SourceName     string       `json:"sourceName"`
	SourceURL      string       `json:"sourceUrl,omitempty"`
	ArticleTitle   string       `json:"articleTitle,omitempty"`
	Verdict        Verdict      `json:"verdict"`
	TheirNarrative string       `json:"theirNarrative,omitempty"`
	WhatTheyOmit   string       `json:"whatTheyOmit,omitempty"`
	XReality       string       `json:"xReality,omitempty"`
	XQuotes        []QuotedPost `json:"xQuotes,omitempty"`
}

// QuotedPost is a short social post quoted inside a media check
type QuotedPost struct {
	Quote  string `json:"quote"`
	Handle string `json:"handle"`
}

// ViralVideo references a video circulating about the story
type ViralVideo struct {
	URL         string   `json:"url"`
	Platform    Platform `json:"platform"`
	Description string   `json:"description,omitempty"`
	PostedBy    string   `json:"postedBy,omitempty"`
}

// RelatedLink points at outside coverage of the story
type RelatedLink struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source,omitempty"`
}

// XReaction is a social reaction quoted under the article
type XReaction struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName,omitempty"`
	Quote       string `json:"quote"`
	URL         string `json:"url,omitempty"`
	Verified    bool   `json:"verified"`
	Likes       string `json:"likes,omitempty"`
	Reposts     string `json:"reposts,omitempty"`
}

// NewEdition stamps a fresh edition for date
func NewEdition(date string, articles []Article, now time.Time) *Edition {
	now = now.UTC()
	return &Edition{
		Date:        date,
		PublishedAt: now,
		Articles:    articles,
		GeneratedAt: now,
		Version:     SchemaVersion,
	}
}

// LeadArticle returns the flagged lead story, or nil
func (e *Edition) LeadArticle() *Article {
	for i := range e.Articles {
		if e.Articles[i].IsLeadStory {
			return &e.Articles[i]
		}
	}
	return nil
}

// FindArticle returns the article with id, or nil
func (e *Edition) FindArticle(id string) *Article {
	for i := range e.Articles {
		if e.Articles[i].ID == id {
			return &e.Articles[i]
		}
	}
	return nil
}

// EnsureLead clears every lead flag but the first one set, and promotes the
// first article when none is set. It reports whether anything changed.
func (e *Edition) EnsureLead() bool {
	changed := false
	seen := false
	for i := range e.Articles {
		if e.Articles[i].IsLeadStory {
			if seen {
				e.Articles[i].IsLeadStory = false
				changed = true
			}
			seen = true
		}
	}
	if !seen && len(e.Articles) > 0 {
		e.Articles[0].IsLeadStory = true
		changed = true
	}
	return changed
}

// Summary projects the edition for the archive index
func (e *Edition) Summary() EditionSummary {
	headline := "No headline"
	if lead := e.LeadArticle(); lead != nil {
		headline = lead.Headline
	} else if len(e.Articles) > 0 {
		headline = e.Articles[0].Headline
	}
	return EditionSummary{
		Date:         e.Date,
		ArticleCount: len(e.Articles),
		LeadHeadline: headline,
	}
}

// EditionKey returns the store key for a date
func EditionKey(date string) string {
	return "edition:" + date
}

// TodayDate returns now's UTC calendar date
func TodayDate(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// ValidDate reports whether s is a YYYY-MM-DD date
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// CountWords counts whitespace-delimited tokens
func CountWords(text string) int {
	return len(strings.Fields(text))
}
