package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/pep299/american-standard/internal/model"
)

// Topic is a trending subject found by DISCOVER. It is never persisted.
type Topic struct {
	Title       string
	Description string
	Section     string
}

// Draft is the working article between DRAFT and ASSEMBLY. It keeps the
// topic it was written from; Assemble drops it.
type Draft struct {
	TopicIndex      int
	Topic           Topic
	Headline        string
	Subheadline     string
	LeadParagraph   string
	Body            string
	SectionLabel    string
	WhatItMeans     string
	IsLead          bool
	FeaturedImage   *model.FeaturedImage
	MediaWatch      []model.MediaCheck
	ViralVideos     []model.ViralVideo
	RelatedArticles []model.RelatedLink
	XReactions      []model.XReaction
}

// Enrichment limits
const (
	maxReactions   = 5
	maxVideos      = 3
	maxRelated     = 5
	maxMediaChecks = 3
	maxQuotedPosts = 3
)

var (
	errNoTopics   = errors.New("model returned no usable topics")
	errEmptyDraft = errors.New("draft is missing a headline or body")
	errNoDrafts   = errors.New("no articles could be drafted")
)

// Raw model shapes. Everything below is parsed loosely and then validated
// into model types; nothing here is trusted past the mapping functions.

type rawTopics struct {
	Topics []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Section     string `json:"section"`
	} `json:"topics"`
}

type rawDraft struct {
	Headline        string        `json:"headline"`
	Subheadline     *string       `json:"subheadline"`
	LeadParagraph   string        `json:"leadParagraph"`
	Body            string        `json:"body"`
	Section         string        `json:"section"`
	WhatItMeans     string        `json:"whatItMeans"`
	FeaturedImage   *rawImage     `json:"featuredImage"`
	ViralVideos     []rawVideo    `json:"viralVideos"`
	RelatedArticles []rawRelated  `json:"relatedArticles"`
	XReactions      []rawReaction `json:"xReactions"`
}

type rawImage struct {
	ImageURL     string `json:"imageUrl"`
	Description  string `json:"description"`
	SourceURL    string `json:"sourceUrl"`
	SourceHandle string `json:"sourceHandle"`
}

type rawVideo struct {
	URL         string `json:"url"`
	Platform    string `json:"platform"`
	Description string `json:"description"`
	PostedBy    string `json:"postedBy"`
}

type rawRelated struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

type rawReaction struct {
	Handle      string     `json:"handle"`
	DisplayName string     `json:"displayName"`
	Quote       string     `json:"quote"`
	URL         string     `json:"url"`
	Verified    bool       `json:"verified"`
	Likes       flexString `json:"likes"`
	Reposts     flexString `json:"reposts"`
}

type rawChecks struct {
	Checks []struct {
		SourceName     string `json:"sourceName"`
		SourceURL      string `json:"sourceUrl"`
		ArticleTitle   string `json:"articleTitle"`
		Verdict        string `json:"verdict"`
		TheirNarrative string `json:"theirNarrative"`
		WhatTheyOmit   string `json:"whatTheyOmit"`
		XReality       string `json:"xReality"`
		XQuotes        []struct {
			Quote  string `json:"quote"`
			Handle string `json:"handle"`
		} `json:"xQuotes"`
	} `json:"checks"`
}

type rawReview struct {
	HeadlineFixes []struct {
		Index    int    `json:"index"`
		Headline string `json:"headline"`
	} `json:"headlineFixes"`
	Remove []int `json:"remove"`
}

type rawReactions struct {
	Reactions []rawReaction `json:"reactions"`
}

// flexString accepts a JSON string or number ("12.5K" or 12500)
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (r rawTopics) validate(limit int) ([]Topic, error) {
	topics := make([]Topic, 0, len(r.Topics))
	for _, t := range r.Topics {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			continue
		}
		topics = append(topics, Topic{
			Title:       title,
			Description: strings.TrimSpace(t.Description),
			Section:     strings.TrimSpace(t.Section),
		})
		if len(topics) == limit {
			break
		}
	}
	if len(topics) == 0 {
		return nil, errNoTopics
	}
	return topics, nil
}

func (r rawDraft) validate(index int, topic Topic) (*Draft, error) {
	headline := strings.TrimSpace(r.Headline)
	body := strings.TrimSpace(r.Body)
	if headline == "" || body == "" {
		return nil, errEmptyDraft
	}

	section := r.Section
	if strings.TrimSpace(section) == "" {
		section = topic.Section
	}

	d := &Draft{
		TopicIndex:      index,
		Topic:           topic,
		Headline:        headline,
		LeadParagraph:   strings.TrimSpace(r.LeadParagraph),
		Body:            body,
		SectionLabel:    section,
		WhatItMeans:     strings.TrimSpace(r.WhatItMeans),
		FeaturedImage:   r.FeaturedImage.validate(),
		ViralVideos:     validateVideos(r.ViralVideos),
		RelatedArticles: validateRelated(r.RelatedArticles),
		XReactions:      validateReactions(r.XReactions, false),
	}
	if r.Subheadline != nil {
		sub := strings.TrimSpace(*r.Subheadline)
		if sub != "" && !strings.EqualFold(sub, "null") {
			d.Subheadline = sub
		}
	}
	return d, nil
}

func (r *rawImage) validate() *model.FeaturedImage {
	if r == nil || !isHTTPURL(r.ImageURL) {
		return nil
	}
	img := &model.FeaturedImage{
		ImageURL:     strings.TrimSpace(r.ImageURL),
		Description:  strings.TrimSpace(r.Description),
		SourceHandle: model.NormalizeHandle(r.SourceHandle),
	}
	if isHTTPURL(r.SourceURL) {
		img.SourceURL = strings.TrimSpace(r.SourceURL)
	}
	return img
}

func validateVideos(raw []rawVideo) []model.ViralVideo {
	var videos []model.ViralVideo
	for _, v := range raw {
		if !isHTTPURL(v.URL) {
			continue
		}
		url := strings.TrimSpace(v.URL)
		videos = append(videos, model.ViralVideo{
			URL:         url,
			Platform:    model.ParsePlatform(v.Platform, url),
			Description: strings.TrimSpace(v.Description),
			PostedBy:    strings.TrimSpace(v.PostedBy),
		})
		if len(videos) == maxVideos {
			break
		}
	}
	return videos
}

func validateRelated(raw []rawRelated) []model.RelatedLink {
	var links []model.RelatedLink
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" || !isHTTPURL(r.URL) {
			continue
		}
		links = append(links, model.RelatedLink{
			Title:  title,
			URL:    strings.TrimSpace(r.URL),
			Source: strings.TrimSpace(r.Source),
		})
		if len(links) == maxRelated {
			break
		}
	}
	return links
}

// validateReactions drops entries without a handle or quote and repeated
// handles. forceVerified marks every kept reaction as verified.
func validateReactions(raw []rawReaction, forceVerified bool) []model.XReaction {
	var reactions []model.XReaction
	seen := make(map[string]bool)
	for _, r := range raw {
		handle := model.NormalizeHandle(r.Handle)
		quote := strings.TrimSpace(r.Quote)
		if handle == "" || quote == "" || seen[strings.ToLower(handle)] {
			continue
		}
		seen[strings.ToLower(handle)] = true

		reaction := model.XReaction{
			Handle:      handle,
			DisplayName: strings.TrimSpace(r.DisplayName),
			Quote:       quote,
			Verified:    r.Verified || forceVerified,
			Likes:       strings.TrimSpace(string(r.Likes)),
			Reposts:     strings.TrimSpace(string(r.Reposts)),
		}
		if isHTTPURL(r.URL) {
			reaction.URL = strings.TrimSpace(r.URL)
		}
		reactions = append(reactions, reaction)
		if len(reactions) == maxReactions {
			break
		}
	}
	return reactions
}

func (r rawChecks) validate() []model.MediaCheck {
	var checks []model.MediaCheck
	for _, c := range r.Checks {
		name := strings.TrimSpace(c.SourceName)
		if name == "" {
			continue
		}
		check := model.MediaCheck{
			SourceName:     name,
			ArticleTitle:   strings.TrimSpace(c.ArticleTitle),
			Verdict:        model.ParseVerdict(c.Verdict),
			TheirNarrative: strings.TrimSpace(c.TheirNarrative),
			WhatTheyOmit:   strings.TrimSpace(c.WhatTheyOmit),
			XReality:       strings.TrimSpace(c.XReality),
		}
		if isHTTPURL(c.SourceURL) {
			check.SourceURL = strings.TrimSpace(c.SourceURL)
		}
		for _, q := range c.XQuotes {
			quote := strings.TrimSpace(q.Quote)
			handle := model.NormalizeHandle(q.Handle)
			if quote == "" || handle == "" {
				continue
			}
			check.XQuotes = append(check.XQuotes, model.QuotedPost{Quote: quote, Handle: handle})
			if len(check.XQuotes) == maxQuotedPosts {
				break
			}
		}
		checks = append(checks, check)
		if len(checks) == maxMediaChecks {
			break
		}
	}
	return checks
}

func isHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}
