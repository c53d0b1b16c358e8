// Package rss renders an edition as an RSS 2.0 feed.
package rss

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pep299/american-standard/internal/model"
)

const (
	feedTitle       = "The American Standard"
	feedDescription = "Clear. Fair. American."

	// DublinCoreNS carries dc:creator; RSS <author> must be an email address
	DublinCoreNS = "http://purl.org/dc/elements/1.1/"
)

// Feed represents an RSS document
type Feed struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	DCNS    string   `xml:"xmlns:dc,attr,omitempty"`
	Channel Channel  `xml:"channel"`
}

// Channel is the single channel of the feed
type Channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	Language      string `xml:"language,omitempty"`
	LastBuildDate string `xml:"lastBuildDate,omitempty"`
	Items         []Item `xml:"item"`
}

// Item represents an RSS item
type Item struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Creator     string   `xml:"dc:creator,omitempty"`
	PubDate     string   `xml:"pubDate"`
	GUID        GUID     `xml:"guid"`
	Category    []string `xml:"category"`
}

// GUID is an item identifier; article ids are not permalinks
type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// FromEdition builds a feed with one item per article, lead story first.
// A nil edition yields an empty channel.
func FromEdition(edition *model.Edition, siteURL string) *Feed {
	siteURL = strings.TrimSuffix(siteURL, "/")
	feed := &Feed{
		Version: "2.0",
		DCNS:    DublinCoreNS,
		Channel: Channel{
			Title:       feedTitle,
			Link:        siteURL,
			Description: feedDescription,
			Language:    "en-us",
		},
	}
	if edition == nil {
		return feed
	}

	feed.Channel.LastBuildDate = formatDate(edition.GeneratedAt)

	ordered := make([]model.Article, 0, len(edition.Articles))
	for _, a := range edition.Articles {
		if a.IsLeadStory {
			ordered = append([]model.Article{a}, ordered...)
		} else {
			ordered = append(ordered, a)
		}
	}

	for _, a := range ordered {
		description := a.LeadParagraph
		if description == "" {
			description = a.Subheadline
		}
		feed.Channel.Items = append(feed.Channel.Items, Item{
			Title:       a.Headline,
			Link:        fmt.Sprintf("%s/edition/%s/%s", siteURL, edition.Date, a.ID),
			Description: description,
			Creator:     a.Byline,
			PubDate:     formatDate(a.PublishedAt),
			GUID:        GUID{Value: edition.Date + "/" + a.ID},
			Category:    []string{string(a.Section)},
		})
	}
	return feed
}

// Encode writes the feed with an XML header
func Encode(w io.Writer, feed *Feed) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing XML header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(feed); err != nil {
		return fmt.Errorf("encoding RSS feed: %w", err)
	}
	return enc.Flush()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC1123Z)
}
