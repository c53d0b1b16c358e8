package rss

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/american-standard/internal/model"
)

func TestFromEdition(t *testing.T) {
	published := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	edition := &model.Edition{
		Date:        "2025-06-01",
		GeneratedAt: published,
		Articles: []model.Article{
			{ID: "article-1-0", Headline: "Second", LeadParagraph: "Lead two", Section: model.SectionCulture, PublishedAt: published},
			{ID: "article-1-1", Headline: "Top", Subheadline: "Sub", Byline: "Staff Writer", IsLeadStory: true, Section: model.SectionNationalPolitics, PublishedAt: published},
		},
	}

	feed := FromEdition(edition, "https://standard.example/")

	assert.Equal(t, "https://standard.example", feed.Channel.Link)
	require.Len(t, feed.Channel.Items, 2)

	lead := feed.Channel.Items[0]
	assert.Equal(t, "Top", lead.Title, "lead story first")
	assert.Equal(t, "Sub", lead.Description, "subheadline fallback description")
	assert.Equal(t, "https://standard.example/edition/2025-06-01/article-1-1", lead.Link)
	assert.Equal(t, "Sun, 01 Jun 2025 06:00:00 +0000", lead.PubDate)
	assert.Equal(t, "Staff Writer", lead.Creator)
}

func TestFromNilEdition(t *testing.T) {
	feed := FromEdition(nil, "https://standard.example")
	assert.Empty(t, feed.Channel.Items)
}

func TestEncode(t *testing.T) {
	edition := &model.Edition{
		Date:     "2025-06-01",
		Articles: []model.Article{{ID: "a", Headline: "Tariffs & <Trade>", Byline: "Staff Writer", IsLeadStory: true}},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FromEdition(edition, "https://standard.example")))

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("<?xml")), "XML header")
	assert.Contains(t, out, `<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">`)
	assert.Contains(t, out, "Tariffs &amp; &lt;Trade&gt;")

	var decoded Feed
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded), "output is well-formed")
	assert.Equal(t, "2025-06-01/a", decoded.Channel.Items[0].GUID.Value)
}

func TestBylineIsNotAnAuthorElement(t *testing.T) {
	edition := &model.Edition{
		Date:     "2025-06-01",
		Articles: []model.Article{{ID: "a", Headline: "H", Byline: "Staff Writer", IsLeadStory: true}},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FromEdition(edition, "https://standard.example")))

	assert.NotContains(t, buf.String(), "<author>")
	assert.Contains(t, buf.String(), "<dc:creator>Staff Writer</dc:creator>")
}
