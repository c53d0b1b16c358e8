package pipeline

import (
	"fmt"
	"strings"

	"github.com/pep299/american-standard/internal/model"
)

const newsroomSystemPrompt = `You are a newspaper editor for "The American Standard" with the tagline "Clear. Fair. American."
You find what Americans are actually talking about right now on X and in the news, and you report it in a traditional newspaper voice.
Use specific names, numbers, dates and places. Quote real X users by their @handle only when you found the post.
Always answer with valid JSON only.`

func sectionList() string {
	names := make([]string, len(model.Sections))
	for i, s := range model.Sections {
		names[i] = string(s)
	}
	return strings.Join(names, "|")
}

func discoverPrompt(today string, count int) string {
	return fmt.Sprintf(`Today is %s.

Search X, news and the web for the %d stories Americans are talking about most right now:
trending topics with high post counts, political controversies, scandals and investigations,
and stories that are making people angry, excited, worried or hopeful.

Rank them by engagement, most discussed first. Do not repeat a story.

Output as JSON:
{
  "topics": [
    {
      "title": "Short working title",
      "description": "Two or three sentences of context: who, what, and why people are reacting",
      "section": "%s"
    }
  ]
}`, today, count, sectionList())
}

func draftPrompt(topic Topic, lead bool, wordTarget string) string {
	var b strings.Builder

	if lead {
		b.WriteString("This is TODAY'S LEAD STORY, the top item on the front page. Give it the fullest reporting and the strongest headline.\n\n")
	}

	fmt.Fprintf(&b, "Write a newspaper article about this story.\n\nTopic: %s\nContext: %s\nSuggested section: %s\n\n",
		topic.Title, topic.Description, topic.Section)

	fmt.Fprintf(&b, `Requirements:
- %s words in the body, paragraphs separated by \n\n
- The facts first: names, dates, dollar amounts, locations
- Capture THE PUBLIC REACTION: what people on X are saying, and whether opinion is split
- Include real X reactions with @handles and, if you find any, viral videos about the story
- End with a short "what it means" explanation for ordinary readers

Output as JSON:
{
  "headline": "Headline",
  "subheadline": "Context about public sentiment or null",
  "leadParagraph": "80-100 words covering the story and how Americans are reacting",
  "body": "Article body",
  "section": "%s",
  "whatItMeans": "Two or three sentences",
  "featuredImage": {"imageUrl": "https://...", "description": "...", "sourceUrl": "https://...", "sourceHandle": "@handle"},
  "viralVideos": [{"url": "https://...", "platform": "youtube|x|tiktok|other", "description": "...", "postedBy": "@handle"}],
  "relatedArticles": [{"title": "...", "url": "https://...", "source": "Outlet"}],
  "xReactions": [{"handle": "@username", "displayName": "Name", "quote": "Their post", "url": "https://x.com/...", "verified": true, "likes": "12.5K", "reposts": "3.2K"}]
}
Omit featuredImage, viralVideos or relatedArticles when you found nothing real.`, wordTarget, sectionList())

	return b.String()
}

func factCheckPrompt(d *Draft) string {
	return fmt.Sprintf(`Find how major outlets covered this story and compare their coverage with what is being reported and posted on X.

Story: %s
Context: %s

For up to %d outlets, assess the coverage with exactly one verdict from:
"Misleading", "Missing Context", "Spin", "Omits Key Facts", "Narrative Push", "Fair Coverage".

Output as JSON:
{
  "checks": [
    {
      "sourceName": "Outlet",
      "sourceUrl": "https://...",
      "articleTitle": "Their headline",
      "verdict": "Missing Context",
      "theirNarrative": "What they emphasized",
      "whatTheyOmit": "What they left out",
      "xReality": "What people on X are pointing out",
      "xQuotes": [{"quote": "...", "handle": "@username"}]
    }
  ]
}
Return {"checks": []} if you cannot find independent coverage.`, d.Headline, d.Topic.Description, maxMediaChecks)
}

func reviewPrompt(drafts []*Draft) string {
	var b strings.Builder
	b.WriteString(`You are the copy chief doing a final pass on today's front page. Headlines are listed by index.

1. Where several headlines reuse the same phrasing or structure, rewrite the weaker ones.
2. Where two entries cover the same story, or an entry is too thin to run, mark it for removal.
Change as little as possible.

Headlines:
`)
	for i, d := range drafts {
		fmt.Fprintf(&b, "%d. %s [%s]\n", i, d.Headline, d.SectionLabel)
	}
	b.WriteString(`
Output as JSON:
{
  "headlineFixes": [{"index": 0, "headline": "Replacement headline"}],
  "remove": [3]
}
Use empty arrays when nothing needs to change.`)
	return b.String()
}

func reactionsPrompt(headline, background string) string {
	return fmt.Sprintf(`Find 5 controversial X posts about this topic from 5 DIFFERENT VERIFIED users (blue checkmarks):

Topic: %s
Context: %s

Return JSON only:
{
  "reactions": [
    {
      "handle": "@username",
      "displayName": "Display Name",
      "quote": "Their controversial post",
      "url": "https://x.com/username/status/123",
      "verified": true,
      "likes": "12.5K",
      "reposts": "3.2K"
    }
  ]
}

Requirements:
- 5 DIFFERENT users, not the same person multiple times
- VERIFIED accounts only (blue checkmarks)
- Hot takes, controversial opinions, things that sparked debate
- Show different perspectives and the divide`, headline, background)
}
