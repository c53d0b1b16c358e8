package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pep299/american-standard/internal/model"
)

const defaultBaseURL = "https://slack.com/api"

// Client posts newsroom notifications to Slack
type Client struct {
	botToken   string
	channel    string
	siteURL    string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Slack client
func NewClient(botToken, channel, siteURL string) *Client {
	return &Client{
		botToken: botToken,
		channel:  channel,
		siteURL:  strings.TrimSuffix(siteURL, "/"),
		baseURL:  defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ChatPostMessageRequest represents a Slack chat.postMessage request
type ChatPostMessageRequest struct {
	Channel   string `json:"channel"`
	Text      string `json:"text"`
	Username  string `json:"username,omitempty"`
	IconEmoji string `json:"icon_emoji,omitempty"`
}

// EditionPublished announces a freshly generated edition
func (c *Client) EditionPublished(ctx context.Context, edition *model.Edition) error {
	return c.sendMessage(ctx, c.formatPublished(edition), c.channel)
}

// GenerationFailed reports a failed generation and what readers see instead
func (c *Client) GenerationFailed(ctx context.Context, date, reason, fallbackDate string) error {
	return c.SendSimpleMessage(ctx, c.formatFailed(date, reason, fallbackDate))
}

func (c *Client) formatPublished(edition *model.Edition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗞️ *Edition for %s is live* (%d articles)\n", edition.Date, len(edition.Articles))

	if lead := edition.LeadArticle(); lead != nil {
		fmt.Fprintf(&b, "\n*%s*\n", lead.Headline)
	}
	for _, a := range edition.Articles {
		if a.IsLeadStory {
			continue
		}
		fmt.Fprintf(&b, "• %s _(%s)_\n", a.Headline, a.Section)
	}
	if c.siteURL != "" {
		fmt.Fprintf(&b, "\n🔗 %s/edition/%s", c.siteURL, edition.Date)
	}
	return b.String()
}

func (c *Client) formatFailed(date, reason, fallbackDate string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *Edition generation failed for %s*\n\n", date)
	fmt.Fprintf(&b, "Reason: %s\n", reason)
	if fallbackDate != "" {
		fmt.Fprintf(&b, "Readers are seeing the %s edition.", fallbackDate)
	} else {
		b.WriteString("No previous edition is available.")
	}
	return b.String()
}

// sendMessage sends a message to the specified Slack channel
func (c *Client) sendMessage(ctx context.Context, text string, channel string) error {
	req := ChatPostMessageRequest{
		Channel:   channel,
		Text:      text,
		Username:  "The American Standard",
		IconEmoji: ":newspaper:",
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat.postMessage", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.botToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned status %d", resp.StatusCode)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&slackResp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if !slackResp.OK {
		return fmt.Errorf("slack API error: %s", slackResp.Error)
	}

	return nil
}

// SendSimpleMessage sends a simple text message to Slack
func (c *Client) SendSimpleMessage(ctx context.Context, text string) error {
	return c.sendMessage(ctx, text, c.channel)
}
