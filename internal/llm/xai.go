package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultXAIBaseURL = "https://api.x.ai/v1"
	DefaultXAIModel   = "grok-3-latest"
)

// XAIConfig configures the xAI client
type XAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// XAIClient talks to the OpenAI-compatible xAI endpoint
type XAIClient struct {
	client openai.Client
	apiKey string
	model  string
}

// NewXAIClient creates a client. A missing key is reported on the first call.
func NewXAIClient(cfg XAIConfig) *XAIClient {
	if cfg.Model == "" {
		cfg.Model = DefaultXAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultXAIBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/") + "/"),
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &XAIClient{
		client: openai.NewClient(opts...),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

// Complete issues one chat completion
func (c *XAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	var reqOpts []option.RequestOption
	if req.Search != nil {
		reqOpts = append(reqOpts, option.WithJSONSet("search_parameters", searchParameters(req.Search)))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			body := apiErr.RawJSON()
			if body == "" {
				body = apiErr.Error()
			}
			return "", &APIError{Provider: "xai", StatusCode: apiErr.StatusCode, Body: truncate(body, maxErrorBody)}
		}
		return "", fmt.Errorf("xai request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// searchParameters renders the xAI live search block
func searchParameters(s *SearchOptions) map[string]any {
	sources := make([]map[string]string, 0, len(s.Sources))
	for _, source := range s.Sources {
		sources = append(sources, map[string]string{"type": source})
	}
	params := map[string]any{
		"mode":             "on",
		"sources":          sources,
		"return_citations": s.ReturnCitations,
	}
	if s.MaxResults > 0 {
		params["max_search_results"] = s.MaxResults
	}
	return params
}
