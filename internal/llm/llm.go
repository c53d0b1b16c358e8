// Package llm issues chat-completion calls to the model providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// Role tags a message in a conversation
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged turn
type Message struct {
	Role    Role
	Content string
}

// Source types for live search
const (
	SourceX    = "x"
	SourceNews = "news"
	SourceWeb  = "web"
)

// SearchOptions turns on live search for a call
type SearchOptions struct {
	Sources         []string
	MaxResults      int
	ReturnCitations bool
}

// Request is a single completion call
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
	Search      *SearchOptions
}

// Mode labels the call for metrics and logs
func (r Request) Mode() string {
	if r.Search != nil {
		return "search"
	}
	return "plain"
}

// System and User build messages
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message   { return Message{Role: RoleUser, Content: content} }

// Gateway returns the text of the first choice, or "" when there is none.
// Implementations do not retry.
type Gateway interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Common gateway errors
var (
	ErrMissingAPIKey      = errors.New("model API key is not configured")
	ErrSearchNotSupported = errors.New("live search is not supported by this provider")
)

// maxErrorBody bounds the upstream body kept on APIError
const maxErrorBody = 500

// APIError is a non-success response from a provider
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Body)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Observer receives one observation per gateway call
type Observer interface {
	ObserveModelCall(provider, mode string, err error, elapsed time.Duration)
}

// Observed wraps a gateway so every call is reported to obs
func Observed(g Gateway, provider string, obs Observer) Gateway {
	if obs == nil {
		return g
	}
	return &observedGateway{next: g, provider: provider, obs: obs}
}

type observedGateway struct {
	next     Gateway
	provider string
	obs      Observer
}

func (o *observedGateway) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := o.next.Complete(ctx, req)
	o.obs.ObserveModelCall(o.provider, req.Mode(), err, time.Since(start))
	return text, err
}
