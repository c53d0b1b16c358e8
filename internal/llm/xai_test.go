package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXAIClientComplete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","created":1,"model":"grok-3-latest",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"topics\":[]}"}}]}`))
	}))
	defer server.Close()

	client := NewXAIClient(XAIConfig{APIKey: "test-key", BaseURL: server.URL, Timeout: 5 * time.Second})
	text, err := client.Complete(context.Background(), Request{
		Messages:    []Message{System("be brief"), User("what's trending?")},
		MaxTokens:   16000,
		Temperature: 0.7,
		Search: &SearchOptions{
			Sources:         []string{SourceX, SourceNews, SourceWeb},
			MaxResults:      30,
			ReturnCitations: true,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"topics":[]}`, text)

	assert.Equal(t, DefaultXAIModel, body["model"])
	assert.Equal(t, float64(16000), body["max_tokens"])
	search, ok := body["search_parameters"].(map[string]any)
	require.True(t, ok, "search_parameters missing from %v", body)
	assert.Equal(t, "on", search["mode"])
	assert.Equal(t, float64(30), search["max_search_results"])
	assert.Equal(t, true, search["return_citations"])
	assert.Len(t, search["sources"], 3)
	assert.Len(t, body["messages"], 2)
}

func TestXAIClientPlainCallOmitsSearch(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer server.Close()

	client := NewXAIClient(XAIConfig{APIKey: "k", Model: "grok-3-mini", BaseURL: server.URL})
	text, err := client.Complete(context.Background(), Request{Messages: []Message{User("hi")}})
	require.NoError(t, err)
	assert.Empty(t, text, "no choices means empty content")
	assert.NotContains(t, body, "search_parameters")
	assert.Equal(t, "grok-3-mini", body["model"])
}

func TestXAIClientAPIError(t *testing.T) {
	long := strings.Repeat("x", 2000)
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"` + long + `"}`))
	}))
	defer server.Close()

	client := NewXAIClient(XAIConfig{APIKey: "k", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), Request{Messages: []Message{User("hi")}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.LessOrEqual(t, len(apiErr.Body), maxErrorBody)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retries")
}

func TestXAIClientMissingAPIKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewXAIClient(XAIConfig{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), Request{Messages: []Message{User("hi")}})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, atomic.LoadInt32(&calls), "no request without an API key")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"short", "abc", 5, "abc"},
		{"ascii", "abcdef", 3, "abc"},
		{"cut inside two-byte rune", "aé", 2, "a"},
		{"cut inside three-byte rune", "ab日本", 4, "ab"},
		{"cut on boundary", "ab日本", 5, "ab日"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := truncate(test.input, test.n)
			assert.Equal(t, test.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

type recordingObserver struct {
	provider, mode string
	err            error
}

func (r *recordingObserver) ObserveModelCall(provider, mode string, err error, _ time.Duration) {
	r.provider, r.mode, r.err = provider, mode, err
}

func TestObservedGateway(t *testing.T) {
	obs := &recordingObserver{}
	g := Observed(NewXAIClient(XAIConfig{}), "xai", obs)

	_, err := g.Complete(context.Background(), Request{Search: &SearchOptions{}})
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, "xai", obs.provider)
	assert.Equal(t, "search", obs.mode)
	assert.ErrorIs(t, obs.err, ErrMissingAPIKey)
}
