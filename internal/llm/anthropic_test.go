package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicClientComplete(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ant-key", r.Header.Get("X-Api-Key"))
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-haiku-4-5",
			"content":[{"type":"text","text":"{\"remove\":[]}"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`))
	}))
	defer server.Close()

	client := NewAnthropicClient(AnthropicConfig{APIKey: "ant-key", BaseURL: server.URL})
	text, err := client.Complete(context.Background(), Request{
		Messages:    []Message{System("You are an editor."), User("Review these headlines")},
		MaxTokens:   2000,
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"remove":[]}`, text)

	assert.Len(t, body["system"], 1)
	assert.Len(t, body["messages"], 1, "system message is lifted out of messages")
	assert.Equal(t, float64(2000), body["max_tokens"])
}

func TestAnthropicClientErrors(t *testing.T) {
	client := NewAnthropicClient(AnthropicConfig{})
	_, err := client.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	client = NewAnthropicClient(AnthropicConfig{APIKey: "k"})
	_, err = client.Complete(context.Background(), Request{Search: &SearchOptions{Sources: []string{SourceX}}})
	assert.ErrorIs(t, err, ErrSearchNotSupported)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	client = NewAnthropicClient(AnthropicConfig{APIKey: "bad", BaseURL: server.URL})
	_, err = client.Complete(context.Background(), Request{Messages: []Message{User("hi")}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "anthropic", apiErr.Provider)
}
