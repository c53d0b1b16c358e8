package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/american-standard/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := NewClient("xoxb-test", "#newsroom", "https://standard.example/")
	client.baseURL = server.URL
	return client, server
}

func TestNewClient(t *testing.T) {
	client := NewClient("xoxb-test", "#newsroom", "https://standard.example/")

	require.NotNil(t, client)
	assert.Equal(t, "#newsroom", client.channel)
	assert.Equal(t, "https://standard.example", client.siteURL, "trailing slash trimmed")
	assert.NotNil(t, client.httpClient)
}

func TestEditionPublished(t *testing.T) {
	var got ChatPostMessageRequest
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	})
	defer server.Close()

	edition := &model.Edition{Date: "2025-06-01", Articles: []model.Article{
		{Headline: "Lead headline", IsLeadStory: true, Section: model.SectionNationalPolitics},
		{Headline: "Second headline", Section: model.SectionCulture},
	}}

	require.NoError(t, client.EditionPublished(context.Background(), edition))

	assert.Equal(t, "#newsroom", got.Channel)
	for _, want := range []string{"2025-06-01", "Lead headline", "Second headline", "https://standard.example/edition/2025-06-01"} {
		assert.Contains(t, got.Text, want)
	}
}

func TestGenerationFailed(t *testing.T) {
	var got ChatPostMessageRequest
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	})
	defer server.Close()

	require.NoError(t, client.GenerationFailed(context.Background(), "2025-06-02", "discovering topics: boom", "2025-06-01"))

	assert.Equal(t, "#newsroom", got.Channel)
	assert.Contains(t, got.Text, "discovering topics: boom")
	assert.Contains(t, got.Text, "2025-06-01 edition")
}

func TestGenerationFailedMessageWithoutFallback(t *testing.T) {
	client := NewClient("t", "#c", "")

	assert.Contains(t, client.formatFailed("2025-06-02", "boom", ""), "No previous edition")
}

func TestSlackAPIError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	})
	defer server.Close()

	err := client.SendSimpleMessage(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestSlackHTTPError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	assert.Error(t, client.SendSimpleMessage(context.Background(), "hello"))
}
