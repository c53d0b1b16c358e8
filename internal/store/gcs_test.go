package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pep299/american-standard/internal/config"
)

func TestGCSObjectName(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"kv/", "edition:2025-06-01", "kv/edition:2025-06-01.json"},
		{"kv/", "edition:latest", "kv/edition:latest.json"},
		{"kv/", "editions:index", "kv/editions:index.json"},
		{"", "edition:latest", "edition:latest.json"},
		{"prod/kv/", "edition:2025-06-01", "prod/kv/edition:2025-06-01.json"},
	}

	s := NewGCSStore(nil, "editions", "")
	for _, test := range tests {
		s.prefix = test.prefix
		assert.Equal(t, test.want, s.objectName(test.key))
	}
}

// emptyBucket answers 404 for every object and records the request paths
type emptyBucket struct {
	mu    sync.Mutex
	paths []string
}

func (b *emptyBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.paths = append(b.paths, r.Method+" "+r.URL.Path)
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":{"code":404,"message":"No such object"}}`))
}

func newEmulatedGCSStore(t *testing.T) (*GCSStore, *emptyBucket) {
	t.Helper()
	bucket := &emptyBucket{}
	server := httptest.NewServer(bucket)
	t.Cleanup(server.Close)
	t.Setenv("STORAGE_EMULATOR_HOST", server.URL)

	s, err := New(context.Background(), &config.Config{
		StoreBackend:  config.StoreGCS,
		EditionBucket: "editions",
		EditionPrefix: "kv/",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	gcs, ok := s.(*GCSStore)
	require.True(t, ok, "expected *GCSStore, got %T", s)
	return gcs, bucket
}

func TestNewSelectsGCS(t *testing.T) {
	s, _ := newEmulatedGCSStore(t)

	assert.Equal(t, "gcs", s.Name())
	assert.Equal(t, "editions", s.bucketName)
	assert.Equal(t, "kv/", s.prefix)
	assert.True(t, Configured(&config.Config{StoreBackend: config.StoreGCS, EditionBucket: "editions"}))
	assert.False(t, Configured(&config.Config{StoreBackend: config.StoreGCS}))
}

func TestGCSStoreMissingObjects(t *testing.T) {
	s, bucket := newEmulatedGCSStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "edition:2025-06-01")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := s.Exists(ctx, "edition:2025-06-01")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, s.Delete(ctx, "edition:2025-06-01"), "deleting a missing object is not an error")

	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	require.NotEmpty(t, bucket.paths)
	for _, path := range bucket.paths {
		assert.True(t, strings.HasSuffix(path, "kv/edition:2025-06-01.json"), path)
	}
}
