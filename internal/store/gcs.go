package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/pep299/american-standard/internal/config"
)

// GCSStore keeps one JSON object per key in a Cloud Storage bucket
type GCSStore struct {
	client     *storage.Client
	bucketName string
	prefix     string
}

// NewGCSStoreFromConfig creates a client from EDITION_BUCKET, EDITION_PREFIX
// and the optional credentials file.
func NewGCSStoreFromConfig(ctx context.Context, cfg *config.Config) (*GCSStore, error) {
	var opts []option.ClientOption
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return NewGCSStore(client, cfg.EditionBucket, cfg.EditionPrefix), nil
}

// NewGCSStore wraps an existing client
func NewGCSStore(client *storage.Client, bucketName, prefix string) *GCSStore {
	return &GCSStore{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
	}
}

// objectName maps a store key to its object, e.g. kv/edition:2025-06-01.json
func (s *GCSStore) objectName(key string) string {
	return s.prefix + key + ".json"
}

func (s *GCSStore) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucketName).Object(s.objectName(key))
}

func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening object reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object data: %w", err)
	}
	return data, nil
}

func (s *GCSStore) Set(ctx context.Context, key string, value []byte) error {
	writer := s.object(key).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(value); err != nil {
		writer.Close()
		return fmt.Errorf("writing object data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing object writer: %w", err)
	}
	return nil
}

func (s *GCSStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading object attrs: %w", err)
	}
	return true, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := s.object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) Name() string { return "gcs" }
