// Package store provides the key-value adapter editions are persisted through.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/config"
	"github.com/pep299/american-standard/internal/logging"
)

// Store is the minimal key-value contract the repository depends on.
// Values are opaque bytes; callers own serialization.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
	Name() string
}

// Common store errors
var (
	ErrNotFound = errors.New("key not found")
)

// New selects the backend once from configuration.
// Explicit STORE_BACKEND wins; otherwise hosted KV or REDIS_URL selects Redis,
// and the in-process map is the last resort.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	logger = logging.OrNop(logger)

	switch cfg.StoreBackend {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreGCS:
		return NewGCSStoreFromConfig(ctx, cfg)
	}

	if cfg.HostedKVConfigured() || cfg.RedisURL != "" {
		opts, err := RedisOptions(cfg)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(opts), nil
	}

	logger.Warn("no hosted store configured, editions will not survive a restart")
	return NewMemoryStore(), nil
}

// Configured reports whether a durable backend is configured.
func Configured(cfg *config.Config) bool {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return false
	case config.StoreGCS:
		return cfg.EditionBucket != ""
	}
	return cfg.HostedKVConfigured() || cfg.RedisURL != ""
}

// GetJSON reads key and decodes it into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
