package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/pep299/american-standard/internal/config"
)

const hostedKVPort = "6379"

// RedisStore persists values in Redis or a Redis-compatible hosted KV.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects lazily; the first command dials.
func NewRedisStore(opts *redis.Options) *RedisStore {
	return &RedisStore{client: redis.NewClient(opts)}
}

// RedisOptions builds connection options. The hosted KV pair
// (KV_REST_API_URL + KV_REST_API_TOKEN) takes precedence over REDIS_URL.
func RedisOptions(cfg *config.Config) (*redis.Options, error) {
	if cfg.HostedKVConfigured() {
		return hostedKVOptions(cfg.KVRestAPIURL, cfg.KVRestAPIToken)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		// Accept a bare host:port as well
		if strings.Contains(cfg.RedisURL, "://") {
			return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
		}
		opts = &redis.Options{Addr: cfg.RedisURL}
	}
	return opts, nil
}

func hostedKVOptions(rawURL, token string) (*redis.Options, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("parsing KV_REST_API_URL %q: invalid host", rawURL)
	}
	return &redis.Options{
		Addr:      net.JoinHostPort(u.Hostname(), hostedKVPort),
		Username:  "default",
		Password:  token,
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: u.Hostname()},
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Name() string { return "redis" }
