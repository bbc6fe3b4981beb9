// Package cache keeps the raw route database in Redis so a restart can skip the
// download. Arrival estimates are never cached here.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type RedisCache struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

func NewRedisCache(opts Options, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return newWithClient(client, opts.Prefix, logger), nil
}

func newWithClient(client redis.UniversalClient, prefix string, logger *slog.Logger) *RedisCache {
	if prefix == "" {
		prefix = "etaboard:"
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "redis_cache"),
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	c.logger.Debug("cache hit", "key", key, "size_bytes", len(val), "duration_ms", time.Since(start).Milliseconds())
	return val, nil
}

// LoadRouteDB returns the cached raw route database, or nil data on a miss.
func (c *RedisCache) LoadRouteDB(ctx context.Context) ([]byte, *RouteDBMeta, error) {
	rawMeta, err := c.get(ctx, KeyRouteDBMeta)
	if err != nil || rawMeta == nil {
		return nil, nil, err
	}
	var meta RouteDBMeta
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return nil, nil, fmt.Errorf("decode routedb meta: %w", err)
	}

	compressed, err := c.get(ctx, KeyRouteDBRaw)
	if err != nil || compressed == nil {
		return nil, nil, err
	}
	data, err := gzipDecompress(compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("decompress routedb: %w", err)
	}
	return data, &meta, nil
}

// StoreRouteDB writes the raw database and its metadata in one transaction.
func (c *RedisCache) StoreRouteDB(ctx context.Context, data []byte, meta RouteDBMeta, ttl time.Duration) error {
	compressed, err := gzipCompress(data)
	if err != nil {
		return fmt.Errorf("compress routedb: %w", err)
	}
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode routedb meta: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(KeyRouteDBRaw), compressed, ttl)
		pipe.Set(ctx, c.key(KeyRouteDBMeta), rawMeta, ttl)
		return nil
	})
	if err != nil {
		c.logger.Error("cache set failed", "key", KeyRouteDBRaw, "error", err)
		return fmt.Errorf("redis store routedb: %w", err)
	}
	c.logger.Debug("cached route database",
		"original_size", len(data),
		"compressed_size", len(compressed),
		"fingerprint", meta.Fingerprint,
		"ttl", ttl,
	)
	return nil
}

func (c *RedisCache) InvalidateRouteDB(ctx context.Context) error {
	return c.client.Del(ctx, c.key(KeyRouteDBRaw), c.key(KeyRouteDBMeta)).Err()
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}
