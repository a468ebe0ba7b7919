package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/shopgen/internal/config"
	"github.com/andresuchdata/shopgen/internal/export"
)

const (
	manifestKeyPrefix  = "dataset:manifest:"
	defaultManifestTTL = time.Hour
	scanBatchSize      = 100
	pingTimeout        = 5 * time.Second
)

// ManifestCache keeps the latest manifest of every locale folder.
type ManifestCache interface {
	GetManifest(ctx context.Context, folder string) (*export.Manifest, bool, error)
	SetManifest(ctx context.Context, m *export.Manifest) error
	InvalidateAll(ctx context.Context) error
}

type redisManifestCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopManifestCache struct{}

// NewManifestCache connects to redis when caching is enabled and returns a no-op cache
// otherwise.
func NewManifestCache(cfg config.CacheConfig) (ManifestCache, error) {
	if !cfg.Enabled {
		return &noopManifestCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	return &redisManifestCache{client: client, ttl: manifestTTL(cfg)}, nil
}

// redisOptions prefers REDIS_URL and falls back to host, port and db.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func manifestTTL(cfg config.CacheConfig) time.Duration {
	if cfg.ManifestTTLSeconds <= 0 {
		return defaultManifestTTL
	}
	return time.Duration(cfg.ManifestTTLSeconds) * time.Second
}

func NewNoopManifestCache() ManifestCache {
	return &noopManifestCache{}
}

func manifestKey(folder string) string {
	return manifestKeyPrefix + folder
}

func (c *redisManifestCache) GetManifest(ctx context.Context, folder string) (*export.Manifest, bool, error) {
	payload, err := c.client.Get(ctx, manifestKey(folder)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	m, err := export.UnmarshalManifest(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode manifest cache: %w", err)
	}

	return m, true, nil
}

func (c *redisManifestCache) SetManifest(ctx context.Context, m *export.Manifest) error {
	payload, err := export.MarshalManifest(m)
	if err != nil {
		return fmt.Errorf("encode manifest cache: %w", err)
	}

	if err := c.client.Set(ctx, manifestKey(m.Folder), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// InvalidateAll drops every cached manifest, deleting in batches as the scan goes.
func (c *redisManifestCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, manifestKeyPrefix+"*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis delete failed: %w", err)
		}
	}
	return nil
}

func (n *noopManifestCache) GetManifest(ctx context.Context, folder string) (*export.Manifest, bool, error) {
	return nil, false, nil
}

func (n *noopManifestCache) SetManifest(ctx context.Context, m *export.Manifest) error {
	return nil
}

func (n *noopManifestCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// Sink stores every freshly exported manifest. A cache outage never fails the run.
type Sink struct {
	cache ManifestCache
	log   zerolog.Logger
}

func NewSink(cache ManifestCache, log zerolog.Logger) *Sink {
	return &Sink{cache: cache, log: log}
}

func (s *Sink) Name() string { return "manifest-cache" }

func (s *Sink) Consume(ctx context.Context, _ string, m *export.Manifest) error {
	if err := s.cache.SetManifest(ctx, m); err != nil {
		s.log.Warn().Err(err).Str("folder", m.Folder).Msg("failed to cache manifest")
	}
	return nil
}
