// Package redis caches predicate match results. Keys combine the predicate
// fingerprint with a flag-environment fingerprint, so a hit is only possible
// for the exact same canonical predicate and the exact same flag set.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	cfgpred "github.com/cfgpred/cfgpred-go"
)

// Config holds match cache configuration.
type Config struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// MatchCache stores match results in Redis.
type MatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchCache creates a match cache, applying defaults for unset fields.
func NewMatchCache(config Config) *MatchCache {
	if config.Addr == "" {
		config.Addr = "localhost:6379"
	}
	if config.TTL == 0 {
		config.TTL = 15 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return &MatchCache{client: client, ttl: config.TTL}
}

// Matches evaluates the predicate against the environment, consulting the
// cache first. Cache failures degrade to a plain evaluation: the returned
// result is always valid, and the error reports the cache problem.
func (c *MatchCache) Matches(ctx context.Context, p cfgpred.Predicate, env cfgpred.FlagEnv) (bool, error) {
	key := c.key(p, env)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return cached == "1", nil
	}

	result := p.Matches(env)
	if err != redis.Nil {
		return result, fmt.Errorf("cache lookup: %w", err)
	}

	value := "0"
	if result {
		value = "1"
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return result, fmt.Errorf("cache store: %w", err)
	}
	return result, nil
}

// Invalidate drops every cached result for the given predicate.
func (c *MatchCache) Invalidate(ctx context.Context, p cfgpred.Predicate) error {
	pattern := fmt.Sprintf("cfgpred:match:%s:*", cfgpred.Fingerprint(p))

	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache invalidate: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// HealthCheck pings the Redis server.
func (c *MatchCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (c *MatchCache) Close() error {
	return c.client.Close()
}

func (c *MatchCache) key(p cfgpred.Predicate, env cfgpred.FlagEnv) string {
	return fmt.Sprintf("cfgpred:match:%s:%s", cfgpred.Fingerprint(p), EnvFingerprint(env))
}

// EnvFingerprint returns a stable digest of a flag environment. Entry order
// is part of the identity, matching the environment's ordered definition.
func EnvFingerprint(env cfgpred.FlagEnv) string {
	h := sha256.New()
	for _, flag := range env {
		h.Write([]byte(flag.Key))
		if flag.Value != nil {
			h.Write([]byte{'='})
			h.Write([]byte(*flag.Value))
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
