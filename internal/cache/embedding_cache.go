package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// EmbeddingCache memoizes query embeddings in redis, keyed by a hash of the
// normalized query, so repeated questions skip an embedding call.
type EmbeddingCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewEmbeddingCache(client *redisv9.Client, ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &EmbeddingCache{client: client, ttl: ttl}
}

func (c *EmbeddingCache) Get(ctx context.Context, normalizedQuery string) ([]float32, bool, error) {
	raw, err := c.client.Get(ctx, c.key(normalizedQuery)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get embedding failed: %w", err)
	}

	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached embedding failed: %w", err)
	}
	return vec, true, nil
}

func (c *EmbeddingCache) Set(ctx context.Context, normalizedQuery string, vec []float32) error {
	payload, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("marshal embedding cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(normalizedQuery), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set embedding failed: %w", err)
	}
	return nil
}

func (c *EmbeddingCache) key(normalizedQuery string) string {
	sum := sha256.Sum256([]byte(normalizedQuery))
	return "chat:embedding:" + hex.EncodeToString(sum[:])
}
