package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/foliokit/sage/pkg/knowledge"
	"github.com/redis/go-redis/v9"
)

// RedisCorpus holds the corpus as a Redis list of JSON records. List order
// is artifact order, so ranking stays deterministic across restarts.
type RedisCorpus struct {
	client *redis.Client
	key    string
}

// New creates a new RedisCorpus using the given list key.
func New(client *redis.Client, key string) *RedisCorpus {
	return &RedisCorpus{client: client, key: key}
}

// Fetch loads every corpus record from the list.
func (c *RedisCorpus) Fetch(ctx context.Context) ([]knowledge.Record, error) {
	items, err := c.client.LRange(ctx, c.key, 0, -1).Result()
	if err != nil {
		return nil, &knowledge.CorpusLoadError{Reason: fmt.Sprintf("cannot read corpus list %q", c.key), Err: err}
	}

	records := make([]knowledge.Record, len(items))
	for i, item := range items {
		if err := json.Unmarshal([]byte(item), &records[i]); err != nil {
			return nil, &knowledge.CorpusLoadError{Reason: fmt.Sprintf("malformed record at index %d", i), Err: err}
		}
	}

	return records, nil
}

// Store replaces the list with the given records.
func (c *RedisCorpus) Store(ctx context.Context, records []knowledge.Record) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key)
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal record %q: %w", rec.ID, err)
		}
		pipe.RPush(ctx, c.key, b)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store corpus list %q: %w", c.key, err)
	}
	return nil
}
