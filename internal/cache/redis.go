// Package cache provides a Redis fast path over the processed-game history.
// The database remains the source of truth; Redis only saves a round trip
// when several runs share a host, and the pipeline runs unchanged without it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GameIDCache mirrors the processed gameId set per season.
type GameIDCache struct {
	client *redis.Client
}

// NewGameIDCache creates a new Redis-backed cache connection.
func NewGameIDCache(addr, password string, db int) (*GameIDCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &GameIDCache{client: client}, nil
}

// Close closes the Redis connection.
func (c *GameIDCache) Close() error {
	return c.client.Close()
}

func seasonKey(season int) string {
	return fmt.Sprintf("processed_games:%d", season)
}

// SeenIDs returns the cached gameId set for a season. An empty result is
// normal on a cold cache and simply means the caller falls back to the
// database.
func (c *GameIDCache) SeenIDs(ctx context.Context, season int) ([]string, error) {
	return c.client.SMembers(ctx, seasonKey(season)).Result()
}

// AddIDs appends newly processed gameIds to the season set.
func (c *GameIDCache) AddIDs(ctx context.Context, season int, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return c.client.SAdd(ctx, seasonKey(season), members...).Err()
}

// Clear drops the cached set for a season, used by full rebuilds.
func (c *GameIDCache) Clear(ctx context.Context, season int) error {
	return c.client.Del(ctx, seasonKey(season)).Err()
}
