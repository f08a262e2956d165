package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/797Events/797Eventsapp-sub000/config"
	"github.com/797Events/797Eventsapp-sub000/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds read-mostly catalog data. Discount eligibility is never
// cached here.
type RedisCache struct {
	client    *redis.Client
	eventsTTL time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client, eventsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    client,
		eventsTTL: eventsTTL,
	}
}

func (c *RedisCache) GetEvents(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	ok, err := c.getJSON(ctx, eventsKey(), &events)
	if err != nil || !ok {
		return nil, err
	}
	return events, nil
}

func (c *RedisCache) SetEvents(ctx context.Context, events []domain.Event) error {
	return c.setJSON(ctx, eventsKey(), events)
}

func (c *RedisCache) GetPasses(ctx context.Context, eventID string) ([]domain.Pass, error) {
	var passes []domain.Pass
	ok, err := c.getJSON(ctx, passesKey(eventID), &passes)
	if err != nil || !ok {
		return nil, err
	}
	return passes, nil
}

func (c *RedisCache) SetPasses(ctx context.Context, eventID string, passes []domain.Pass) error {
	return c.setJSON(ctx, passesKey(eventID), passes)
}

// InvalidatePasses drops the cached pass list after inventory changes.
func (c *RedisCache) InvalidatePasses(ctx context.Context, eventID string) error {
	return c.client.Del(ctx, passesKey(eventID)).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.eventsTTL).Err()
}

func eventsKey() string {
	return "cache:events"
}

func passesKey(eventID string) string {
	return fmt.Sprintf("cache:event:%s:passes", eventID)
}
