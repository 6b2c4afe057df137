package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"watchstream/internal/market"
)

const keyPrefix = "stock:"

var _ market.LatestCache = (*Cache)(nil)

// Cache stores the newest price per symbol as JSON under stock:<TICKER>.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Dial connects and pings before returning.
func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return New(client, ttl), nil
}

func Key(symbol string) string {
	return keyPrefix + market.Canonical(symbol)
}

// GetLatest returns nil, nil on a miss.
func (c *Cache) GetLatest(ctx context.Context, symbol string) (*market.PricePoint, error) {
	raw, err := c.client.Get(ctx, Key(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var p market.PricePoint
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode cached price %s: %w", symbol, err)
	}
	return &p, nil
}

func (c *Cache) SetLatest(ctx context.Context, p market.PricePoint) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(p.Ticker), raw, c.ttl).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
