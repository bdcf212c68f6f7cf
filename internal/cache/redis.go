package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/roombooking/config"
	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache caches room listings. Entries are keyed by a generation number so that
// invalidation is a single INCR instead of a key scan.
type RedisCache struct {
	client   redis.UniversalClient
	roomsTTL time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client redis.UniversalClient, roomsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, roomsTTL: roomsTTL}
}

type cachedRoom struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Capacity   int       `json:"capacity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GetRooms returns nil rooms on a miss together with the generation the miss was
// observed at. Pass that generation to SetRooms so a listing loaded before an
// invalidation is never stored under the newer generation.
func (c *RedisCache) GetRooms(ctx context.Context, query string) ([]domain.Room, int64, error) {
	gen, err := c.roomsGeneration(ctx)
	if err != nil {
		return nil, 0, err
	}
	data, err := c.client.Get(ctx, roomsKey(gen, query)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, nil
		}
		return nil, gen, err
	}

	var cached []cachedRoom
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, gen, err
	}
	rooms := make([]domain.Room, 0, len(cached))
	for _, r := range cached {
		rooms = append(rooms, domain.Room(r))
	}
	return rooms, gen, nil
}

func (c *RedisCache) SetRooms(ctx context.Context, gen int64, query string, rooms []domain.Room) error {
	cached := make([]cachedRoom, 0, len(rooms))
	for _, r := range rooms {
		cached = append(cached, cachedRoom(r))
	}
	payload, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, roomsKey(gen, query), payload, c.roomsTTL).Err()
}

func (c *RedisCache) InvalidateRooms(ctx context.Context) error {
	return c.client.Incr(ctx, roomsGenerationKey()).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) roomsGeneration(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, roomsGenerationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	return gen, nil
}

func roomsGenerationKey() string {
	return "cache:rooms:gen"
}

func roomsKey(gen int64, query string) string {
	return fmt.Sprintf("cache:rooms:%d:%s", gen, query)
}
