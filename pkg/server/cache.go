package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zhafed/richie/pkg/types"
)

type localEntry struct {
	expires time.Time
	data    []byte
}

// Cache fronts redis with a small in-process layer so repeated identical
// queries do not pay the round trip.
type Cache struct {
	Addr     string
	Password string
	DB       int
	client   *redis.Client
	ctx      context.Context
	mu       sync.Mutex
	memCache map[string]localEntry
}

func NewCache(addr, password string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{
		Addr:     addr,
		Password: password,
		DB:       db,
		client:   rdb,
		ctx:      context.Background(),
		memCache: make(map[string]localEntry),
	}
}

const localCacheTTL = time.Minute

func (c *Cache) getLocal(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, found := c.memCache[key]
	if !found {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		delete(c.memCache, key)
		return nil, false
	}
	return entry.data, true
}

func (c *Cache) setLocal(key string, data []byte, expiration time.Duration) {
	if expiration > localCacheTTL {
		expiration = localCacheTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memCache[key] = localEntry{expires: time.Now().Add(expiration), data: data}
}

func (c *Cache) Get(key string, out any) error {
	if data, found := c.getLocal(key); found {
		return json.Unmarshal(data, out)
	}
	data, err := c.client.Get(c.ctx, key).Bytes()
	if err != nil {
		// A plain miss is not an upstream failure.
		if errors.Is(err, redis.Nil) {
			return err
		}
		return &types.UpstreamUnavailable{Op: "cache get", Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	c.setLocal(key, data, localCacheTTL)
	return nil
}

func (c *Cache) Set(key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.setLocal(key, data, expiration)
	if err := c.client.Set(c.ctx, key, data, expiration).Err(); err != nil {
		return &types.UpstreamUnavailable{Op: "cache set", Err: err}
	}
	return nil
}

func (c *Cache) Close() {
	c.client.Close()
}
