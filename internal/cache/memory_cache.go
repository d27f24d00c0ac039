package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"go.uber.org/zap"
)

// Cache stores values by exact key for the lifetime of the process.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// InMemoryCache provides a simple thread-safe in-memory cache.
// A zero TTL keeps entries until the process exits.
type InMemoryCache struct {
	store  map[string]cacheItem
	mutex  sync.RWMutex
	ttl    time.Duration
	logger *zap.SugaredLogger
	stop   chan struct{}
	once   sync.Once
}

type cacheItem struct {
	value      interface{}
	expiration int64 // 0 means never
}

// Option configures an InMemoryCache.
type Option func(*InMemoryCache)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *InMemoryCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewInMemoryCache creates a new in-memory cache with a default TTL.
// When ttl is positive a background loop drops expired entries until Close.
func NewInMemoryCache(ttl time.Duration, opts ...Option) *InMemoryCache {
	c := &InMemoryCache{
		store:  make(map[string]cacheItem),
		ttl:    ttl,
		logger: zap.NewNop().Sugar(),
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if ttl > 0 {
		go c.cleanupLoop(cleanupInterval(ttl))
	}
	return c
}

// Get retrieves an item from the cache.
func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	if err := errbuilder.WrapIfContextDone(ctx, nil); err != nil {
		return nil, err
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, found := c.store[key]
	if !found {
		return nil, errbuilder.NotFoundErr(errbuilder.GenericErr("cache item not found", nil))
	}

	if item.expiration != 0 && time.Now().UnixNano() > item.expiration {
		c.logger.Debugw("cache item expired", "key_len", len(key))
		return nil, errbuilder.NotFoundErr(errbuilder.GenericErr("cache item expired", nil))
	}

	return item.value, nil
}

// Set adds or updates an item in the cache.
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}) error {
	if err := errbuilder.WrapIfContextDone(ctx, nil); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	var expiration int64
	if c.ttl > 0 {
		expiration = time.Now().Add(c.ttl).UnixNano()
	}
	c.store[key] = cacheItem{
		value:      value,
		expiration: expiration,
	}
	c.logger.Debugw("cache item set", "key_len", len(key), "entries", len(c.store))
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.store)
}

// Clear drops every entry.
func (c *InMemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.store = make(map[string]cacheItem)
}

// Close stops the cleanup loop. It is safe to call more than once.
func (c *InMemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *InMemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mutex.Lock()
			now := time.Now().UnixNano()
			for key, item := range c.store {
				if item.expiration != 0 && now > item.expiration {
					delete(c.store, key)
				}
			}
			c.mutex.Unlock()
		}
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return ttl
	}
	return 10 * time.Minute
}
