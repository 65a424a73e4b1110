package custom_cache

import (
	"context"
	"log"
	"time"

	"github.com/allegro/bigcache"
	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	bigcache_store "github.com/eko/gocache/store/bigcache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/trsst/client/pkg/metrics"
)

const DefaultTTL = 5 * time.Minute

const (
	BackendRistretto = "ristretto"
	BackendBigcache  = "bigcache"
	BackendRedis     = "redis"
)

// Cache stores strings in one of the gocache stores.
type Cache struct {
	cache *cache.Cache[any]
	ttl   time.Duration

	// ristretto applies writes asynchronously
	ristretto *ristretto.Cache
}

// New creates a cache. An empty backend selects redis when redisAddress
// is set and ristretto otherwise.
func New(backend string, redisAddress string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if backend == "" {
		backend = BackendRistretto
		if redisAddress != "" {
			backend = BackendRedis
		}
	}

	switch backend {
	case BackendRistretto:
		ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1000,
			MaxCost:     100000000,
			BufferItems: 64,
			Metrics:     true,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize ristretto")
		}
		log.Printf("[INFO] using in-memory ristretto cache")
		ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)
		return &Cache{cache: cache.New[any](ristrettoStore), ttl: ttl, ristretto: ristrettoCache}, nil
	case BackendBigcache:
		bigcacheClient, err := bigcache.NewBigCache(bigcache.DefaultConfig(ttl))
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize bigcache")
		}
		log.Printf("[INFO] using in-memory bigcache cache")
		bigcacheStore := bigcache_store.NewBigcache(bigcacheClient)
		return &Cache{cache: cache.New[any](bigcacheStore), ttl: ttl}, nil
	case BackendRedis:
		if redisAddress == "" {
			return nil, errors.New("redis cache needs an address")
		}
		log.Printf("[INFO] using redis cache at %s", redisAddress)
		redisStore := redis_store.NewRedis(redis.NewClient(&redis.Options{Addr: redisAddress}))
		return &Cache{cache: cache.New[any](redisStore), ttl: ttl}, nil
	default:
		return nil, errors.Errorf("unknown cache backend '%s'", backend)
	}
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMiss.Inc()
		return "", err
	}

	switch v := value.(type) {
	case []byte:
		metrics.CacheHits.Inc()
		return string(v), nil
	case string:
		metrics.CacheHits.Inc()
		return v, nil
	default:
		metrics.CacheMiss.Inc()
		return "", errors.Errorf("unexpected cached type %T", value)
	}
}

func (c *Cache) Set(ctx context.Context, key string, value string) error {
	if err := c.cache.Set(ctx, key, []byte(value), store.WithExpiration(c.ttl), store.WithCost(int64(len(value)))); err != nil {
		return err
	}
	if c.ristretto != nil {
		c.ristretto.Wait()
	}
	return nil
}
