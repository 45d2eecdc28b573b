package cache

import (
	"context"
	"errors"
	"time"

	rdb "github.com/redis/go-redis/v9"

	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
)

type redisCache struct {
	c      *rdb.Client
	prefix string
}

func NewRedis(addr string, db int, prefix string) Cache {
	return &redisCache{
		c:      rdb.NewClient(&rdb.Options{Addr: addr, DB: db}),
		prefix: prefix,
	}
}

func (r *redisCache) key(k string) string { return r.prefix + k }

func (r *redisCache) Get(k string) ([]byte, bool) {
	b, err := r.c.Get(context.Background(), r.key(k)).Bytes()
	if err != nil {
		// A miss is normal; anything else is a backend problem worth
		// surfacing.
		if !errors.Is(err, rdb.Nil) {
			logger.Named("cache").Warn("redis get failed", logger.String("key", k), logger.Err(err))
		}
		return nil, false
	}
	return b, true
}

func (r *redisCache) Set(k string, v []byte, ttl time.Duration) {
	if err := r.c.Set(context.Background(), r.key(k), v, ttl).Err(); err != nil {
		logger.Named("cache").Warn("redis set failed", logger.String("key", k), logger.Err(err))
	}
}

func (r *redisCache) Delete(k string) {
	if err := r.c.Del(context.Background(), r.key(k)).Err(); err != nil {
		logger.Named("cache").Warn("redis delete failed", logger.String("key", k), logger.Err(err))
	}
}
