// Package cache provides a small byte cache with memory and Redis backends.
// Sessions and the login-page context are the only consumers; both tolerate
// a cold cache, so no backend offers durability.
package cache

import "time"

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

// Config selects and configures a backend.
type Config struct {
	Kind       string // "memory" | "redis"
	RedisAddr  string
	RedisDB    int
	Prefix     string
	DefaultTTL time.Duration
}

// New builds a cache for the config, defaulting to memory.
func New(cfg Config) Cache {
	switch cfg.Kind {
	case "redis":
		return NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.Prefix)
	default:
		return NewMemory(cfg.DefaultTTL)
	}
}
