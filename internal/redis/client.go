package redis

import (
	"fmt"

	"kotoba-server/config"

	goredis "github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from the application config.
func NewClient(cfg *config.Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
