// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"autobook/config"
)

// CacheClient is the generic cache client (statistics and dashboard reads).
var CacheClient *redis.Client

// InitCache initializes the generic Redis cache client (using DB from AppConfig for general caching).
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Printf("Redis cache unavailable, statistics caching disabled: %v", err)
		CacheClient = nil
	}
}

// GetCacheClient returns the generic cache client, or nil when Redis is down.
func GetCacheClient() *redis.Client {
	return CacheClient
}
