package config

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// Redis holds the client used for server-side draft sessions. It stays nil
// when REDIS_ADDR is unset; callers fall back to the in-memory draft store.
var Redis *redis.Client

func InitRedis(ctx context.Context) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set, draft sessions will use the in-memory store")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to ping redis at %s: %v", addr, err)
	}

	Redis = client
	log.Println("Redis connected successfully")
}
