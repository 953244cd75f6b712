package database

import (
	"context"
	"log"

	"github.com/LuqmanKt98/hangout-app/config"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ConnectRedis is optional: without Redis the app still runs, events just
// stay within the single process.
func ConnectRedis() {
	if config.AppConfig.RedisURL == "" {
		log.Println("⚠️  REDIS_URL not set, running single-instance")
		return
	}

	opts, err := redis.ParseURL(config.AppConfig.RedisURL)
	if err != nil {
		log.Println("⚠️  Invalid REDIS_URL, running single-instance:", err)
		return
	}

	Redis = redis.NewClient(opts)
	if _, err := Redis.Ping(context.Background()).Result(); err != nil {
		log.Println("⚠️  Redis not available, running single-instance:", err)
		Redis = nil
		return
	}

	log.Println("✅ Redis connected successfully")
}
