package queue

import (
	"context"
	"log"
	"time"

	"deals_api/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// RDB backs the token denylist and the load-event list.
var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:         config.AppConfig.RedisAddr,
		Password:     config.AppConfig.RedisPassword,
		DB:           config.AppConfig.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second, // above the worker's BRPOP timeout
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatalf("Could not connect to Redis at %s: %v", config.AppConfig.RedisAddr, err)
	}
	log.Printf("Connected to Redis at %s (db %d)", config.AppConfig.RedisAddr, config.AppConfig.RedisDB)
}

func CloseRedis() {
	if RDB == nil {
		return
	}
	if err := RDB.Close(); err != nil {
		log.Printf("ERROR: Closing Redis: %v", err)
		return
	}
	log.Println("Redis connection closed.")
}
