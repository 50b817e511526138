package storage

import (
	"context"
	"log"
	"os"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client

// AdminEventsChannel carries JSON notification payloads for the admin SSE
// stream (new venue submissions, new event proposals).
const AdminEventsChannel = "admin:events"

func InitializeRedis() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
		log.Println("REDIS_URL not set, using localhost:6379 (development mode)")
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: "",
		DB:       0,
	})

	log.Println("Redis initialized with address:", redisURL)
}

// PublishAdminEvent pushes a payload onto the admin notification channel.
// Best effort: a down Redis only costs the live stream, not the request.
func PublishAdminEvent(ctx context.Context, payload []byte) {
	if Redis == nil {
		return
	}
	if err := Redis.Publish(ctx, AdminEventsChannel, payload).Err(); err != nil {
		log.Printf("admin event publish failed: %v", err)
	}
}
