package health

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisChecker_Ping(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	checker := NewRedisChecker(client)
	if err := checker.HealthCheck(ctx); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}
}

func TestRedisChecker_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:9999",
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	checker := NewRedisChecker(client)
	if err := checker.HealthCheck(ctx); err == nil {
		t.Error("expected error for unreachable Redis")
	}
}
