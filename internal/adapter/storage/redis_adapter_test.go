package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestSummaryCache_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute)

	client.Del(ctx, "summary:test-event")

	if _, ok, err := adapter.GetSummary(ctx, "test-event"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	payload := []byte(`{"eventId":"test-event","availableSeats":42}`)
	if err := adapter.SetSummary(ctx, "test-event", payload); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := adapter.GetSummary(ctx, "test-event")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload mismatch: %s", got)
	}
}

func TestSummaryCache_Invalidate(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute)

	if err := adapter.SetSummary(ctx, "test-event", []byte(`{}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := adapter.InvalidateSummary(ctx, "test-event"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if _, ok, _ := adapter.GetSummary(ctx, "test-event"); ok {
		t.Error("expected miss after invalidate")
	}
}

func TestSummaryCache_TTLExpires(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 50*time.Millisecond)

	if err := adapter.SetSummary(ctx, "test-event-ttl", []byte(`{}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok, _ := adapter.GetSummary(ctx, "test-event-ttl"); ok {
		t.Error("expected entry to expire")
	}
}
