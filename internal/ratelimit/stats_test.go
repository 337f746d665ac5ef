package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestMemoryRecorder(t *testing.T) {
	rec := NewMemoryRecorder()
	ctx := context.Background()

	rec.Record(ctx, Event{Key: "a", Outcome: OutcomeAllowed, Method: "GET", Path: "/items"})
	rec.Record(ctx, Event{Key: "a", Outcome: OutcomeAllowed, Method: "GET", Path: "/items"})
	rec.Record(ctx, Event{Key: "b", Outcome: OutcomeRateLimited, Method: "POST", Path: "/add-item"})

	totals := rec.Totals()
	if totals[OutcomeAllowed] != 2 {
		t.Errorf("expected 2 allowed, got %d", totals[OutcomeAllowed])
	}
	if totals[OutcomeRateLimited] != 1 {
		t.Errorf("expected 1 rate limited, got %d", totals[OutcomeRateLimited])
	}

	routes := rec.ByRoute()
	if routes["GET /items:allowed"] != 2 {
		t.Errorf("expected 2 for GET /items, got %d", routes["GET /items:allowed"])
	}
}

func TestRedisRecorder(t *testing.T) {
	addr := os.Getenv("MYITEMLIB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MYITEMLIB_TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	prefix := "myitemlibrary:test:" + time.Now().Format("150405.000000")
	t.Cleanup(func() {
		keys, _ := rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
	})

	rec := NewRedisRecorder(rdb, WithPrefix(prefix), WithBucketTTL(time.Minute))
	if err := rec.Record(ctx, Event{Outcome: OutcomeAllowed, Method: "GET", Path: "/items"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := rec.Record(ctx, Event{Outcome: OutcomeUnauthorized, Method: "GET", Path: "/items"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	totals, err := rec.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals[OutcomeAllowed] != 1 || totals[OutcomeUnauthorized] != 1 {
		t.Errorf("unexpected totals %v", totals)
	}
}
