package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNoopAlwaysAllows(t *testing.T) {
	var g Guard = Noop{}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		first, err := g.FirstDelivery(ctx, "ATXid_1")
		if err != nil || !first {
			t.Fatalf("delivery %d: got (%v, %v)", i, first, err)
		}
	}

	release, err := g.Lock(ctx, "+254712345678")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	release()
}

func TestRedisGuardShortCircuits(t *testing.T) {
	// A nil client is never touched on these paths.
	g := NewRedisGuard(nil, time.Hour, time.Second, false)
	ctx := context.Background()

	first, err := g.FirstDelivery(ctx, "")
	if err != nil || !first {
		t.Fatalf("empty message id: got (%v, %v)", first, err)
	}

	release, err := g.Lock(ctx, "+254712345678")
	if err != nil {
		t.Fatalf("disabled lock: %v", err)
	}
	release()
}

func newMiniredisGuard(t *testing.T, lockEnabled bool) (*RedisGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisGuard(client, time.Hour, 30*time.Second, lockEnabled), mr
}

func TestRedisGuardFirstDelivery(t *testing.T) {
	g, mr := newMiniredisGuard(t, false)
	ctx := context.Background()

	first, err := g.FirstDelivery(ctx, "ATXid_1")
	if err != nil || !first {
		t.Fatalf("first delivery: got (%v, %v)", first, err)
	}
	if ttl := mr.TTL(dedupePrefix + "ATXid_1"); ttl != time.Hour {
		t.Fatalf("dedupe ttl = %s, want 1h", ttl)
	}

	first, err = g.FirstDelivery(ctx, "ATXid_1")
	if err != nil || first {
		t.Fatalf("redelivery: got (%v, %v)", first, err)
	}

	first, err = g.FirstDelivery(ctx, "ATXid_2")
	if err != nil || !first {
		t.Fatalf("other message: got (%v, %v)", first, err)
	}

	mr.FastForward(2 * time.Hour)
	first, err = g.FirstDelivery(ctx, "ATXid_1")
	if err != nil || !first {
		t.Fatalf("after expiry: got (%v, %v)", first, err)
	}
}

func TestRedisGuardLockContentionAndRelease(t *testing.T) {
	g, mr := newMiniredisGuard(t, true)
	ctx := context.Background()
	key := lockPrefix + "+254712345678"

	release, err := g.Lock(ctx, "+254712345678")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !mr.Exists(key) {
		t.Fatal("expected lock key to be set")
	}
	if ttl := mr.TTL(key); ttl != 30*time.Second {
		t.Fatalf("lock ttl = %s, want 30s", ttl)
	}

	if _, err := g.Lock(ctx, "+254712345678"); !errors.Is(err, ErrLocked) {
		t.Fatalf("second lock: expected ErrLocked, got %v", err)
	}

	other, err := g.Lock(ctx, "+254700000000")
	if err != nil {
		t.Fatalf("lock for another phone: %v", err)
	}
	other()

	release()
	if mr.Exists(key) {
		t.Fatal("expected release to delete the lock key")
	}

	again, err := g.Lock(ctx, "+254712345678")
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	again()
}

func TestRedisGuardReleaseKeepsForeignLock(t *testing.T) {
	g, mr := newMiniredisGuard(t, true)
	ctx := context.Background()
	key := lockPrefix + "+254712345678"

	release, err := g.Lock(ctx, "+254712345678")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	// The lock expired and another turn took it.
	if err := mr.Set(key, "someone-else"); err != nil {
		t.Fatalf("set: %v", err)
	}
	release()

	got, err := mr.Get(key)
	if err != nil || got != "someone-else" {
		t.Fatalf("foreign lock = (%q, %v), want it untouched", got, err)
	}
}
