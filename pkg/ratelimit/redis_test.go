package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, window time.Duration, max int) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, window, max), mr
}

func TestRedisStoreAllowsUpToLimit(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := store.Allow(ctx, "client")
		if err != nil {
			t.Fatalf("Allow #%d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("request %d denied under the limit", i+1)
		}
	}

	ok, err := store.Allow(ctx, "client")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("request over the limit admitted")
	}
}

func TestRedisStoreKeysAreIndependent(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute, 1)
	ctx := context.Background()

	if ok, _ := store.Allow(ctx, "a"); !ok {
		t.Fatal("first request for key a denied")
	}
	if ok, _ := store.Allow(ctx, "a"); ok {
		t.Fatal("second request for key a admitted")
	}
	if ok, _ := store.Allow(ctx, "b"); !ok {
		t.Fatal("key b must not share key a's window")
	}
}

func TestRedisStoreKeyExpires(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute, 1)
	ctx := context.Background()

	if ok, _ := store.Allow(ctx, "k"); !ok {
		t.Fatal("first request denied")
	}
	if ok, _ := store.Allow(ctx, "k"); ok {
		t.Fatal("second request admitted")
	}

	mr.FastForward(61 * time.Second)

	if ok, err := store.Allow(ctx, "k"); err != nil || !ok {
		t.Fatalf("request after window should be admitted, ok=%v err=%v", ok, err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, time.Minute, 5)
	mr.Close()

	if _, err := store.Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
