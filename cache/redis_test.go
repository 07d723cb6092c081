package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, ""), mr
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "status:abc", []byte("200\n{}"), 5*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists(DefaultRedisPrefix + "status:abc") {
		t.Fatal("key not written with prefix")
	}

	got, ok := c.Get(ctx, "status:abc")
	if !ok || string(got) != "200\n{}" {
		t.Errorf("Get = %q, %v", got, ok)
	}

	if err := c.Delete(ctx, "status:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get(ctx, "status:abc"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestRedisCache_TTL(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 2*time.Second)
	mr.FastForward(3 * time.Second)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("expected key to expire")
	}
}

func TestRedisCache_ZeroTTL(t *testing.T) {
	c, mr := newTestRedisCache(t)

	if err := c.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if mr.Exists(DefaultRedisPrefix + "k") {
		t.Error("TTL=0 must not write")
	}
}

func TestRedisCache_ErrorIsMiss(t *testing.T) {
	c, mr := newTestRedisCache(t)
	mr.Close()

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("expected miss when Redis is unreachable")
	}
}
