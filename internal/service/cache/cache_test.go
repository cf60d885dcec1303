package cache

import (
	"context"
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.SetBytes(ctx, "a", []byte("1"), time.Minute)
	_ = c.SetBytes(ctx, "b", []byte("2"), 0)

	if b, ok, _ := c.GetBytes(ctx, "a"); !ok || string(b) != "1" {
		t.Fatalf("fresh entry missing: %q %v", b, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.GetBytes(ctx, "a"); ok {
		t.Fatalf("expired entry returned")
	}
	if _, ok, _ := c.GetBytes(ctx, "b"); !ok {
		t.Fatalf("entry without ttl should not expire")
	}
	if c.Len() != 1 {
		t.Fatalf("expired entry not dropped on read, len=%d", c.Len())
	}
}

func TestTTLCacheSweepAndCopy(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewTTLCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	src := []byte("abc")
	_ = c.SetBytes(ctx, "k", src, time.Second)
	src[0] = 'z'
	got, _, _ := c.GetBytes(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("cache aliased caller slice: %q", got)
	}

	_ = c.SetBytes(ctx, "k2", []byte("x"), time.Second)
	now = now.Add(time.Hour)
	if n := c.Sweep(); n != 2 {
		t.Fatalf("sweep dropped %d, want 2", n)
	}
}

func TestForecastKey(t *testing.T) {
	if got := ForecastKey("USD Coin", "gru", 7); got != "forecast:USD Coin:gru:7" {
		t.Fatalf("key = %q", got)
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	r := NewRedisCache(RedisConfig{Addr: "127.0.0.1:0", Prefix: "coincast"})
	defer r.Close()
	if got := r.key("forecast:x"); got != "coincast:forecast:x" {
		t.Fatalf("key = %q", got)
	}
	r.prefix = ""
	if got := r.key("forecast:x"); got != "forecast:x" {
		t.Fatalf("key without prefix = %q", got)
	}
}
