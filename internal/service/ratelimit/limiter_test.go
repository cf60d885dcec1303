package ratelimit

import (
	"testing"
	"time"
)

func TestAllowRefills(t *testing.T) {
	now := time.Unix(1000, 0)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("first two requests should pass")
	}
	if l.Allow("a") {
		t.Fatalf("third request should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must not share buckets")
	}

	now = now.Add(1500 * time.Millisecond)
	if !l.Allow("a") {
		t.Fatalf("bucket should have refilled one token")
	}
	if l.Allow("a") {
		t.Fatalf("only one token should have refilled")
	}
}

func TestDisabledLimiter(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		if !l.Allow("x") {
			t.Fatalf("disabled limiter rejected request %d", i)
		}
	}
	var nilLimiter *Limiter
	if !nilLimiter.Allow("x") {
		t.Fatalf("nil limiter should allow")
	}
}

func TestPrune(t *testing.T) {
	now := time.Unix(0, 0)
	l := New(1, 1)
	l.now = func() time.Time { return now }
	l.Allow("old")
	now = now.Add(time.Hour)
	l.Allow("new")
	if n := l.Prune(10 * time.Minute); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
}
