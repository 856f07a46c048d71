package middleware

import (
	"testing"
	"time"
)

func TestIPRateLimiterAllowsBurstThenThrottles(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 3, time.Hour)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("expected request %d within burst to pass", i+1)
		}
	}

	if limiter.Allow("10.0.0.1") {
		t.Fatal("expected request beyond burst to be throttled")
	}
}

func TestIPRateLimiterIsolatesKeys(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Hour)

	if !limiter.Allow("signup:10.0.0.1") {
		t.Fatal("expected first caller to pass")
	}
	if limiter.Allow("signup:10.0.0.1") {
		t.Fatal("expected repeat from same key to be throttled")
	}
	if !limiter.Allow("signup:10.0.0.2") {
		t.Fatal("expected different key to have its own budget")
	}
	if !limiter.Allow("login:10.0.0.1") {
		t.Fatal("expected different scope to have its own budget")
	}
}

func TestIPRateLimiterExpiresIdleVisitors(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Minute).(*ipRateLimiter)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithNowFunc(func() time.Time { return now })

	limiter.Allow("10.0.0.1")

	now = now.Add(2 * time.Minute)
	limiter.Allow("10.0.0.2")

	limiter.mu.Lock()
	_, stale := limiter.visitors["10.0.0.1"]
	limiter.mu.Unlock()
	if stale {
		t.Fatal("expected idle visitor to be garbage collected")
	}
}

func TestIPRateLimiterEmptyKey(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Hour)

	if !limiter.Allow("") {
		t.Fatal("expected first anonymous request to pass")
	}
	if limiter.Allow("") {
		t.Fatal("expected anonymous requests to share one bucket")
	}
}
