package middleware

import (
	"testing"
	"time"
)

func TestTokenBucketExhausts(t *testing.T) {
	tb := NewTokenBucket(3, 0)

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("request %d should be allowed within capacity", i+1)
		}
	}
	if tb.Allow() {
		t.Fatalf("bucket exhausted, request must be rejected")
	}
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(1, 1000)
	if !tb.Allow() {
		t.Fatalf("first request should pass")
	}

	// 以 1000/s 的速率，最多等 1s 必有令牌补回
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if tb.Allow() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("bucket did not refill")
}
