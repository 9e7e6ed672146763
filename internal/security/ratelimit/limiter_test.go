package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllowsUnderQuota(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("user-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("user-1") {
		t.Error("request over quota should be rejected")
	}
}

func TestLimiterIsolatesCallers(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	if !l.Allow("user-1") {
		t.Fatal("first caller should be allowed")
	}
	if !l.Allow("user-2") {
		t.Error("second caller has an independent quota")
	}
	if l.Allow("user-1") {
		t.Error("first caller is over quota")
	}
}

func TestLimiterWindowSlides(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	defer l.Stop()

	if !l.Allow("user-1") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("user-1") {
		t.Fatal("second request inside the window should be rejected")
	}

	time.Sleep(30 * time.Millisecond)
	if !l.Allow("user-1") {
		t.Error("request after the window elapsed should be allowed")
	}
}

func TestLimiterSkipsEmptyKey(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		if !l.Allow("") {
			t.Fatal("empty key must never be limited")
		}
	}
}
