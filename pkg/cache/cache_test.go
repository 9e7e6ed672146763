package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Fatalf("expected value1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 50*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	if _, ok := c.Get("key1"); ok {
		t.Fatalf("expected expired key to return false")
	}
	// Expired entry is dropped on read
	if _, ok := c.Get("key1"); ok {
		t.Fatalf("expected expired key to stay gone")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	c.Delete("key1")
	if _, ok := c.Get("key1"); ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Second)
	c.Set("b", 2, time.Second)
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected cleared cache to be empty")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected cleared cache to be empty")
	}
}
