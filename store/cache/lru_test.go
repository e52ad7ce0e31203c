package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCache_SetGet(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Set("a", "one", 0)
	v, ok := c.Get("a")
	if !ok || v.(string) != "one" {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should miss")
	}
}

func TestLRUCache_Expiration(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Set("a", "one", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d after expired read, want 0", c.Size())
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache(3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, 0)
	}
	// Touch k0 so k1 becomes the eviction candidate.
	c.Get("k0")
	c.Set("k3", 3, 0)

	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should have been evicted")
	}
	if _, ok := c.Get("k0"); !ok {
		t.Error("k0 should have survived eviction")
	}
}

func TestLRUCache_InvalidateWildcard(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Set("conversations:1:list", "a", 0)
	c.Set("conversations:1:feed", "b", 0)
	c.Set("conversations:2:list", "c", 0)

	n := c.Invalidate("conversations:1:*")
	if n != 2 {
		t.Errorf("Invalidate removed %d entries, want 2", n)
	}
	if _, ok := c.Get("conversations:2:list"); !ok {
		t.Error("other user's entry should survive")
	}
}
