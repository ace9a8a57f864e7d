package cache

import (
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	k1 := CacheKey("QmAbc123")
	k2 := CacheKey("QmAbc123")
	k3 := CacheKey("QmOther")

	if k1 != k2 {
		t.Error("Same identifier must produce the same key")
	}
	if k1 == k3 {
		t.Error("Different identifiers must produce different keys")
	}
	if len(k1) == len("QmAbc123") {
		t.Error("Key should be a hash, not the raw identifier")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set(CacheKey("QmAbc123"), []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, found := c.Get(CacheKey("QmAbc123"))
	if !found || string(val) != "payload" {
		t.Errorf("Get = (%q, %v)", val, found)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("short", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("short"); found {
		t.Error("Expected expiry after TTL")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)
	key := CacheKey("QmAbc123")

	if err := c.Set(key, []byte("on disk"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, found := c.Get(key)
	if !found || string(val) != "on disk" {
		t.Errorf("Get = (%q, %v)", val, found)
	}

	// A fresh instance over the same directory sees the entry.
	reopened := NewDiskCache(dir, time.Minute)
	if _, found := reopened.Get(key); !found {
		t.Error("Expected entry to survive reopen")
	}
}

func TestDiskCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	key := CacheKey("QmAbc123")

	if err := c.Set(key, []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get(key); found {
		t.Error("Expected expiry after TTL")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	key := CacheKey("QmAbc123")

	// Seed the disk layer only.
	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set(key, []byte("promoted"), time.Minute); err != nil {
		t.Fatalf("Seed disk: %v", err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Minute)
	val, found := layered.Get(key)
	if !found || string(val) != "promoted" {
		t.Fatalf("Get = (%q, %v)", val, found)
	}

	// After promotion the memory layer serves it too.
	if _, found := layered.memory.Get(key); !found {
		t.Error("Expected promotion into the memory layer")
	}
}
