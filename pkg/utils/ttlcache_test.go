package utils

import (
	"testing"
	"time"
)

func TestTTLCache_UnknownKeyMisses(t *testing.T) {
	c := NewTTLCache[string, bool](5*time.Minute, nil)
	if _, ok := c.Get("tok"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestTTLCache_ReturnsValueWithinTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	c := NewTTLCache[string, bool](5*time.Minute, clock)

	c.Set("tok", true)
	c.Set("bad", false)

	now = now.Add(4*time.Minute + 59*time.Second)
	if v, ok := c.Get("tok"); !ok || !v {
		t.Fatalf("expected cached true within TTL, got %v %v", v, ok)
	}
	if v, ok := c.Get("bad"); !ok || v {
		t.Fatalf("expected cached false within TTL, got %v %v", v, ok)
	}
}

func TestTTLCache_ExpiresAndEvictsAtTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	c := NewTTLCache[string, bool](5*time.Minute, clock)

	c.Set("tok", true)
	now = now.Add(5 * time.Minute)
	if _, ok := c.Get("tok"); ok {
		t.Fatalf("expected miss at TTL boundary")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", c.Len())
	}
}

func TestTTLCache_SetRefreshesAge(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	c := NewTTLCache[string, bool](time.Minute, clock)

	c.Set("tok", false)
	now = now.Add(50 * time.Second)
	c.Set("tok", true)
	now = now.Add(30 * time.Second)

	if v, ok := c.Get("tok"); !ok || !v {
		t.Fatalf("expected refreshed entry to survive, got %v %v", v, ok)
	}
}

func TestTTLCache_ClearExpiredSweeps(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	c := NewTTLCache[string, bool](time.Minute, clock)

	c.Set("old", true)
	now = now.Add(30 * time.Second)
	c.Set("fresh", true)
	now = now.Add(31 * time.Second)

	c.ClearExpired()
	if c.Len() != 1 {
		t.Fatalf("expected one surviving entry, len=%d", c.Len())
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatalf("expected fresh entry to survive sweep")
	}
}

func TestTTLCache_Clear(t *testing.T) {
	c := NewTTLCache[string, bool](time.Minute, nil)
	c.Set("a", true)
	c.Set("b", false)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Clear, len=%d", c.Len())
	}
}
