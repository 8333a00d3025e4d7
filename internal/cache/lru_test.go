package cache

import (
	"testing"
	"time"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *testClock) {
	clock := &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewLRUCache[int](size, ttl, WithClock(clock.Now)), clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set("a", 1)
	c.Set("a", 2)
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) = %d, %v; want 2, true", v, ok)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
}

func TestLRUCache_SlidingExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", 1)

	clock.Advance(50 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry should be alive before ttl")
	}

	clock.Advance(50 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get should have refreshed the expiry")
	}

	clock.Advance(61 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("entry should expire after ttl of inactivity")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be removed, size = %d", c.Size())
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", 1)
	clock.Advance(30 * time.Second)
	c.Set("b", 2)
	clock.Advance(45 * time.Second)

	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should survive cleanup")
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("missing")
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestManager(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", 1)
	clock.Advance(2 * time.Minute)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanNow(); n != 1 {
		t.Errorf("CleanNow() = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without StartCleanup")
	}
}
