package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"despesas/internal/core"
	"despesas/internal/log"
)

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry should be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("Size = %d, want 2", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "x")
	c.Set("b", "y")
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry returned")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d, want 0", c.Size())
	}
}

func TestLRUCache_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[int](1, 0)
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	now = now.Add(24 * time.Hour)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry with zero ttl expired")
	}
}

func TestSnapshotCache_LoadsOnceAndInvalidates(t *testing.T) {
	var loads atomic.Int32
	c := NewSnapshotCache(func(name string) ([]core.ExpenseRecord, error) {
		loads.Add(1)
		return []core.ExpenseRecord{{Description: name}}, nil
	}, 4, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := c.Get("marco")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if len(got) != 1 || got[0].Description != "marco" {
			t.Fatalf("unexpected records %+v", got)
		}
	}
	if loads.Load() != 1 {
		t.Fatalf("loaded %d times, want 1", loads.Load())
	}

	c.Invalidate("marco")
	if _, err := c.Get("marco"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loads.Load() != 2 {
		t.Fatalf("loaded %d times after invalidate, want 2", loads.Load())
	}
}

func TestSnapshotCache_ErrorsNotCached(t *testing.T) {
	var loads atomic.Int32
	c := NewSnapshotCache(func(string) ([]core.ExpenseRecord, error) {
		loads.Add(1)
		return nil, core.ErrNotFound
	}, 4, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := c.Get("x"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Get = %v, want ErrNotFound", err)
		}
	}
	if loads.Load() != 2 {
		t.Fatalf("loaded %d times, want 2", loads.Load())
	}
	if c.Size() != 0 {
		t.Fatal("error result was cached")
	}
}

func TestSnapshotCache_ConcurrentMissesShareLoad(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	c := NewSnapshotCache(func(string) ([]core.ExpenseRecord, error) {
		loads.Add(1)
		<-release
		return []core.ExpenseRecord{}, nil
	}, 4, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get("abril"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := loads.Load(); n < 1 || n > 8 {
		t.Fatalf("unexpected load count %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("Size = %d, want 1", c.Size())
	}
}

func TestManager_Sweep(t *testing.T) {
	now := time.Now()
	lru := NewLRUCache[int](4, time.Second)
	lru.now = func() time.Time { return now }
	lru.Set("a", 1)
	now = now.Add(time.Minute)

	m := NewManager(log.Discard())
	m.Register(lru)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep = %d, want 1", n)
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
}
