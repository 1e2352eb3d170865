package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestRegistry() (*Registry, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	return NewRegistry(WithClock(clk.Now)), clk
}

func TestRegistry_WindowSequence(t *testing.T) {
	t.Parallel()
	r, clk := newTestRegistry()
	limit := Limit{Requests: 3, Window: time.Second}

	for i := range 3 {
		res := r.Allow("ip:crypto", limit)
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	res := r.Allow("ip:crypto", limit)
	if res.Allowed {
		t.Fatal("4th request inside the window should be denied")
	}
	if res.RetryAfter <= 0 {
		t.Error("RetryAfter should be positive when denied")
	}

	// After the window elapses the next call is allowed again.
	clk.Advance(time.Second + time.Millisecond)
	if res := r.Allow("ip:crypto", limit); !res.Allowed {
		t.Error("request should be allowed after the window elapses")
	}
}

func TestRegistry_DeniedAttemptNotRecorded(t *testing.T) {
	t.Parallel()
	r, clk := newTestRegistry()
	limit := Limit{Requests: 1, Window: time.Second}

	if res := r.Allow("k", limit); !res.Allowed {
		t.Fatal("first request should be allowed")
	}

	// Hammer a full window; denials must not extend the lockout.
	for range 5 {
		clk.Advance(100 * time.Millisecond)
		if res := r.Allow("k", limit); res.Allowed {
			t.Fatal("request inside the window should be denied")
		}
	}

	// 1s after the single recorded instant, the key is free again.
	clk.Advance(501 * time.Millisecond)
	if res := r.Allow("k", limit); !res.Allowed {
		t.Error("denied attempts should not count against the window")
	}
}

func TestRegistry_KeysIndependent(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry()
	limit := Limit{Requests: 1, Window: time.Minute}

	if res := r.Allow("a:stocks", limit); !res.Allowed {
		t.Fatal("first key should be allowed")
	}
	if res := r.Allow("a:stocks", limit); res.Allowed {
		t.Fatal("first key should now be exhausted")
	}
	if res := r.Allow("b:stocks", limit); !res.Allowed {
		t.Error("one client's limit must not starve another key")
	}
}

func TestRegistry_Remaining(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry()
	limit := Limit{Requests: 4, Window: time.Minute}

	for i := range 4 {
		res := r.Allow("k", limit)
		if want := 3 - i; res.Remaining != want {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}
}

func TestRegistry_EvictStale(t *testing.T) {
	t.Parallel()
	r, clk := newTestRegistry()
	limit := Limit{Requests: 10, Window: time.Minute}

	r.Allow("old", limit)
	clk.Advance(time.Hour)
	r.Allow("fresh", limit)

	evicted := r.EvictStale(clk.Now().Add(-10 * time.Minute))
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()
	r, _ := newTestRegistry()
	limit := Limit{Requests: 1000, Window: time.Minute}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("client-%d:weather", i%2)
			for range 50 {
				r.Allow(key, limit)
			}
		}()
	}
	wg.Wait()

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}
