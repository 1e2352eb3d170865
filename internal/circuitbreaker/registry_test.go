package circuitbreaker

import (
	"testing"
	"time"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry(testConfig())

	a := r.GetOrCreate("coingecko")
	if a == nil {
		t.Fatal("expected a breaker")
	}
	if b := r.GetOrCreate("coingecko"); b != a {
		t.Error("same provider must return the same breaker")
	}
	if other := r.GetOrCreate("finnhub"); other == a {
		t.Error("providers must not share a breaker")
	}
}

func TestRegistry_States(t *testing.T) {
	r := NewRegistry(testConfig())
	r.GetOrCreate("coingecko")
	b := r.GetOrCreate("openweather")
	for i := 0; i < 4; i++ {
		b.RecordError(1.0)
	}

	states := r.States()
	if states["coingecko"] != "closed" {
		t.Errorf("coingecko = %q, want closed", states["coingecko"])
	}
	if states["openweather"] != "open" {
		t.Errorf("openweather = %q, want open", states["openweather"])
	}
}

func TestRegistry_EvictStale(t *testing.T) {
	r := NewRegistry(testConfig())
	r.GetOrCreate("coingecko")
	r.GetOrCreate("finnhub")

	if n := r.EvictStale(time.Now().Add(-time.Minute)); n != 0 {
		t.Errorf("evicted %d fresh breakers", n)
	}
	if n := r.EvictStale(time.Now().Add(time.Minute)); n != 2 {
		t.Errorf("evicted %d, want 2", n)
	}
	if len(r.States()) != 0 {
		t.Error("registry should be empty after eviction")
	}
}
