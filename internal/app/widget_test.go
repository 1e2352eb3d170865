package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	dashboard "github.com/PokeyPoke/homedash/internal"
	"github.com/PokeyPoke/homedash/internal/circuitbreaker"
	"github.com/PokeyPoke/homedash/internal/config"
	"github.com/PokeyPoke/homedash/internal/provider"
	"github.com/PokeyPoke/homedash/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		Widgets: map[string]config.WidgetConfig{
			"crypto": {TTL: 2 * time.Minute, DemoTTL: time.Minute, RateLimit: 30, RateWindow: time.Minute},
		},
	}
}

func newService(t *testing.T, p dashboard.Provider, mode dashboard.ProviderMode) (*WidgetService, *testutil.FakeCache) {
	t.Helper()
	reg := provider.NewRegistry()
	reg.Register(p, mode)
	c := testutil.NewFakeCache()
	return NewWidgetService(reg, c, testConfig(), nil, nil), c
}

func TestWidgetService_SecondRequestServedFromCache(t *testing.T) {
	fake := &testutil.FakeProvider{
		ProviderName: "coingecko",
		WidgetType:   dashboard.WidgetCrypto,
		FetchFn: func(context.Context, dashboard.Params) (any, error) {
			return &dashboard.CryptoData{Coin: "bitcoin", Price: 50000}, nil
		},
	}
	svc, c := newService(t, fake, dashboard.ModeLive)
	q := url.Values{"coin": {"bitcoin"}}

	first, err := svc.Get(context.Background(), dashboard.WidgetCrypto, q)
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}
	second, err := svc.Get(context.Background(), dashboard.WidgetCrypto, q)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if fake.Calls() != 1 {
		t.Errorf("upstream calls = %d, want 1", fake.Calls())
	}
	if first != second {
		t.Error("second request should return the cached payload")
	}
	if c.LastTTL != 2*time.Minute {
		t.Errorf("cached with ttl %v, want 2m", c.LastTTL)
	}
}

// Identifier case must not split the cache: Bitcoin and bitcoin are one entry.
func TestWidgetService_CaseInsensitiveCacheReuse(t *testing.T) {
	fake := &testutil.FakeProvider{ProviderName: "coingecko", WidgetType: dashboard.WidgetCrypto}
	svc, _ := newService(t, fake, dashboard.ModeLive)

	if _, err := svc.Get(context.Background(), dashboard.WidgetCrypto, url.Values{"coin": {"Bitcoin"}}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), dashboard.WidgetCrypto, url.Values{"coin": {"bitcoin"}}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fake.Calls() != 1 {
		t.Errorf("upstream calls = %d, want 1", fake.Calls())
	}
}

func TestWidgetService_DemoModeSkipsUpstream(t *testing.T) {
	fake := &testutil.FakeProvider{ProviderName: "coingecko", WidgetType: dashboard.WidgetCrypto}
	svc, c := newService(t, fake, dashboard.ModeDemo)

	v, err := svc.Get(context.Background(), dashboard.WidgetCrypto, url.Values{"coin": {"bitcoin"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	data, ok := v.(*dashboard.CryptoData)
	if !ok {
		t.Fatalf("payload type = %T, want *dashboard.CryptoData", v)
	}
	if !data.Demo {
		t.Error("demo-mode payload must be tagged demo")
	}
	if fake.Calls() != 0 {
		t.Errorf("upstream calls = %d, want 0", fake.Calls())
	}
	if c.LastTTL != time.Minute {
		t.Errorf("demo payload cached with ttl %v, want 1m", c.LastTTL)
	}
}

func TestWidgetService_UpstreamFailureFallsBackToDemo(t *testing.T) {
	fake := &testutil.FakeProvider{
		ProviderName: "coingecko",
		WidgetType:   dashboard.WidgetCrypto,
		FetchFn: func(context.Context, dashboard.Params) (any, error) {
			return nil, fmt.Errorf("%w: coingecko unreachable", dashboard.ErrUpstream)
		},
	}
	svc, c := newService(t, fake, dashboard.ModeLive)

	v, err := svc.Get(context.Background(), dashboard.WidgetCrypto, url.Values{"coin": {"bitcoin"}})
	if err != nil {
		t.Fatalf("Get should degrade to demo data, got error: %v", err)
	}
	data, ok := v.(*dashboard.CryptoData)
	if !ok {
		t.Fatalf("payload type = %T, want *dashboard.CryptoData", v)
	}
	if !data.Demo {
		t.Error("fallback payload must be tagged demo")
	}
	if c.LastTTL != time.Minute {
		t.Errorf("fallback cached with ttl %v, want demo ttl 1m", c.LastTTL)
	}
}

func TestWidgetService_NotFoundSurfaces(t *testing.T) {
	fake := &testutil.FakeProvider{
		ProviderName: "coingecko",
		WidgetType:   dashboard.WidgetCrypto,
		FetchFn: func(context.Context, dashboard.Params) (any, error) {
			return nil, fmt.Errorf("%w: no such coin", dashboard.ErrNotFound)
		},
	}
	svc, c := newService(t, fake, dashboard.ModeLive)

	_, err := svc.Get(context.Background(), dashboard.WidgetCrypto, url.Values{"coin": {"nocoin"}})
	if !errors.Is(err, dashboard.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if c.Len(context.Background()) != 0 {
		t.Error("not-found responses must not be cached")
	}
}

func TestWidgetService_InvalidInputRejectedBeforeProvider(t *testing.T) {
	fake := &testutil.FakeProvider{ProviderName: "coingecko", WidgetType: dashboard.WidgetCrypto}
	svc, _ := newService(t, fake, dashboard.ModeLive)

	_, err := svc.Get(context.Background(), dashboard.WidgetCrypto, url.Values{"coin": {"bit coin!"}})
	if !errors.Is(err, dashboard.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if fake.Calls() != 0 {
		t.Errorf("upstream calls = %d, want 0", fake.Calls())
	}
}

func TestWidgetService_OpenBreakerSkipsUpstream(t *testing.T) {
	fake := &testutil.FakeProvider{
		ProviderName: "coingecko",
		WidgetType:   dashboard.WidgetCrypto,
		FetchFn: func(context.Context, dashboard.Params) (any, error) {
			return nil, fmt.Errorf("%w: upstream down", dashboard.ErrUpstream)
		},
	}
	reg := provider.NewRegistry()
	reg.Register(fake, dashboard.ModeLive)
	breakers := circuitbreaker.NewRegistry(circuitbreaker.Config{
		ErrorThreshold: 0.5,
		MinSamples:     2,
		WindowSeconds:  60,
		OpenTimeout:    30 * time.Second,
	})
	svc := NewWidgetService(reg, testutil.NewFakeCache(), testConfig(), nil, breakers)

	// Distinct coins avoid the cache; two failures trip the breaker.
	for _, coin := range []string{"bitcoin", "ethereum", "dogecoin"} {
		v, err := svc.Get(context.Background(), dashboard.WidgetCrypto, url.Values{"coin": {coin}})
		if err != nil {
			t.Fatalf("Get(%s): %v", coin, err)
		}
		if !v.(*dashboard.CryptoData).Demo {
			t.Errorf("Get(%s): payload not tagged demo", coin)
		}
	}
	if fake.Calls() != 2 {
		t.Errorf("upstream calls = %d, want 2 (third short-circuited)", fake.Calls())
	}
}

func TestWidgetService_UnregisteredWidget(t *testing.T) {
	reg := provider.NewRegistry()
	svc := NewWidgetService(reg, testutil.NewFakeCache(), testConfig(), nil, nil)

	_, err := svc.Get(context.Background(), dashboard.WidgetWeather, url.Values{"location": {"london"}})
	if err == nil {
		t.Fatal("expected error for widget with no provider")
	}
}
