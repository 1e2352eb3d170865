// Package testutil provides configurable test fakes for dashboard interfaces.
package testutil

import (
	"context"
	"sync/atomic"

	dashboard "github.com/PokeyPoke/homedash/internal"
)

// FakeProvider is a configurable dashboard.Provider for testing. It counts
// Fetch invocations so tests can assert how many upstream calls a scenario
// actually made.
type FakeProvider struct {
	ProviderName string
	WidgetType   dashboard.WidgetType
	FetchFn      func(ctx context.Context, p dashboard.Params) (any, error)

	calls atomic.Int64
}

// Name returns the configured provider name.
func (f *FakeProvider) Name() string { return f.ProviderName }

// Widget returns the configured widget type.
func (f *FakeProvider) Widget() dashboard.WidgetType { return f.WidgetType }

// Fetch delegates to FetchFn or returns a minimal payload.
func (f *FakeProvider) Fetch(ctx context.Context, p dashboard.Params) (any, error) {
	f.calls.Add(1)
	if f.FetchFn != nil {
		return f.FetchFn(ctx, p)
	}
	return map[string]string{"fake": "payload"}, nil
}

// Calls reports how many times Fetch has been invoked.
func (f *FakeProvider) Calls() int { return int(f.calls.Load()) }
