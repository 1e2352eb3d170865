// Package provider implements the registry for upstream widget data adapters.
package provider

import (
	"fmt"
	"slices"
	"sync"

	dashboard "github.com/PokeyPoke/homedash/internal"
)

// Entry pairs a registered provider with its startup-decided mode.
type Entry struct {
	Provider dashboard.Provider
	Mode     dashboard.ProviderMode
}

// Registry maps widget types to their data provider. One provider serves one
// widget type. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[dashboard.WidgetType]Entry
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[dashboard.WidgetType]Entry)}
}

// Register adds a provider for its widget type with the given mode.
// It overwrites any previously registered provider for the same type.
func (r *Registry) Register(p dashboard.Provider, mode dashboard.ProviderMode) {
	r.mu.Lock()
	r.entries[p.Widget()] = Entry{Provider: p, Mode: mode}
	r.mu.Unlock()
}

// Get returns the provider entry for the widget type, or an error if none
// is registered.
func (r *Registry) Get(t dashboard.WidgetType) (Entry, error) {
	r.mu.RLock()
	e, ok := r.entries[t]
	r.mu.RUnlock()
	if !ok {
		return Entry{}, fmt.Errorf("no provider registered for widget %q", t)
	}
	return e, nil
}

// Modes returns a map of provider name to mode string, sorted output is the
// caller's concern. Used by /health.
func (r *Registry) Modes() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.entries))
	for _, e := range r.entries {
		out[e.Provider.Name()] = e.Mode.String()
	}
	return out
}

// Widgets returns a sorted slice of registered widget types.
func (r *Registry) Widgets() []dashboard.WidgetType {
	r.mu.RLock()
	types := slices.Collect(func(yield func(dashboard.WidgetType) bool) {
		for t := range r.entries {
			if !yield(t) {
				return
			}
		}
	})
	r.mu.RUnlock()
	slices.Sort(types)
	return types
}
