// Package dashboard defines domain types and interfaces for the homedash
// widget data service. This package has no project imports -- it is the
// dependency root.
package dashboard

import (
	"context"
)

// --- Widget types ---

// WidgetType identifies a dashboard widget kind served by the API.
type WidgetType string

const (
	WidgetWeather WidgetType = "weather"
	WidgetCrypto  WidgetType = "crypto"
	WidgetStocks  WidgetType = "stocks"
	WidgetSports  WidgetType = "sports"
)

// DataWidgetTypes lists every widget type backed by a data provider.
var DataWidgetTypes = []WidgetType{WidgetWeather, WidgetCrypto, WidgetStocks, WidgetSports}

// Valid reports whether t is a known data widget type.
func (t WidgetType) Valid() bool {
	switch t {
	case WidgetWeather, WidgetCrypto, WidgetStocks, WidgetSports:
		return true
	}
	return false
}

// Params holds sanitized, normalized widget request parameters.
// Case-insensitive identifiers (coin ids, city names, currencies) are
// lowercased before they reach a provider or a cache key.
type Params map[string]string

// --- Provider ---

// ProviderMode is decided once at startup per provider: a provider whose API
// key is absent from the config runs in Demo mode for the process lifetime.
type ProviderMode int

const (
	ModeLive ProviderMode = iota
	ModeDemo
)

// String returns the mode name as reported by /health.
func (m ProviderMode) String() string {
	if m == ModeDemo {
		return "demo"
	}
	return "live"
}

// Provider is the interface all upstream data adapters implement.
// Fetch returns one of the canonical payload structs below.
type Provider interface {
	// Name returns the upstream identifier (e.g. "openweather", "coingecko").
	Name() string
	// Widget returns the widget type this provider serves.
	Widget() WidgetType
	// Fetch retrieves and normalizes live data for the given parameters.
	Fetch(ctx context.Context, p Params) (any, error)
}

// --- Canonical payloads ---

// WeatherData is the normalized weather widget payload.
type WeatherData struct {
	Location  string  `json:"location"`
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
	Humidity  int     `json:"humidity"`
	Wind      float64 `json:"wind"`
	Units     string  `json:"units"`
	Demo      bool    `json:"demo,omitempty"`
}

// CryptoData is the normalized crypto widget payload.
type CryptoData struct {
	Coin      string  `json:"coin"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
	MarketCap float64 `json:"marketCap"`
	Volume24h float64 `json:"volume24h"`
	Currency  string  `json:"currency"`
	Demo      bool    `json:"demo,omitempty"`
}

// StockData is the normalized stocks widget payload.
type StockData struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
	PreviousClose float64 `json:"previousClose"`
	Demo          bool    `json:"demo,omitempty"`
}

// Game is a single scoreboard entry within a SportsData payload.
type Game struct {
	HomeTeam  string `json:"homeTeam"`
	HomeScore int    `json:"homeScore"`
	AwayTeam  string `json:"awayTeam"`
	AwayScore int    `json:"awayScore"`
	Status    string `json:"status"`
}

// SportsData is the normalized sports widget payload.
type SportsData struct {
	League string `json:"league"`
	Games  []Game `json:"games"`
	Demo   bool   `json:"demo,omitempty"`
}

// --- Context keys ---

type contextKey int

const ctxKeyRequestID contextKey = 0

// RequestIDFromContext extracts the request ID from context, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// ContextWithRequestID returns a context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}
