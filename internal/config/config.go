// Package config handles YAML configuration loading with environment
// variable expansion.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"go.yaml.in/yaml/v3"

	dashboard "github.com/PokeyPoke/homedash/internal"
)

// Config is the top-level service configuration.
type Config struct {
	Server    ServerConfig                 `yaml:"server"`
	Auth      AuthConfig                   `yaml:"auth"`
	Cache     CacheConfig                  `yaml:"cache"`
	Retry     RetryConfig                  `yaml:"retry"`
	Widgets   map[string]WidgetConfig      `yaml:"widgets"`
	Providers ProvidersConfig              `yaml:"providers"`
	Telemetry TelemetryConfig              `yaml:"telemetry"`
	Feed      []FeedEntry                  `yaml:"feed"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TrustProxy honors X-Forwarded-For when resolving the client address
	// for rate limiting and logs. Leave false unless the service sits
	// behind a reverse proxy that strips the inbound header; a direct
	// client could otherwise rotate the header to dodge its rate window.
	TrustProxy bool `yaml:"trust_proxy"`
}

// AuthConfig holds the static API token settings. An empty token leaves the
// API open; there is deliberately no real session model here.
type AuthConfig struct {
	APIToken string `yaml:"api_token"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	MaxSize       int           `yaml:"max_size"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// RetryConfig holds outbound fetch retry settings.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Timeout     time.Duration `yaml:"timeout"`
}

// WidgetConfig holds the per-widget TTL and rate-limit table. These numbers
// are part of the contract: volatile data gets shorter TTLs, and each
// provider's limit mirrors its real upstream quota.
type WidgetConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	DemoTTL    time.Duration `yaml:"demo_ttl"`
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// ProviderEntry configures one upstream: API key (empty switches the
// provider to demo mode) and an optional base URL override.
type ProviderEntry struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// ProvidersConfig holds all upstream provider entries. CoinGecko and ESPN
// take no key and only support a base URL override.
type ProvidersConfig struct {
	OpenWeather  ProviderEntry `yaml:"openweather"`
	CoinGecko    ProviderEntry `yaml:"coingecko"`
	AlphaVantage ProviderEntry `yaml:"alphavantage"`
	Finnhub      ProviderEntry `yaml:"finnhub"`
	ESPN         ProviderEntry `yaml:"espn"`
}

// TelemetryConfig holds observability settings.
type TelemetryConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`    // OTLP gRPC endpoint
	SampleRate float64 `yaml:"sample_rate"` // 0.0 to 1.0
}

// FeedEntry is one widget slot in the ESP32 display feed.
type FeedEntry struct {
	Type   string            `yaml:"type"`
	Params map[string]string `yaml:"params"`
}

// genericWidget covers widget names absent from the table, so a typo
// cannot disable limiting entirely.
var genericWidget = WidgetConfig{TTL: 2 * time.Minute, DemoTTL: time.Minute, RateLimit: 30, RateWindow: time.Minute}

// Widget returns the widget table entry for t, falling back to the
// generic defaults for unknown names.
func (c *Config) Widget(t dashboard.WidgetType) WidgetConfig {
	if w, ok := c.Widgets[string(t)]; ok {
		return w
	}
	return genericWidget
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnv replaces ${VAR} patterns with environment variable values.
// Unset variables expand to the empty string so a missing API key silently
// switches that provider to demo mode instead of failing startup.
func expandEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		return []byte(os.Getenv(string(match[2 : len(match)-1])))
	})
}

// defaults returns the authoritative TTL and rate-limit table.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Cache: CacheConfig{
			MaxSize:       10_000,
			SweepInterval: 10 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Timeout:     8 * time.Second,
		},
		Widgets: map[string]WidgetConfig{
			"weather": {TTL: 5 * time.Minute, DemoTTL: time.Minute, RateLimit: 60, RateWindow: time.Minute},
			"crypto":  {TTL: 2 * time.Minute, DemoTTL: time.Minute, RateLimit: 30, RateWindow: time.Minute},
			"stocks":  {TTL: 5 * time.Minute, DemoTTL: time.Minute, RateLimit: 4, RateWindow: 70 * time.Second},
			"sports":  {TTL: 5 * time.Minute, DemoTTL: 2 * time.Minute, RateLimit: 30, RateWindow: time.Minute},
		},
	}
}

// Load reads and parses a YAML config file, expanding environment variables
// and applying defaults for anything the file leaves out.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	data = expandEnv(data)

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.mergeWidgetDefaults()
	return cfg, nil
}

// mergeWidgetDefaults back-fills zero fields in configured widget entries.
// yaml replaces map values wholesale, so a file that overrides only
// widgets.stocks.ttl would otherwise zero the stocks rate limit -- and a
// zero-request window rejects everything.
func (c *Config) mergeWidgetDefaults() {
	def := defaults().Widgets
	for name, w := range c.Widgets {
		d, ok := def[name]
		if !ok {
			d = genericWidget
		}
		if w.TTL == 0 {
			w.TTL = d.TTL
		}
		if w.DemoTTL == 0 {
			w.DemoTTL = d.DemoTTL
		}
		if w.RateLimit == 0 {
			w.RateLimit = d.RateLimit
		}
		if w.RateWindow == 0 {
			w.RateWindow = d.RateWindow
		}
		c.Widgets[name] = w
	}
}
