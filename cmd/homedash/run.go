package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/dnscache"

	dashboard "github.com/PokeyPoke/homedash/internal"
	"github.com/PokeyPoke/homedash/internal/app"
	"github.com/PokeyPoke/homedash/internal/cache"
	"github.com/PokeyPoke/homedash/internal/circuitbreaker"
	"github.com/PokeyPoke/homedash/internal/config"
	"github.com/PokeyPoke/homedash/internal/provider"
	"github.com/PokeyPoke/homedash/internal/provider/alphavantage"
	"github.com/PokeyPoke/homedash/internal/provider/coingecko"
	"github.com/PokeyPoke/homedash/internal/provider/espn"
	"github.com/PokeyPoke/homedash/internal/provider/finnhub"
	"github.com/PokeyPoke/homedash/internal/provider/openweather"
	"github.com/PokeyPoke/homedash/internal/ratelimit"
	"github.com/PokeyPoke/homedash/internal/retry"
	"github.com/PokeyPoke/homedash/internal/server"
	"github.com/PokeyPoke/homedash/internal/telemetry"
	"github.com/PokeyPoke/homedash/internal/worker"
)

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	slog.Info("starting homedash", "version", version, "addr", cfg.Server.Addr)

	// Tracing (optional)
	ctx := context.Background()
	if cfg.Telemetry.Tracing.Enabled {
		shutdown, err := telemetry.SetupTracing(ctx, cfg.Telemetry.Tracing.Endpoint, cfg.Telemetry.Tracing.SampleRate)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("tracing shutdown", "error", err)
			}
		}()
	}

	// Metrics (optional)
	var (
		metrics  *telemetry.Metrics
		gatherer prometheus.Gatherer
	)
	if cfg.Telemetry.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		metrics = telemetry.NewMetrics(reg)
		gatherer = reg
	}

	// One shared outbound HTTP stack: pooled transport with cached DNS,
	// wrapped in the retrying fetcher all providers share.
	resolver := &dnscache.Resolver{}
	fetch := retry.New(retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		Timeout:     cfg.Retry.Timeout,
	}, provider.NewTransport(resolver))

	providers := registerProviders(cfg, fetch)
	for name, mode := range providers.Modes() {
		slog.Info("provider registered", "provider", name, "mode", mode)
	}

	store, err := cache.NewMemory(cfg.Cache.MaxSize, maxWidgetTTL(cfg))
	if err != nil {
		return err
	}
	limiter := ratelimit.NewRegistry()

	breakers := circuitbreaker.NewRegistry(circuitbreaker.DefaultConfig())
	widgets := app.NewWidgetService(providers, store, cfg, metrics, breakers)
	feed := app.NewFeedService(widgets, cfg.Feed)

	handler := server.New(server.Deps{
		Widgets:   widgets,
		Feed:      feed,
		Providers: providers,
		Cache:     store,
		Limiter:   limiter,
		Breakers:  breakers,
		Config:    cfg,
		Metrics:   metrics,
		Gatherer:  gatherer,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Background sweeper bounds cache and limiter memory.
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	runner := worker.NewRunner(worker.NewSweepWorker(store, limiter, breakers, cfg.Cache.SweepInterval))
	workerErr := make(chan error, 1)
	go func() {
		workerErr <- runner.Run(workerCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("homedash ready", "addr", cfg.Server.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		return err
	case err := <-workerErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	stopWorkers()

	slog.Info("homedash stopped")
	return nil
}

// registerProviders wires one adapter per widget type. A provider whose
// key is missing registers in demo mode; the decision is made once here,
// never per request. Stocks prefer Finnhub when both stock keys are set.
func registerProviders(cfg *config.Config, fetch *retry.Client) *provider.Registry {
	reg := provider.NewRegistry()
	pc := cfg.Providers

	if pc.OpenWeather.APIKey != "" {
		reg.Register(openweather.New(pc.OpenWeather.APIKey, pc.OpenWeather.BaseURL, fetch), dashboard.ModeLive)
	} else {
		reg.Register(openweather.New("", pc.OpenWeather.BaseURL, fetch), dashboard.ModeDemo)
	}

	// CoinGecko's simple price endpoint is keyless, so crypto is always live
	// unless the operator clears the base URL on purpose.
	reg.Register(coingecko.New(pc.CoinGecko.BaseURL, fetch), dashboard.ModeLive)

	switch {
	case pc.Finnhub.APIKey != "":
		reg.Register(finnhub.New(pc.Finnhub.APIKey, pc.Finnhub.BaseURL, fetch), dashboard.ModeLive)
	case pc.AlphaVantage.APIKey != "":
		reg.Register(alphavantage.New(pc.AlphaVantage.APIKey, pc.AlphaVantage.BaseURL, fetch), dashboard.ModeLive)
	default:
		reg.Register(finnhub.New("", pc.Finnhub.BaseURL, fetch), dashboard.ModeDemo)
	}

	// ESPN's scoreboard API is keyless too.
	reg.Register(espn.New(pc.ESPN.BaseURL, fetch), dashboard.ModeLive)

	return reg
}

// maxWidgetTTL returns the largest configured TTL, used as the cache's
// hard upper bound on entry lifetime.
func maxWidgetTTL(cfg *config.Config) time.Duration {
	longest := 5 * time.Minute
	for _, w := range cfg.Widgets {
		if w.TTL > longest {
			longest = w.TTL
		}
		if w.DemoTTL > longest {
			longest = w.DemoTTL
		}
	}
	return longest
}
