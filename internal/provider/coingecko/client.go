// Package coingecko implements the crypto widget adapter for the CoinGecko
// simple-price API. CoinGecko needs no API key, so this provider always runs
// live.
package coingecko

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	dashboard "github.com/PokeyPoke/homedash/internal"
	"github.com/PokeyPoke/homedash/internal/provider"
	"github.com/PokeyPoke/homedash/internal/retry"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	providerName   = "coingecko"
)

var _ dashboard.Provider = (*Client)(nil)

// Client is a CoinGecko adapter that implements dashboard.Provider.
type Client struct {
	baseURL string
	fetch   *retry.Client
}

// New creates a CoinGecko Client. If baseURL is empty, it defaults to the
// public API endpoint.
func New(baseURL string, fetch *retry.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{baseURL: baseURL, fetch: fetch}
}

// Name returns the upstream identifier.
func (c *Client) Name() string { return providerName }

// Widget returns the widget type this provider serves.
func (c *Client) Widget() dashboard.WidgetType { return dashboard.WidgetCrypto }

// Fetch retrieves the price of p["coin"] denominated in p["currency"].
func (c *Client) Fetch(ctx context.Context, p dashboard.Params) (any, error) {
	coin := p["coin"]
	currency := p["currency"]
	if currency == "" {
		currency = "usd"
	}

	q := url.Values{}
	q.Set("ids", coin)
	q.Set("vs_currencies", currency)
	q.Set("include_market_cap", "true")
	q.Set("include_24hr_vol", "true")
	q.Set("include_24hr_change", "true")

	resp, err := c.fetch.Get(ctx, c.baseURL+"/simple/price?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("coingecko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.ParseAPIError(providerName, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coingecko: read response: %w", err)
	}

	// Unknown coin ids come back as an empty object, not an error status.
	quote := gjson.GetBytes(body, coin)
	if !quote.Exists() {
		return nil, fmt.Errorf("%w: unknown coin %q", dashboard.ErrNotFound, coin)
	}

	return &dashboard.CryptoData{
		Coin:      coin,
		Price:     quote.Get(currency).Float(),
		Change24h: quote.Get(currency + "_24h_change").Float(),
		MarketCap: quote.Get(currency + "_market_cap").Float(),
		Volume24h: quote.Get(currency + "_24h_vol").Float(),
		Currency:  currency,
	}, nil
}
