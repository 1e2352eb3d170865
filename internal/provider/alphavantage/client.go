// Package alphavantage implements the stocks widget adapter for the Alpha
// Vantage GLOBAL_QUOTE API.
package alphavantage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	dashboard "github.com/PokeyPoke/homedash/internal"
	"github.com/PokeyPoke/homedash/internal/provider"
	"github.com/PokeyPoke/homedash/internal/retry"
)

const (
	defaultBaseURL = "https://www.alphavantage.co"
	providerName   = "alphavantage"
)

var _ dashboard.Provider = (*Client)(nil)

// Client is an Alpha Vantage adapter that implements dashboard.Provider.
type Client struct {
	apiKey  string
	baseURL string
	fetch   *retry.Client
}

// New creates an Alpha Vantage Client. If baseURL is empty, it defaults to
// the public API endpoint.
func New(apiKey, baseURL string, fetch *retry.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, fetch: fetch}
}

// Name returns the upstream identifier.
func (c *Client) Name() string { return providerName }

// Widget returns the widget type this provider serves.
func (c *Client) Widget() dashboard.WidgetType { return dashboard.WidgetStocks }

// Fetch retrieves a global quote for p["symbol"].
func (c *Client) Fetch(ctx context.Context, p dashboard.Params) (any, error) {
	symbol := p["symbol"]

	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	resp, err := c.fetch.Get(ctx, c.baseURL+"/query?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("alphavantage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.ParseAPIError(providerName, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage: read response: %w", err)
	}

	// Alpha Vantage reports its own throttling as a 200 with a "Note" field.
	if note := gjson.GetBytes(body, "Note"); note.Exists() {
		return nil, fmt.Errorf("alphavantage: upstream throttled: %s", note.String())
	}

	quote := gjson.GetBytes(body, "Global Quote")
	if !quote.Exists() || quote.Get(`01\. symbol`).String() == "" {
		return nil, fmt.Errorf("%w: unknown symbol %q", dashboard.ErrNotFound, symbol)
	}

	return &dashboard.StockData{
		Symbol:        quote.Get(`01\. symbol`).String(),
		Price:         quote.Get(`05\. price`).Float(),
		Change:        quote.Get(`09\. change`).Float(),
		ChangePercent: parsePercent(quote.Get(`10\. change percent`).String()),
		Volume:        quote.Get(`06\. volume`).Int(),
		PreviousClose: quote.Get(`08\. previous close`).Float(),
	}, nil
}

// parsePercent converts Alpha Vantage's "1.2345%" strings to a float.
func parsePercent(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	return f
}
