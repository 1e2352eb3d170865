// Package finnhub implements the stocks widget adapter for the Finnhub
// quote API. Preferred over Alpha Vantage when both keys are configured,
// since its free tier allows far more calls per minute.
package finnhub

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
	defaultBaseURL = "https://finnhub.io/api/v1"
	providerName   = "finnhub"
)

var _ dashboard.Provider = (*Client)(nil)

// Client is a Finnhub adapter that implements dashboard.Provider.
type Client struct {
	apiKey  string
	baseURL string
	fetch   *retry.Client
}

// New creates a Finnhub Client. If baseURL is empty, it defaults to the
// public API endpoint.
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

// Fetch retrieves a real-time quote for p["symbol"]. Finnhub's quote
// endpoint does not include volume, so Volume stays zero.
func (c *Client) Fetch(ctx context.Context, p dashboard.Params) (any, error) {
	symbol := p["symbol"]

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", c.apiKey)

	resp, err := c.fetch.Get(ctx, c.baseURL+"/quote?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("finnhub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.ParseAPIError(providerName, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("finnhub: read response: %w", err)
	}

	price := gjson.GetBytes(body, "c").Float()
	prevClose := gjson.GetBytes(body, "pc").Float()

	// Finnhub answers unknown symbols with an all-zero quote.
	if price == 0 && prevClose == 0 {
		return nil, fmt.Errorf("%w: unknown symbol %q", dashboard.ErrNotFound, symbol)
	}

	return &dashboard.StockData{
		Symbol:        symbol,
		Price:         price,
		Change:        gjson.GetBytes(body, "d").Float(),
		ChangePercent: gjson.GetBytes(body, "dp").Float(),
		PreviousClose: prevClose,
	}, nil
}
