// Package openweather implements the weather widget adapter for the
// OpenWeather current-conditions API.
package openweather

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
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"
	providerName   = "openweather"
)

var _ dashboard.Provider = (*Client)(nil)

// Client is an OpenWeather adapter that implements dashboard.Provider.
type Client struct {
	apiKey  string
	baseURL string
	fetch   *retry.Client
}

// New creates an OpenWeather Client. If baseURL is empty, it defaults to the
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
func (c *Client) Widget() dashboard.WidgetType { return dashboard.WidgetWeather }

// Fetch retrieves current conditions for p["location"] in p["units"].
func (c *Client) Fetch(ctx context.Context, p dashboard.Params) (any, error) {
	units := p["units"]
	if units == "" {
		units = "metric"
	}

	q := url.Values{}
	q.Set("q", p["location"])
	q.Set("units", units)
	q.Set("appid", c.apiKey)

	resp, err := c.fetch.Get(ctx, c.baseURL+"/weather?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("openweather: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: unknown location %q", dashboard.ErrNotFound, p["location"])
	default:
		return nil, provider.ParseAPIError(providerName, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openweather: read response: %w", err)
	}

	return &dashboard.WeatherData{
		Location:  gjson.GetBytes(body, "name").String(),
		Temp:      gjson.GetBytes(body, "main.temp").Float(),
		Condition: gjson.GetBytes(body, "weather.0.main").String(),
		Humidity:  int(gjson.GetBytes(body, "main.humidity").Int()),
		Wind:      gjson.GetBytes(body, "wind.speed").Float(),
		Units:     units,
	}, nil
}
