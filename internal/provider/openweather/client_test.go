package openweather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	dashboard "github.com/PokeyPoke/homedash/internal"
	"github.com/PokeyPoke/homedash/internal/retry"
)

const cannedWeather = `{
	"name": "London",
	"main": {"temp": 17.4, "humidity": 72},
	"weather": [{"main": "Clouds", "description": "overcast clouds"}],
	"wind": {"speed": 4.1}
}`

func testFetcher() *retry.Client {
	return retry.New(retry.Config{MaxAttempts: 1}, nil)
}

func TestFetch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("path = %s, want /weather", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "london" {
			t.Errorf("q = %q, want %q", got, "london")
		}
		if got := r.URL.Query().Get("appid"); got != "test-key" {
			t.Errorf("appid = %q, want %q", got, "test-key")
		}
		fmt.Fprint(w, cannedWeather)
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, testFetcher())
	got, err := c.Fetch(context.Background(), dashboard.Params{"location": "london"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	w, ok := got.(*dashboard.WeatherData)
	if !ok {
		t.Fatalf("payload type = %T, want *dashboard.WeatherData", got)
	}
	if w.Location != "London" || w.Condition != "Clouds" {
		t.Errorf("normalized = %+v", w)
	}
	if w.Temp != 17.4 || w.Humidity != 72 || w.Wind != 4.1 {
		t.Errorf("numeric fields = %+v", w)
	}
	if w.Units != "metric" {
		t.Errorf("units = %q, want default metric", w.Units)
	}
	if w.Demo {
		t.Error("live payload must not carry the demo flag")
	}
}

func TestFetch_UnknownLocation(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, testFetcher())
	_, err := c.Fetch(context.Background(), dashboard.Params{"location": "nowhereville"})
	if !errors.Is(err, dashboard.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
