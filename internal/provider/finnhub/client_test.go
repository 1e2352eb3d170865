package finnhub

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

func testFetcher() *retry.Client {
	return retry.New(retry.Config{MaxAttempts: 1}, nil)
}

func TestFetch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("path = %s, want /quote", r.URL.Path)
		}
		if got := r.URL.Query().Get("token"); got != "test-key" {
			t.Errorf("token = %q, want test-key", got)
		}
		fmt.Fprint(w, `{"c": 227.63, "d": 2.51, "dp": 1.115, "pc": 225.12}`)
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, testFetcher())
	got, err := c.Fetch(context.Background(), dashboard.Params{"symbol": "AAPL"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	sd, ok := got.(*dashboard.StockData)
	if !ok {
		t.Fatalf("payload type = %T, want *dashboard.StockData", got)
	}
	if sd.Symbol != "AAPL" || sd.Price != 227.63 || sd.PreviousClose != 225.12 {
		t.Errorf("quote = %+v", sd)
	}
}

func TestFetch_UnknownSymbol(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"c": 0, "d": null, "dp": null, "pc": 0}`)
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, testFetcher())
	_, err := c.Fetch(context.Background(), dashboard.Params{"symbol": "ZZZZ"})
	if !errors.Is(err, dashboard.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
