package demo

import (
	"testing"

	dashboard "github.com/PokeyPoke/homedash/internal"
)

func TestPayload_AllWidgetTypesTagged(t *testing.T) {
	t.Parallel()
	params := map[dashboard.WidgetType]dashboard.Params{
		dashboard.WidgetWeather: {"location": "london", "units": "metric"},
		dashboard.WidgetCrypto:  {"coin": "bitcoin", "currency": "usd"},
		dashboard.WidgetStocks:  {"symbol": "AAPL"},
		dashboard.WidgetSports:  {"league": "nba"},
	}

	for _, typ := range dashboard.DataWidgetTypes {
		got := Payload(typ, params[typ])
		if got == nil {
			t.Fatalf("Payload(%s) = nil", typ)
		}
		var demo bool
		switch v := got.(type) {
		case *dashboard.WeatherData:
			demo = v.Demo
		case *dashboard.CryptoData:
			demo = v.Demo
		case *dashboard.StockData:
			demo = v.Demo
		case *dashboard.SportsData:
			demo = v.Demo
		default:
			t.Fatalf("Payload(%s) type = %T", typ, got)
		}
		if !demo {
			t.Errorf("Payload(%s) must be tagged demo", typ)
		}
	}
}

func TestWeather_ImperialConversion(t *testing.T) {
	t.Parallel()
	w := Weather(dashboard.Params{"location": "miami", "units": "imperial"})
	if w.Units != "imperial" {
		t.Errorf("units = %q", w.Units)
	}
	// Metric range is -5..30 C, so imperial stays within 23..86 F.
	if w.Temp < 20 || w.Temp > 90 {
		t.Errorf("imperial temp %v outside plausible range", w.Temp)
	}
}

func TestCrypto_AnchoredPrice(t *testing.T) {
	t.Parallel()
	c := Crypto(dashboard.Params{"coin": "bitcoin", "currency": "usd"})
	if c.Price < 85_000 || c.Price > 105_000 {
		t.Errorf("bitcoin demo price %v strayed from its anchor", c.Price)
	}
	if c.Coin != "bitcoin" || c.Currency != "usd" {
		t.Errorf("identity fields = %+v", c)
	}
}

func TestSports_KnownLeagueTeams(t *testing.T) {
	t.Parallel()
	s := Sports(dashboard.Params{"league": "nhl"})
	if s.League != "nhl" || len(s.Games) == 0 {
		t.Fatalf("scoreboard = %+v", s)
	}
	for _, g := range s.Games {
		if g.HomeTeam == "" || g.AwayTeam == "" {
			t.Errorf("game missing teams: %+v", g)
		}
	}
}
