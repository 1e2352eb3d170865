// Package demo synthesizes plausible widget payloads when a live provider is
// unreachable or unconfigured. Every payload carries Demo: true so clients
// can label the data. Availability over accuracy: the dashboard must always
// render something.
package demo

import (
	"math"
	"math/rand/v2"

	dashboard "github.com/PokeyPoke/homedash/internal"
)

var conditions = []string{"Clear", "Clouds", "Rain", "Drizzle", "Snow", "Mist"}

// basePrices anchors demo crypto quotes near real magnitudes so the widget
// looks believable.
var basePrices = map[string]float64{
	"bitcoin":  95_000,
	"ethereum": 3_300,
	"solana":   180,
	"dogecoin": 0.32,
	"cardano":  0.95,
}

// Weather generates a synthetic current-conditions payload.
func Weather(p dashboard.Params) *dashboard.WeatherData {
	units := p["units"]
	if units == "" {
		units = "metric"
	}
	temp := -5 + rand.Float64()*35 // metric range
	if units == "imperial" {
		temp = temp*9/5 + 32
	}
	return &dashboard.WeatherData{
		Location:  p["location"],
		Temp:      round1(temp),
		Condition: conditions[rand.IntN(len(conditions))],
		Humidity:  30 + rand.IntN(60),
		Wind:      round1(rand.Float64() * 12),
		Units:     units,
		Demo:      true,
	}
}

// Crypto generates a synthetic price quote for the requested coin.
func Crypto(p dashboard.Params) *dashboard.CryptoData {
	currency := p["currency"]
	if currency == "" {
		currency = "usd"
	}
	base, ok := basePrices[p["coin"]]
	if !ok {
		base = 1 + rand.Float64()*100
	}
	price := base * (0.95 + rand.Float64()*0.1)
	return &dashboard.CryptoData{
		Coin:      p["coin"],
		Price:     round2(price),
		Change24h: round2(rand.Float64()*10 - 5),
		MarketCap: round2(price * 19_000_000),
		Volume24h: round2(price * 350_000),
		Currency:  currency,
		Demo:      true,
	}
}

// Stock generates a synthetic quote for the requested symbol.
func Stock(p dashboard.Params) *dashboard.StockData {
	prev := 20 + rand.Float64()*480
	change := prev * (rand.Float64()*0.06 - 0.03)
	return &dashboard.StockData{
		Symbol:        p["symbol"],
		Price:         round2(prev + change),
		Change:        round2(change),
		ChangePercent: round2(change / prev * 100),
		Volume:        int64(1_000_000 + rand.IntN(50_000_000)),
		PreviousClose: round2(prev),
		Demo:          true,
	}
}

var demoTeams = map[string][]string{
	"nba": {"Boston Celtics", "Los Angeles Lakers", "Denver Nuggets", "Milwaukee Bucks"},
	"nfl": {"Kansas City Chiefs", "Philadelphia Eagles", "Buffalo Bills", "Detroit Lions"},
	"mlb": {"Los Angeles Dodgers", "New York Yankees", "Atlanta Braves", "Houston Astros"},
	"nhl": {"Colorado Avalanche", "Edmonton Oilers", "Florida Panthers", "Boston Bruins"},
	"mls": {"Inter Miami", "LA Galaxy", "Seattle Sounders", "Atlanta United"},
}

// Sports generates a synthetic two-game scoreboard for the requested league.
func Sports(p dashboard.Params) *dashboard.SportsData {
	teams := demoTeams[p["league"]]
	if teams == nil {
		teams = demoTeams["nba"]
	}
	games := make([]dashboard.Game, 0, 2)
	for i := 0; i+1 < len(teams); i += 2 {
		games = append(games, dashboard.Game{
			HomeTeam:  teams[i],
			HomeScore: 80 + rand.IntN(50),
			AwayTeam:  teams[i+1],
			AwayScore: 80 + rand.IntN(50),
			Status:    "Final",
		})
	}
	return &dashboard.SportsData{League: p["league"], Games: games, Demo: true}
}

// Payload dispatches to the generator for the given widget type.
func Payload(t dashboard.WidgetType, p dashboard.Params) any {
	switch t {
	case dashboard.WidgetWeather:
		return Weather(p)
	case dashboard.WidgetCrypto:
		return Crypto(p)
	case dashboard.WidgetStocks:
		return Stock(p)
	case dashboard.WidgetSports:
		return Sports(p)
	default:
		return nil
	}
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func round2(f float64) float64 { return math.Round(f*100) / 100 }
