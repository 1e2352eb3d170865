package app

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	dashboard "github.com/PokeyPoke/homedash/internal"
)

// Parameter alphabets. Sanitization protects both the cache key space and
// the outbound URLs from injection: anything outside the allow-list is a 400
// before the cache or a provider is ever consulted.
var (
	coinPattern     = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)
	currencyPattern = regexp.MustCompile(`^[a-z]{2,5}$`)
	symbolPattern   = regexp.MustCompile(`^[A-Z0-9.]{1,12}$`)
	textPattern     = regexp.MustCompile(`^[a-z0-9 ,.\-]{1,64}$`)
)

var (
	validUnits   = map[string]bool{"metric": true, "imperial": true, "standard": true}
	validDetail  = map[string]bool{"minimal": true, "standard": true, "detailed": true}
	validLeagues = map[string]bool{"nba": true, "nfl": true, "mlb": true, "nhl": true, "mls": true}
)

// Sanitize validates and normalizes raw query parameters for widget type t.
// Case-insensitive identifiers are lowercased (stock symbols uppercased) so
// logically identical requests normalize to identical Params.
func Sanitize(t dashboard.WidgetType, q url.Values) (dashboard.Params, error) {
	p := dashboard.Params{}

	switch t {
	case dashboard.WidgetWeather:
		location := strings.ToLower(strings.TrimSpace(q.Get("location")))
		if !textPattern.MatchString(location) {
			return nil, fmt.Errorf("%w: bad location", dashboard.ErrInvalidInput)
		}
		p["location"] = location
		if err := setEnum(p, q, "units", validUnits, "metric"); err != nil {
			return nil, err
		}

	case dashboard.WidgetCrypto:
		coin := strings.ToLower(strings.TrimSpace(q.Get("coin")))
		if !coinPattern.MatchString(coin) {
			return nil, fmt.Errorf("%w: bad coin id", dashboard.ErrInvalidInput)
		}
		p["coin"] = coin
		currency := strings.ToLower(strings.TrimSpace(q.Get("currency")))
		if currency == "" {
			currency = "usd"
		}
		if !currencyPattern.MatchString(currency) {
			return nil, fmt.Errorf("%w: bad currency", dashboard.ErrInvalidInput)
		}
		p["currency"] = currency

	case dashboard.WidgetStocks:
		symbol := strings.ToUpper(strings.TrimSpace(q.Get("symbol")))
		if !symbolPattern.MatchString(symbol) {
			return nil, fmt.Errorf("%w: bad symbol", dashboard.ErrInvalidInput)
		}
		p["symbol"] = symbol

	case dashboard.WidgetSports:
		league := strings.ToLower(strings.TrimSpace(q.Get("league")))
		if !validLeagues[league] {
			return nil, fmt.Errorf("%w: unknown league", dashboard.ErrInvalidInput)
		}
		p["league"] = league
		if teams := strings.ToLower(strings.TrimSpace(q.Get("teams"))); teams != "" {
			if !textPattern.MatchString(teams) {
				return nil, fmt.Errorf("%w: bad teams filter", dashboard.ErrInvalidInput)
			}
			p["teams"] = teams
		}

	default:
		return nil, fmt.Errorf("%w: unknown widget type %q", dashboard.ErrInvalidInput, t)
	}

	if t != dashboard.WidgetSports {
		if err := setEnum(p, q, "detailLevel", validDetail, ""); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// setEnum copies an optional enum parameter after validation. An empty
// fallback means the parameter is omitted entirely when absent.
func setEnum(p dashboard.Params, q url.Values, name string, allowed map[string]bool, fallback string) error {
	v := strings.ToLower(strings.TrimSpace(q.Get(name)))
	if v == "" {
		v = fallback
	}
	if v == "" {
		return nil
	}
	if !allowed[v] {
		return fmt.Errorf("%w: bad %s", dashboard.ErrInvalidInput, name)
	}
	p[name] = v
	return nil
}
