// Package espn implements the sports widget adapter for ESPN's public
// scoreboard API. No API key is required, so this provider always runs live.
package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	dashboard "github.com/PokeyPoke/homedash/internal"
	"github.com/PokeyPoke/homedash/internal/provider"
	"github.com/PokeyPoke/homedash/internal/retry"
)

const (
	defaultBaseURL = "https://site.api.espn.com"
	providerName   = "espn"
)

// leaguePaths maps the widget's league identifiers to ESPN API paths.
var leaguePaths = map[string]string{
	"nba": "basketball/nba",
	"nfl": "football/nfl",
	"mlb": "baseball/mlb",
	"nhl": "hockey/nhl",
	"mls": "soccer/usa.1",
}

var _ dashboard.Provider = (*Client)(nil)

// Client is an ESPN scoreboard adapter that implements dashboard.Provider.
type Client struct {
	baseURL string
	fetch   *retry.Client
}

// New creates an ESPN Client. If baseURL is empty, it defaults to the public
// API endpoint.
func New(baseURL string, fetch *retry.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{baseURL: baseURL, fetch: fetch}
}

// Name returns the upstream identifier.
func (c *Client) Name() string { return providerName }

// Widget returns the widget type this provider serves.
func (c *Client) Widget() dashboard.WidgetType { return dashboard.WidgetSports }

// Fetch retrieves today's scoreboard for p["league"], optionally filtered to
// games involving a team matching p["teams"].
func (c *Client) Fetch(ctx context.Context, p dashboard.Params) (any, error) {
	league := p["league"]
	path, ok := leaguePaths[league]
	if !ok {
		return nil, fmt.Errorf("%w: unknown league %q", dashboard.ErrNotFound, league)
	}

	resp, err := c.fetch.Get(ctx, c.baseURL+"/apis/site/v2/sports/"+path+"/scoreboard")
	if err != nil {
		return nil, fmt.Errorf("espn: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.ParseAPIError(providerName, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("espn: read response: %w", err)
	}

	data := &dashboard.SportsData{League: league, Games: []dashboard.Game{}}
	teamFilter := strings.ToLower(p["teams"])

	gjson.GetBytes(body, "events").ForEach(func(_, event gjson.Result) bool {
		game := dashboard.Game{
			Status: event.Get("status.type.shortDetail").String(),
		}
		event.Get("competitions.0.competitors").ForEach(func(_, comp gjson.Result) bool {
			name := comp.Get("team.displayName").String()
			score := int(comp.Get("score").Int())
			if comp.Get("homeAway").String() == "home" {
				game.HomeTeam, game.HomeScore = name, score
			} else {
				game.AwayTeam, game.AwayScore = name, score
			}
			return true
		})
		if teamFilter == "" || matchesTeam(game, teamFilter) {
			data.Games = append(data.Games, game)
		}
		return true
	})

	return data, nil
}

func matchesTeam(g dashboard.Game, filter string) bool {
	return strings.Contains(strings.ToLower(g.HomeTeam), filter) ||
		strings.Contains(strings.ToLower(g.AwayTeam), filter)
}
