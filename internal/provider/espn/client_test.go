package espn

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

const cannedScoreboard = `{
	"events": [
		{
			"status": {"type": {"shortDetail": "Final"}},
			"competitions": [{
				"competitors": [
					{"homeAway": "home", "score": "112", "team": {"displayName": "Boston Celtics"}},
					{"homeAway": "away", "score": "104", "team": {"displayName": "New York Knicks"}}
				]
			}]
		},
		{
			"status": {"type": {"shortDetail": "7:30 PM ET"}},
			"competitions": [{
				"competitors": [
					{"homeAway": "home", "score": "0", "team": {"displayName": "Los Angeles Lakers"}},
					{"homeAway": "away", "score": "0", "team": {"displayName": "Denver Nuggets"}}
				]
			}]
		}
	]
}`

func testFetcher() *retry.Client {
	return retry.New(retry.Config{MaxAttempts: 1}, nil)
}

func TestFetch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apis/site/v2/sports/basketball/nba/scoreboard" {
			t.Errorf("path = %s", r.URL.Path)
		}
		fmt.Fprint(w, cannedScoreboard)
	}))
	defer srv.Close()

	c := New(srv.URL, testFetcher())
	got, err := c.Fetch(context.Background(), dashboard.Params{"league": "nba"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	sd, ok := got.(*dashboard.SportsData)
	if !ok {
		t.Fatalf("payload type = %T, want *dashboard.SportsData", got)
	}
	if sd.League != "nba" || len(sd.Games) != 2 {
		t.Fatalf("normalized = %+v", sd)
	}
	g := sd.Games[0]
	if g.HomeTeam != "Boston Celtics" || g.HomeScore != 112 || g.AwayScore != 104 || g.Status != "Final" {
		t.Errorf("game = %+v", g)
	}
}

func TestFetch_TeamFilter(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, cannedScoreboard)
	}))
	defer srv.Close()

	c := New(srv.URL, testFetcher())
	got, err := c.Fetch(context.Background(), dashboard.Params{"league": "nba", "teams": "lakers"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	sd := got.(*dashboard.SportsData)
	if len(sd.Games) != 1 || sd.Games[0].HomeTeam != "Los Angeles Lakers" {
		t.Errorf("filtered games = %+v", sd.Games)
	}
}

func TestFetch_UnknownLeague(t *testing.T) {
	t.Parallel()
	c := New("http://unused.invalid", testFetcher())
	_, err := c.Fetch(context.Background(), dashboard.Params{"league": "curling"})
	if !errors.Is(err, dashboard.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
