package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	dashboard "github.com/PokeyPoke/homedash/internal"
	"github.com/PokeyPoke/homedash/internal/config"
)

// FeedItem is one flattened widget slot for a physical display: short
// strings an ESP32 can draw without understanding widget shapes.
type FeedItem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Value  string `json:"value"`
	Detail string `json:"detail,omitempty"`
	Demo   bool   `json:"demo,omitempty"`
}

// Feed is the full display payload.
type Feed struct {
	Widgets     []FeedItem `json:"widgets"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// FeedService assembles the configured widget list into a Feed through the
// same cached WidgetService path the browser uses.
type FeedService struct {
	widgets *WidgetService
	entries []config.FeedEntry
}

// NewFeedService wires a FeedService over the configured feed entries.
func NewFeedService(widgets *WidgetService, entries []config.FeedEntry) *FeedService {
	return &FeedService{widgets: widgets, entries: entries}
}

// Build resolves every configured entry. Entries that fail are skipped with
// a log line so one broken widget cannot blank the whole display.
func (s *FeedService) Build(ctx context.Context) *Feed {
	feed := &Feed{Widgets: []FeedItem{}, GeneratedAt: time.Now().UTC()}

	for _, e := range s.entries {
		t := dashboard.WidgetType(e.Type)
		q := url.Values{}
		for k, v := range e.Params {
			q.Set(k, v)
		}

		v, err := s.widgets.Get(ctx, t, q)
		if err != nil {
			slog.LogAttrs(ctx, slog.LevelWarn, "feed entry skipped",
				slog.String("widget", e.Type),
				slog.String("error", err.Error()),
			)
			continue
		}
		feed.Widgets = append(feed.Widgets, flatten(t, v))
	}
	return feed
}

// flatten reduces a canonical payload to display strings.
func flatten(t dashboard.WidgetType, v any) FeedItem {
	switch d := v.(type) {
	case *dashboard.WeatherData:
		return FeedItem{
			Type:   string(t),
			Title:  titleCase(d.Location),
			Value:  fmt.Sprintf("%.1f%s", d.Temp, tempUnit(d.Units)),
			Detail: d.Condition,
			Demo:   d.Demo,
		}
	case *dashboard.CryptoData:
		return FeedItem{
			Type:   string(t),
			Title:  strings.ToUpper(d.Coin),
			Value:  fmt.Sprintf("%.2f %s", d.Price, strings.ToUpper(d.Currency)),
			Detail: fmt.Sprintf("%+.2f%% 24h", d.Change24h),
			Demo:   d.Demo,
		}
	case *dashboard.StockData:
		return FeedItem{
			Type:   string(t),
			Title:  d.Symbol,
			Value:  fmt.Sprintf("%.2f", d.Price),
			Detail: fmt.Sprintf("%+.2f (%+.2f%%)", d.Change, d.ChangePercent),
			Demo:   d.Demo,
		}
	case *dashboard.SportsData:
		item := FeedItem{
			Type:  string(t),
			Title: strings.ToUpper(d.League),
			Value: fmt.Sprintf("%d games", len(d.Games)),
			Demo:  d.Demo,
		}
		if len(d.Games) > 0 {
			g := d.Games[0]
			item.Detail = fmt.Sprintf("%s %d - %d %s (%s)", g.HomeTeam, g.HomeScore, g.AwayScore, g.AwayTeam, g.Status)
		}
		return item
	default:
		return FeedItem{Type: string(t)}
	}
}

// titleCase capitalizes each word of a lowercased location for display.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func tempUnit(units string) string {
	switch units {
	case "imperial":
		return "°F"
	case "standard":
		return "K"
	default:
		return "°C"
	}
}
