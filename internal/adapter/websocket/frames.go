package websocket

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/Elahizes/spin-wheel/internal/domain"
	"github.com/Elahizes/spin-wheel/internal/stats"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	frameError   = "error"
	frameRefresh = "refresh"
)

type spinView struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Prize     string `json:"prize"`
	Timestamp int64  `json:"timestamp"`
}

type entryView struct {
	Label      string `json:"label"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
}

type recentEventsFrame struct {
	Type   string     `json:"type"`
	Events []spinView `json:"events"`
}

type distributionFrame struct {
	Type    string           `json:"type"`
	Raw     map[string]int64 `json:"raw"`
	Entries []entryView      `json:"entries"`
	Total   int64            `json:"total"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Feed  string `json:"feed"`
	Error string `json:"error"`
}

// clientFrame is the only message a dashboard sends. An empty Feed
// refreshes every feed.
type clientFrame struct {
	Type string `json:"type"`
	Feed string `json:"feed"`
}

func encodeRecent(events []domain.SpinEvent) ([]byte, error) {
	views := make([]spinView, 0, len(events))
	for _, ev := range events {
		views = append(views, spinView{
			ID:        ev.ID,
			UserID:    ev.PrincipalID,
			Prize:     ev.PrizeLabel,
			Timestamp: ev.OccurredAt.UnixMilli(),
		})
	}
	return json.Marshal(recentEventsFrame{Type: string(domain.FeedRecentEvents), Events: views})
}

func encodeDistribution(dist domain.PrizeDistribution) ([]byte, error) {
	raw := make(map[string]int64, len(dist))
	for label, count := range dist {
		raw[label] = count
	}

	projected := stats.Project(dist)
	entries := make([]entryView, 0, len(projected))
	for _, e := range projected {
		entries = append(entries, entryView{Label: e.Label, Count: e.Count, Percentage: e.Percentage})
	}

	return json.Marshal(distributionFrame{
		Type:    string(domain.FeedDistributionStats),
		Raw:     raw,
		Entries: entries,
		Total:   stats.Total(dist),
	})
}

func encodeError(feed domain.FeedName, err error) ([]byte, error) {
	return json.Marshal(errorFrame{Type: frameError, Feed: string(feed), Error: err.Error()})
}
