package leaderboard

import (
	"slices"
	"strings"
	"time"

	"github.com/Dosada05/poker-leaderboard/models"
)

// SeriesIndex lists the known series, most recently updated first, and the
// series a board should open on.
type SeriesIndex struct {
	Series      []models.SeriesSummary `json:"series"`
	Default     string                 `json:"default"`
	Preselected bool                   `json:"preselected"`
}

// BuildSeriesIndex groups standings by series. A preselect naming a known
// series (any case) becomes the default; otherwise the freshest series is.
func BuildSeriesIndex(standings []models.PlayerStanding, preselect string) SeriesIndex {
	groups := make(map[string]*models.SeriesSummary)
	order := make([]string, 0)
	for _, s := range standings {
		key := SeriesKey(s.Series)
		g, ok := groups[key]
		if !ok {
			g = &models.SeriesSummary{Series: s.Series, Key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.Players++
		if s.Updated.After(g.LatestUpdated) {
			g.LatestUpdated = s.Updated
		}
	}

	summaries := make([]models.SeriesSummary, 0, len(order))
	for _, key := range order {
		summaries = append(summaries, *groups[key])
	}
	slices.SortStableFunc(summaries, func(a, b models.SeriesSummary) int {
		if c := b.LatestUpdated.Compare(a.LatestUpdated); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})

	index := SeriesIndex{Series: summaries}
	if len(summaries) > 0 {
		index.Default = summaries[0].Series
	}
	if preselect = strings.TrimSpace(preselect); preselect != "" {
		if summary, ok := index.Lookup(preselect); ok {
			index.Default = summary.Series
			index.Preselected = true
		}
	}
	return index
}

// Lookup resolves a series name case-insensitively.
func (ix SeriesIndex) Lookup(series string) (models.SeriesSummary, bool) {
	key := SeriesKey(series)
	for _, s := range ix.Series {
		if s.Key == key {
			return s, true
		}
	}
	return models.SeriesSummary{}, false
}

// FilterSeries returns the standings belonging to series, ignoring case.
func FilterSeries(standings []models.PlayerStanding, series string) []models.PlayerStanding {
	key := SeriesKey(series)
	out := make([]models.PlayerStanding, 0)
	for _, s := range standings {
		if SeriesKey(s.Series) == key {
			out = append(out, s)
		}
	}
	return out
}

// LatestUpdated is the freshest Updated among standings, zero when empty.
func LatestUpdated(standings []models.PlayerStanding) time.Time {
	var latest time.Time
	for _, s := range standings {
		if s.Updated.After(latest) {
			latest = s.Updated
		}
	}
	return latest
}
