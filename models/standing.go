package models

import (
	"encoding/json"
	"strings"
	"time"
)

// PlayerStanding is the cumulative record of one player inside one series.
// Name and Series keep the casing of the first submission; identity lookups
// are case-insensitive and never rewrite them.
type PlayerStanding struct {
	ID      string    `json:"id" db:"id"`
	Name    string    `json:"name" db:"name"`
	Series  string    `json:"series" db:"series"`
	Points  int64     `json:"points" db:"points"`
	Results Results   `json:"results" db:"results"`
	Updated time.Time `json:"updated" db:"updated"`
}

// Results is the append-only sequence of places a player finished in.
// It is flattened to comma-joined text only at the storage and display boundary.
type Results []Place

const resultsSeparator = ","

// ParseResults splits the stored comma-joined form. Blank entries are dropped.
func ParseResults(text string) Results {
	text = strings.TrimSpace(text)
	if text == "" {
		return Results{}
	}
	parts := strings.Split(text, resultsSeparator)
	results := make(Results, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		results = append(results, Place(part))
	}
	return results
}

// String returns the comma-joined storage form, e.g. "1st,3rd".
func (r Results) String() string {
	if len(r) == 0 {
		return ""
	}
	parts := make([]string, len(r))
	for i, p := range r {
		parts[i] = string(p)
	}
	return strings.Join(parts, resultsSeparator)
}

func (r Results) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Results) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	*r = ParseResults(text)
	return nil
}

// SeriesSummary is derived from a standings snapshot and never stored.
type SeriesSummary struct {
	Series        string    `json:"series"`
	Key           string    `json:"key"`
	LatestUpdated time.Time `json:"latest_updated"`
	Players       int       `json:"players"`
}

// RankedStanding pairs a standing with its tie-aware rank.
type RankedStanding struct {
	Standing PlayerStanding `json:"standing"`
	Rank     int            `json:"rank"`
	Label    string         `json:"label"`
	Tied     bool           `json:"tied"`
}

// TimestampLayout is the wire form of Updated in exports and API payloads.
const TimestampLayout = time.RFC3339

func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}
