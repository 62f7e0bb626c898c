package models

import (
	"encoding/json"
	"strings"
)

// Place is the finishing label submitted with a result row.
type Place string

const (
	Place1st    Place = "1st"
	Place2nd    Place = "2nd"
	Place3rd    Place = "3rd"
	Place4th    Place = "4th"
	Place5th    Place = "5th"
	Place6th    Place = "6th"
	Place7th    Place = "7th"
	Place8th    Place = "8th"
	Place9th    Place = "9th"
	PlaceBubble Place = "Bubble"
	PlaceNone   Place = "None"
)

// Places lists every accepted label in the order the submit form offers them.
var Places = []Place{
	Place1st, Place2nd, Place3rd, Place4th, Place5th,
	Place6th, Place7th, Place8th, Place9th,
	PlaceBubble, PlaceNone,
}

func (p Place) Valid() bool {
	for _, known := range Places {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePlace resolves a submitted label to its canonical form.
// Matching ignores surrounding whitespace and letter case ("bubble" -> "Bubble").
// A blank label means the player did not place.
func ParsePlace(s string) (Place, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PlaceNone, true
	}
	for _, known := range Places {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// ResultRow is a validated submission row.
type ResultRow struct {
	Place  Place  `json:"place"`
	Name   string `json:"name"`
	Series string `json:"series"`
	Points int64  `json:"points"`
}

// RawResultRow is one undecoded row of a submission batch. Points stays raw so
// validation can tell numbers, numeric strings and garbage apart.
// Player is accepted as an alias of Name for older clients.
type RawResultRow struct {
	Place  *string         `json:"place,omitempty"`
	Name   *string         `json:"name,omitempty"`
	Player *string         `json:"player,omitempty"`
	Series *string         `json:"series,omitempty"`
	Points json.RawMessage `json:"points,omitempty"`
}

// DisplayName returns name, falling back to the player alias.
func (r RawResultRow) DisplayName() (string, bool) {
	if r.Name != nil {
		return *r.Name, true
	}
	if r.Player != nil {
		return *r.Player, true
	}
	return "", false
}
