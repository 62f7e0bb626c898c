package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResults(t *testing.T) {
	tests := []struct {
		in   string
		want Results
	}{
		{"", Results{}},
		{"   ", Results{}},
		{"1st", Results{Place1st}},
		{"1st,3rd,Bubble", Results{Place1st, Place3rd, PlaceBubble}},
		{"1st, ,2nd,", Results{Place1st, Place2nd}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseResults(tt.in)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResultsJSON(t *testing.T) {
	s := PlayerStanding{
		ID: "x", Name: "Alice", Series: "S1", Points: 15,
		Results: Results{Place1st, Place3rd},
		Updated: time.Date(2026, 1, 17, 20, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","name":"Alice","series":"S1","points":15,"results":"1st,3rd","updated":"2026-01-17T20:00:00Z"}`, string(data))

	var back PlayerStanding
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.Results, back.Results)

	empty, err := json.Marshal(Results(nil))
	require.NoError(t, err)
	assert.Equal(t, `""`, string(empty))
}

func TestParsePlace(t *testing.T) {
	tests := []struct {
		in     string
		want   Place
		wantOK bool
	}{
		{"1st", Place1st, true},
		{" BUBBLE ", PlaceBubble, true},
		{"none", PlaceNone, true},
		{"", PlaceNone, true},
		{"10th", "", false},
		{"first", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePlace(tt.in)
		assert.Equal(t, tt.wantOK, ok, "ParsePlace(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParsePlace(%q)", tt.in)
	}
	assert.True(t, Place9th.Valid())
	assert.False(t, Place("0th").Valid())
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "", FormatTimestamp(time.Time{}))
	loc := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "2026-01-01T05:00:00Z", FormatTimestamp(time.Date(2026, 1, 1, 0, 0, 0, 0, loc)))
}

func TestRawResultRowDisplayName(t *testing.T) {
	name, player := "Alice", "Bob"

	got, ok := RawResultRow{Name: &name, Player: &player}.DisplayName()
	assert.True(t, ok)
	assert.Equal(t, "Alice", got)

	got, ok = RawResultRow{Player: &player}.DisplayName()
	assert.True(t, ok)
	assert.Equal(t, "Bob", got)

	_, ok = RawResultRow{}.DisplayName()
	assert.False(t, ok)
}
