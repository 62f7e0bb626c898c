package leaderboard

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Dosada05/poker-leaderboard/models"
)

const pointsReason = "must be a whole number greater than 0"

// ValidateBatch checks every row of a submission and returns the well-formed rows.
// The first violation rejects the whole batch.
func ValidateBatch(raw []models.RawResultRow) ([]models.ResultRow, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyBatch
	}

	rows := make([]models.ResultRow, 0, len(raw))
	for i, r := range raw {
		row, err := validateRow(i, r)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func validateRow(index int, r models.RawResultRow) (models.ResultRow, error) {
	name, _ := r.DisplayName()
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ResultRow{}, &RowError{Index: index, Field: "name", Reason: "is required"}
	}

	var series string
	if r.Series != nil {
		series = strings.TrimSpace(*r.Series)
	}
	if series == "" {
		return models.ResultRow{}, &RowError{Index: index, Field: "series", Reason: "is required"}
	}

	points, ok := parsePoints(r.Points)
	if !ok || points <= 0 {
		return models.ResultRow{}, &RowError{Index: index, Field: "points", Reason: pointsReason}
	}

	place := models.PlaceNone
	if r.Place != nil {
		p, ok := models.ParsePlace(*r.Place)
		if !ok {
			return models.ResultRow{}, &RowError{Index: index, Field: "place", Reason: strconv.Quote(*r.Place) + " is not a recognized place"}
		}
		place = p
	}

	return models.ResultRow{
		Place:  place,
		Name:   name,
		Series: series,
		Points: points,
	}, nil
}

// parsePoints accepts JSON integers, integral JSON numbers such as 10.0, and
// strings holding a base-10 integer.
func parsePoints(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		return v, true
	}
	// float64(MaxInt64) rounds up to 2^63, which int64 cannot hold.
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
