package leaderboard

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Dosada05/poker-leaderboard/models"
)

type Format string

const (
	FormatCSV  Format = "CSV"
	FormatJSON Format = "JSON"
	FormatXLSX Format = "XLSX"
)

var exportHeader = []string{"name", "series", "points", "results", "updated"}

// ParseFormat accepts a format selector in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) MediaType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

func (f Format) Extension() string {
	return strings.ToLower(string(f))
}

// ExportRow is a standing as exported: no id, no rank.
type ExportRow struct {
	Name    string `json:"name"`
	Series  string `json:"series"`
	Points  int64  `json:"points"`
	Results string `json:"results"`
	Updated string `json:"updated"`
}

// ExportResult is an encoded export ready to be served or stored.
type ExportResult struct {
	Data      []byte
	MediaType string
	Format    Format
	Series    []string
	Rows      int
}

// Project selects the standings of the given series and flattens them, sorted
// by series, then points descending, then name.
func Project(standings []models.PlayerStanding, series []string) ([]ExportRow, error) {
	selected, err := resolveSelection(standings, series)
	if err != nil {
		return nil, err
	}

	picked := make([]models.PlayerStanding, 0)
	for _, s := range standings {
		if _, ok := selected[SeriesKey(s.Series)]; ok {
			picked = append(picked, s)
		}
	}
	slices.SortFunc(picked, func(a, b models.PlayerStanding) int {
		if c := compareFolded(a.Series, b.Series); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := compareFolded(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	rows := make([]ExportRow, len(picked))
	for i, s := range picked {
		rows[i] = ExportRow{
			Name:    s.Name,
			Series:  s.Series,
			Points:  s.Points,
			Results: s.Results.String(),
			Updated: models.FormatTimestamp(s.Updated),
		}
	}
	return rows, nil
}

// resolveSelection maps every requested series onto a known one.
func resolveSelection(standings []models.PlayerStanding, series []string) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	for _, s := range standings {
		known[SeriesKey(s.Series)] = struct{}{}
	}

	selected := make(map[string]struct{})
	var missing []string
	for _, name := range series {
		if strings.TrimSpace(name) == "" {
			continue
		}
		key := SeriesKey(name)
		if _, ok := known[key]; !ok {
			missing = append(missing, name)
			continue
		}
		selected[key] = struct{}{}
	}
	if len(missing) > 0 {
		return nil, &UnknownSeriesError{Series: missing}
	}
	if len(selected) == 0 {
		return nil, ErrNoSeriesSelected
	}
	return selected, nil
}

// Encode renders rows in the requested format and returns the payload with its
// media type.
func Encode(rows []ExportRow, format Format) ([]byte, string, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = encodeCSV(rows)
	case FormatJSON:
		data, err = encodeJSON(rows)
	case FormatXLSX:
		data, err = encodeXLSX(rows)
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode %s export: %w", format, err)
	}
	return data, format.MediaType(), nil
}

// Export projects and encodes in one step.
func Export(standings []models.PlayerStanding, series []string, format Format) (*ExportResult, error) {
	rows, err := Project(standings, series)
	if err != nil {
		return nil, err
	}
	data, mediaType, err := Encode(rows, format)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Data:      data,
		MediaType: mediaType,
		Format:    format,
		Series:    series,
		Rows:      len(rows),
	}, nil
}

func (r ExportRow) record() []string {
	return []string{r.Name, r.Series, strconv.FormatInt(r.Points, 10), r.Results, r.Updated}
}

func encodeCSV(rows []ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSON(rows []ExportRow) ([]byte, error) {
	if rows == nil {
		rows = []ExportRow{}
	}
	return json.Marshal(rows)
}

func encodeXLSX(rows []ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{r.Name, r.Series, r.Points, r.Results, r.Updated}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
