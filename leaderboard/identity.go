package leaderboard

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/Dosada05/poker-leaderboard/models"
)

const identitySeparator = "\x00"

// Fold normalizes text for case-insensitive comparison.
// A Caser is stateful, so a fresh one is built per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// SeriesKey is the lookup key of a series name.
func SeriesKey(series string) string {
	return Fold(strings.TrimSpace(series))
}

// IdentityKey is the case-insensitive key of a (name, series) pair.
func IdentityKey(name, series string) string {
	return Fold(name) + identitySeparator + Fold(series)
}

// DedupBatch rejects a batch in which two rows share an identity.
func DedupBatch(rows []models.ResultRow) error {
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		key := IdentityKey(row.Name, row.Series)
		if first, ok := seen[key]; ok {
			return &DuplicateError{
				Name:       row.Name,
				Series:     row.Series,
				FirstIndex: first,
				Index:      i,
			}
		}
		seen[key] = i
	}
	return nil
}

// Snapshot is an indexed copy of the standings read at batch start.
// Records are assumed unique per identity; on a duplicate the first one wins.
type Snapshot struct {
	byIdentity map[string]models.PlayerStanding
	series     map[string]string
}

func NewSnapshot(standings []models.PlayerStanding) *Snapshot {
	s := &Snapshot{
		byIdentity: make(map[string]models.PlayerStanding, len(standings)),
		series:     make(map[string]string),
	}
	for _, st := range standings {
		key := IdentityKey(st.Name, st.Series)
		if _, exists := s.byIdentity[key]; exists {
			continue
		}
		s.byIdentity[key] = st
		s.rememberSeries(st.Series)
	}
	return s
}

// Match finds the standing for name and series, ignoring case on both.
func (s *Snapshot) Match(name, series string) (models.PlayerStanding, bool) {
	if s == nil {
		return models.PlayerStanding{}, false
	}
	st, ok := s.byIdentity[IdentityKey(name, series)]
	return st, ok
}

// SeriesDisplayName returns the casing the series was first stored with.
func (s *Snapshot) SeriesDisplayName(series string) (string, bool) {
	if s == nil {
		return "", false
	}
	name, ok := s.series[SeriesKey(series)]
	return name, ok
}

func (s *Snapshot) put(st models.PlayerStanding) {
	s.byIdentity[IdentityKey(st.Name, st.Series)] = st
	s.rememberSeries(st.Series)
}

func (s *Snapshot) rememberSeries(series string) {
	key := SeriesKey(series)
	if _, ok := s.series[key]; !ok {
		s.series[key] = series
	}
}

func (s *Snapshot) clone() *Snapshot {
	c := &Snapshot{
		byIdentity: make(map[string]models.PlayerStanding, len(s.byIdentity)),
		series:     make(map[string]string, len(s.series)),
	}
	for k, v := range s.byIdentity {
		c.byIdentity[k] = v
	}
	for k, v := range s.series {
		c.series[k] = v
	}
	return c
}
