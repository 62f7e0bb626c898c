package leaderboard

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/poker-leaderboard/models"
)

// IngestOptions controls the clock and id source of a merge.
// Zero values fall back to UTC wall time (second precision) and random UUIDs.
type IngestOptions struct {
	Now   func() time.Time
	NewID func() string
}

func (o IngestOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC().Truncate(time.Second)
}

func (o IngestOptions) newID() func() string {
	if o.NewID != nil {
		return o.NewID
	}
	return uuid.NewString
}

const overflowReason = "would overflow the standing's total"

// Merged is the next state of one standing touched by a batch.
type Merged struct {
	Standing models.PlayerStanding
	Created  bool
}

// IngestResult holds every record a batch produced, in submission order.
// The caller persists them as one unit.
type IngestResult struct {
	Records []Merged
}

func (r *IngestResult) Standings() []models.PlayerStanding {
	out := make([]models.PlayerStanding, len(r.Records))
	for i, m := range r.Records {
		out[i] = m.Standing
	}
	return out
}

func (r *IngestResult) Counts() (created, updated int) {
	for _, m := range r.Records {
		if m.Created {
			created++
		} else {
			updated++
		}
	}
	return created, updated
}

// Series returns the distinct series touched by the batch, first-seen order.
func (r *IngestResult) Series() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range r.Records {
		key := SeriesKey(m.Standing.Series)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m.Standing.Series)
	}
	return out
}

// Merge folds one validated row into its matched standing, or starts a new one
// when existing is nil.
func Merge(row models.ResultRow, existing *models.PlayerStanding, now time.Time, newID func() string) models.PlayerStanding {
	if existing == nil {
		results := models.Results{}
		if row.Place != models.PlaceNone {
			results = append(results, row.Place)
		}
		return models.PlayerStanding{
			ID:      newID(),
			Name:    row.Name,
			Series:  row.Series,
			Points:  row.Points,
			Results: results,
			Updated: now,
		}
	}

	next := *existing
	next.Results = append(models.Results{}, existing.Results...)
	if row.Place != models.PlaceNone {
		next.Results = append(next.Results, row.Place)
	}
	next.Points = existing.Points + row.Points
	next.Updated = now
	return next
}

// Ingest validates, deduplicates and merges a raw batch against snapshot.
// Nothing is merged unless every row passes validation.
func Ingest(raw []models.RawResultRow, snapshot *Snapshot, opts IngestOptions) (*IngestResult, error) {
	rows, err := ValidateBatch(raw)
	if err != nil {
		return nil, err
	}
	if err := DedupBatch(rows); err != nil {
		return nil, err
	}

	if snapshot == nil {
		snapshot = NewSnapshot(nil)
	}
	working := snapshot.clone()
	now := opts.now()
	newID := opts.newID()

	touched := make(map[string]int, len(rows))
	result := &IngestResult{Records: make([]Merged, 0, len(rows))}
	for i, row := range rows {
		key := IdentityKey(row.Name, row.Series)
		if first, ok := touched[key]; ok {
			return nil, fmt.Errorf("%w: rows %d and %d resolve to %q in %q", ErrInternalConsistency, first+1, i+1, row.Name, row.Series)
		}
		touched[key] = i

		var merged models.PlayerStanding
		existing, found := working.Match(row.Name, row.Series)
		if found && row.Points > math.MaxInt64-existing.Points {
			return nil, &RowError{Index: i, Field: "points", Reason: overflowReason}
		}
		if found {
			merged = Merge(row, &existing, now, newID)
		} else {
			if display, ok := working.SeriesDisplayName(row.Series); ok {
				row.Series = display
			}
			merged = Merge(row, nil, now, newID)
		}
		working.put(merged)
		result.Records = append(result.Records, Merged{Standing: merged, Created: !found})
	}
	return result, nil
}
