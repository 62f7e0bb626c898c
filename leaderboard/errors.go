package leaderboard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyBatch          = errors.New("request body must be a non-empty array of results")
	ErrMalformedRow        = errors.New("malformed result row")
	ErrDuplicateInBatch    = errors.New("a player can only appear once per series in a single save")
	ErrInternalConsistency = errors.New("standing identity invariant violated")
	ErrUnknownSeries       = errors.New("unknown series")
	ErrUnknownFormat       = errors.New("unknown export format")
	ErrNoSeriesSelected    = errors.New("at least one series must be selected")
)

// RowError names the first offending row of a rejected batch.
// Index is zero-based; messages print it one-based like the submit form does.
type RowError struct {
	Index  int
	Field  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s %d: %s %s", ErrMalformedRow, e.Index+1, e.Field, e.Reason)
}

func (e *RowError) Unwrap() error { return ErrMalformedRow }

// DuplicateError reports two rows of one batch sharing an identity.
type DuplicateError struct {
	Name       string
	Series     string
	FirstIndex int
	Index      int
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %q in %q (rows %d and %d)", ErrDuplicateInBatch, e.Name, e.Series, e.FirstIndex+1, e.Index+1)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateInBatch }

// UnknownSeriesError lists the selections absent from the snapshot.
type UnknownSeriesError struct {
	Series []string
}

func (e *UnknownSeriesError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownSeries, strings.Join(e.Series, ", "))
}

func (e *UnknownSeriesError) Unwrap() error { return ErrUnknownSeries }
