package insulin

import (
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/civil"
)

// Entry is one day's sensitivity: how many grams of carbohydrate one unit of
// insulin covers.
type Entry struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Day returns the UTC calendar day of the entry. Two entries on the same Day
// occupy the same history slot regardless of their time of day.
func (e Entry) Day() civil.Date {
	return civil.DateOf(e.Date.UTC())
}

func (e Entry) validate() error {
	if e.Date.IsZero() {
		return ErrMalformedEntry
	}
	if !validSensitivity(e.Value) {
		return fmt.Errorf("%w: got %v", ErrInvalidSensitivity, e.Value)
	}
	return nil
}

// ApplyNewEntry returns history with entry recorded for entry's day.
//
// If history already has an entry for that day it is replaced in place, so
// editing sensitivity several times in a day never grows the history.
// Otherwise entry is appended, which requires its day to come after the last
// entry's day. history itself is never modified.
func ApplyNewEntry(history []Entry, entry Entry) ([]Entry, error) {
	if err := entry.validate(); err != nil {
		return nil, err
	}

	day := entry.Day()
	out := slices.Clone(history)
	if i := slices.IndexFunc(out, func(e Entry) bool { return e.Day() == day }); i >= 0 {
		out[i] = entry
		return out, nil
	}
	if n := len(out); n > 0 {
		if last := out[n-1].Day(); day.Before(last) {
			return nil, fmt.Errorf("%w (%s before %s)", ErrUnordered, day, last)
		}
	}
	return append(out, entry), nil
}

// ValidateHistory checks a history supplied by a client: every entry is well
// formed, days strictly ascend, and no day appears twice.
func ValidateHistory(history []Entry) error {
	for i, e := range history {
		if err := e.validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if i == 0 {
			continue
		}
		prev := history[i-1].Day()
		switch day := e.Day(); {
		case day == prev:
			return fmt.Errorf("entry %d: %w (%s)", i, ErrDuplicateDay, day)
		case day.Before(prev):
			return fmt.Errorf("entry %d: %w (%s before %s)", i, ErrUnordered, day, prev)
		}
	}
	return nil
}

// ValidateHistoryAt is ValidateHistory plus a check that no entry is dated
// after the UTC day of now. A future entry would sort after every entry the
// server records today.
func ValidateHistoryAt(history []Entry, now time.Time) error {
	if err := ValidateHistory(history); err != nil {
		return err
	}
	if n := len(history); n > 0 {
		today := civil.DateOf(now.UTC())
		if last := history[n-1].Day(); last.After(today) {
			return fmt.Errorf("entry %d: %w (%s after %s)", n-1, ErrFutureEntry, last, today)
		}
	}
	return nil
}

// Current returns the value of the most recent entry. ok is false for an
// empty history.
func Current(history []Entry) (value float64, ok bool) {
	if len(history) == 0 {
		return 0, false
	}
	return history[len(history)-1].Value, true
}
