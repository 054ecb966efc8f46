package availability

import (
	"fmt"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	DefaultMonths = 3
)

// Window is the half-open interval [From, To) of bookable start times,
// anchored to local midnight in Loc.
type Window struct {
	From time.Time
	To   time.Time
	Loc  *time.Location
}

// NewWindow returns the rolling window starting at local midnight of now
// and spanning months calendar months.
func NewWindow(now time.Time, loc *time.Location, months int) Window {
	if loc == nil {
		loc = time.UTC
	}

	if months <= 0 {
		months = DefaultMonths
	}

	local := now.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	return Window{
		From: from,
		To:   from.AddDate(0, months, 0),
		Loc:  loc,
	}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// FromDate and ToDate render the window bounds as query parameters.
func (w Window) FromDate() string { return w.From.Format(DateLayout) }
func (w Window) ToDate() string   { return w.To.Format(DateLayout) }

// DateSpan is a window rendered as calendar dates; To is exclusive.
type DateSpan struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (w Window) Span() DateSpan {
	return DateSpan{From: w.FromDate(), To: w.ToDate()}
}

// DateKey returns the local calendar date of t.
func (w Window) DateKey(t time.Time) string {
	return t.In(w.Loc).Format(DateLayout)
}

// ParseDateRange parses from/to query parameters in loc. Empty values fall
// back to the bounds of def.
func ParseDateRange(from, to string, loc *time.Location, def Window) (time.Time, time.Time, error) {
	const op = "availability.ParseDateRange"

	start, end := def.From, def.To

	if from != "" {
		t, err := time.ParseInLocation(DateLayout, from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%s: invalid from_date: %w", op, err)
		}
		start = t
	}

	if to != "" {
		t, err := time.ParseInLocation(DateLayout, to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%s: invalid to_date: %w", op, err)
		}
		end = t
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%s: to_date must be after from_date", op)
	}

	return start, end, nil
}
