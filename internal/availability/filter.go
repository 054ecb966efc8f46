package availability

import (
	"log/slog"
	"sort"
	"time"

	"github.com/kirinyoku/playpass/internal/domain"
)

type DayState string

const (
	StateNoSessions     DayState = "no_sessions"
	StateNoDateSelected DayState = "no_date_selected"
	StateDateSelected   DayState = "date_selected"
)

// RawSession is a session record as received on the wire, before its
// start time has been validated.
type RawSession struct {
	ID             int64  `json:"id"`
	ListingID      int64  `json:"listing_id"`
	StartAt        string `json:"start_at"`
	SeatsAvailable int    `json:"seats_available"`
	IsBookable     bool   `json:"is_bookable"`
}

var startLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseSessions converts raw records into sessions. Records with an
// unparseable start time are dropped and logged.
func ParseSessions(raw []RawSession, loc *time.Location, logger *slog.Logger) []domain.Session {
	if loc == nil {
		loc = time.UTC
	}

	out := make([]domain.Session, 0, len(raw))
	for _, r := range raw {
		start, ok := parseStart(r.StartAt, loc)
		if !ok {
			if logger != nil {
				logger.Warn("dropping session with unparseable start",
					"session_id", r.ID, "listing_id", r.ListingID, "start_at", r.StartAt)
			}
			continue
		}

		out = append(out, domain.Session{
			ID:             r.ID,
			ListingID:      r.ListingID,
			StartAt:        start,
			SeatsAvailable: r.SeatsAvailable,
			IsBookable:     r.IsBookable,
		})
	}

	return out
}

func parseStart(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// Calendar holds bookable sessions grouped by local date.
type Calendar struct {
	Dates []string                    `json:"dates"`
	Days  map[string][]domain.Session `json:"days"`
}

// Filter keeps bookable sessions inside w, groups them by local date and
// orders each group by start time. Sessions with a zero start are dropped
// and logged.
func Filter(sessions []domain.Session, w Window, logger *slog.Logger) Calendar {
	cal := Calendar{Days: make(map[string][]domain.Session)}

	for _, s := range sessions {
		if s.StartAt.IsZero() {
			if logger != nil {
				logger.Warn("dropping session without start", "session_id", s.ID, "listing_id", s.ListingID)
			}
			continue
		}

		if !s.IsBookable || !w.Contains(s.StartAt) {
			continue
		}

		key := w.DateKey(s.StartAt)
		cal.Days[key] = append(cal.Days[key], s)
	}

	for key, day := range cal.Days {
		sort.SliceStable(day, func(i, j int) bool {
			if day[i].StartAt.Equal(day[j].StartAt) {
				return day[i].ID < day[j].ID
			}
			return day[i].StartAt.Before(day[j].StartAt)
		})
		cal.Dates = append(cal.Dates, key)
	}

	sort.Strings(cal.Dates)

	return cal
}

func (c Calendar) Empty() bool {
	return len(c.Dates) == 0
}

// Find returns the bookable session with the given id.
func (c Calendar) Find(id int64) (domain.Session, bool) {
	for _, day := range c.Days {
		for _, s := range day {
			if s.ID == id {
				return s, true
			}
		}
	}

	return domain.Session{}, false
}

// DayView is the time-slot list for one tapped date.
type DayView struct {
	State DayState         `json:"state"`
	Date  string           `json:"date,omitempty"`
	Slots []domain.Session `json:"slots"`
}

// Day renders the slot list for date. An empty date means no date has been
// chosen yet.
func (c Calendar) Day(date string) DayView {
	if c.Empty() {
		return DayView{State: StateNoSessions, Slots: []domain.Session{}}
	}

	if date == "" {
		return DayView{State: StateNoDateSelected, Slots: []domain.Session{}}
	}

	slots := c.Days[date]
	if slots == nil {
		slots = []domain.Session{}
	}

	return DayView{State: StateDateSelected, Date: date, Slots: slots}
}
