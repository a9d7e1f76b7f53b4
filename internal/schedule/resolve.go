// Package schedule normalizes the loose date and wall-clock strings stored on
// gig rows into timezone-aware instants.
package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultZoneName is the band's home timezone, applied when callers do not
// supply one.
const DefaultZoneName = "America/New_York"

var (
	zoneOnce sync.Once
	zone     *time.Location

	looseDate = regexp.MustCompile(`(\d{4})\D?(\d{2})\D?(\d{2})`)
)

// DefaultZone returns the cached home-zone location, falling back to UTC when
// tzdata is unavailable.
func DefaultZone() *time.Location {
	zoneOnce.Do(func() {
		loc, err := time.LoadLocation(DefaultZoneName)
		if err != nil {
			loc = time.UTC
		}
		zone = loc
	})
	return zone
}

// Clock is a wall-clock time of day with no date or zone attached.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseDate parses a calendar date. Strict ISO (YYYY-MM-DD, taken from the
// leading ten bytes so datetime strings pass) is tried first, then a
// permissive digit extraction. Dates that fail both are a hard error; there
// is no lenient fallback on the date path.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= 10 {
		if d, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return d, nil
		}
	}

	m := looseDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
	}
	d, err := time.Parse("2006-01-02", fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
	}
	return d, nil
}

// clockLayouts are tried in order against the normalized input.
var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04:05 PM", "1504"}

// ParseClock parses a wall-clock time. Unlike dates, a time that matches no
// known layout silently resolves to midnight; schedules routinely carry blank
// or free-form time cells and a midnight default beats refusing the row.
func ParseClock(raw string) Clock {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), ".", ""))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			h, m, sec := t.Clock()
			return Clock{Hour: h, Minute: m, Second: sec}
		}
	}
	return Clock{}
}

// Resolve combines a date string and a clock string into an instant in loc
// (DefaultZone when nil). The date path is strict, the clock path lenient.
func Resolve(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = DefaultZone()
	}

	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	c := ParseClock(clock)

	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour, c.Minute, c.Second, 0, loc), nil
}

// Span resolves a start/end pair on the same date. When the raw end does not
// land strictly after the start it is rolled forward one day, covering venues
// that close after midnight. On success end is always after start.
func Span(date, start, end string, loc *time.Location) (time.Time, time.Time, error) {
	startAt, err := Resolve(date, start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endAt, err := Resolve(date, end, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if !endAt.After(startAt) {
		endAt = endAt.Add(24 * time.Hour)
	}
	return startAt, endAt, nil
}

// Format12h renders a stored wall-clock string for humans ("7:30 PM"). Inputs
// that resolve to no known layout come back unchanged.
func Format12h(raw string) string {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), ".", ""))
	if s == "" {
		return ""
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("3:04 PM")
		}
	}
	return raw
}
