package normalize

import (
	"strings"
	"time"
)

// Ordered date layouts. Day-first layouts come before month-first because
// the bulk of the supported statement exports are day-first; month-first
// only wins when the day-first read is impossible (e.g. "01/25/2024").
// The list is empirically tuned against sample statements; reorder with
// care, since a mis-ordering produces wrong dates rather than errors.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"1/2/2006",
	"2006-01-02",
	"2006/01/02",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"2006 Jan 2",
	"2/1/06",
	"1/2/06",
	"2.1.06",
	"02 Jan 06",
}

// Generic fallbacks tried after the explicit list.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Monday, 2 January 2006",
}

// ParseDate parses a raw date string against the ordered layout list and
// then the generic fallbacks. It returns ok=false on total failure and
// never panics; callers must treat a false result as "skip this record".
// Two-digit years below 70 resolve to the 2000s.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	// Collapse internal runs of whitespace so "15  Jan  2024" still parses.
	s = strings.Join(strings.Fields(s), " ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fixCentury(t), true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fixCentury(t), true
		}
	}

	return time.Time{}, false
}

// fixCentury remaps implausibly old parsed years into the 2000s. Statement
// exports never predate 1970; anything earlier is a two-digit-year artifact.
func fixCentury(t time.Time) time.Time {
	if t.Year() >= 1970 {
		return t
	}

	year := t.Year()
	for year < 1970 {
		year += 100
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
