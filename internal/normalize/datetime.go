package normalize

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimezoneName is the timezone assumed for source strings that
// carry no explicit offset. Ibiza listings publish local wall-clock
// times.
const DefaultTimezoneName = "Europe/Madrid"

// Layouts that carry their own offset; parsed values convert straight
// to UTC.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04:05 -0700",
}

// Layouts without offset information; parsed in the inferred location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2 January 2006 15:04",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"Monday 2 January 2006",
}

// DefaultLocation resolves the inference timezone, falling back to a
// fixed CET offset when the zone database is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezoneName)
	if err != nil {
		return time.FixedZone("CET", 60*60)
	}
	return loc
}

// ParseDateTime parses a scraped date/time string and normalizes it to
// UTC. Strings with an explicit offset are converted directly; strings
// without one are interpreted in loc (the inferred event timezone).
// The original string is not modified by parsing and should be kept as
// display text by the caller.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = CleanText(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	if loc == nil {
		loc = DefaultLocation()
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}

	// Ordinal suffixes ("15th July 2025") defeat the layout table;
	// strip them and retry once.
	stripped := stripOrdinals(s)
	if stripped != s {
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, stripped, loc); err == nil {
				return t.UTC(), nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("could not parse date: %s", s)
}

// ParseTimeOfDay parses a bare clock time like "23:00" or "11 PM"
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	s = CleanText(s)
	layouts := []string{"15:04", "15.04", "3:04 PM", "3:04PM", "3 PM", "3PM"}
	for _, layout := range layouts {
		if t, perr := time.Parse(layout, strings.ToUpper(s)); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("could not parse time of day: %s", s)
}

// CombineDateAndTime attaches a wall-clock time to a date in loc and
// normalizes the result to UTC.
func CombineDateAndTime(date time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = DefaultLocation()
	}
	local := date.In(loc)
	combined := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	return combined.UTC()
}

func stripOrdinals(s string) string {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		for d := '0'; d <= '9'; d++ {
			s = strings.ReplaceAll(s, string(d)+suffix+" ", string(d)+" ")
		}
	}
	return s
}
