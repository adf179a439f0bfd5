package normalize

import (
	"testing"
	"time"
)

// TestParseDateTimeWithExplicitOffset tests that zoned strings convert
// straight to UTC
func TestParseDateTimeWithExplicitOffset(t *testing.T) {
	got, err := ParseDateTime("2025-07-15T23:00:00+02:00", nil)
	if err != nil {
		t.Fatalf("Expected parse to succeed: %v", err)
	}

	expected := time.Date(2025, 7, 15, 21, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if got.Location() != time.UTC {
		t.Errorf("Expected UTC location, got %v", got.Location())
	}
}

// TestParseDateTimeInfersTimezone tests that offset-free strings are
// interpreted in the supplied location
func TestParseDateTimeInfersTimezone(t *testing.T) {
	cest := time.FixedZone("CEST", 2*60*60)

	got, err := ParseDateTime("2025-07-15 23:00", cest)
	if err != nil {
		t.Fatalf("Expected parse to succeed: %v", err)
	}

	expected := time.Date(2025, 7, 15, 21, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

// TestParseDateTimeFormats tests the tolerated source formats
func TestParseDateTimeFormats(t *testing.T) {
	utc := time.UTC
	tests := []struct {
		input string
		year  int
		month time.Month
		day   int
	}{
		{"2025-07-15", 2025, time.July, 15},
		{"15/07/2025", 2025, time.July, 15},
		{"15.07.2025", 2025, time.July, 15},
		{"15 July 2025", 2025, time.July, 15},
		{"July 15, 2025", 2025, time.July, 15},
		{"15 Jul 2025", 2025, time.July, 15},
		{"15th July 2025", 2025, time.July, 15},
	}

	for _, tt := range tests {
		got, err := ParseDateTime(tt.input, utc)
		if err != nil {
			t.Errorf("Expected %q to parse: %v", tt.input, err)
			continue
		}
		if got.Year() != tt.year || got.Month() != tt.month || got.Day() != tt.day {
			t.Errorf("ParseDateTime(%q) = %v, expected %d-%d-%d", tt.input, got, tt.year, tt.month, tt.day)
		}
	}
}

// TestParseDateTimeRejectsGarbage tests that junk input errors rather
// than producing a zero date silently
func TestParseDateTimeRejectsGarbage(t *testing.T) {
	inputs := []string{"", "soon", "TBA", "every friday", "???"}

	for _, input := range inputs {
		if _, err := ParseDateTime(input, time.UTC); err == nil {
			t.Errorf("Expected %q to fail parsing", input)
		}
	}
}

// TestParseTimeOfDay tests clock fragment parsing
func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input  string
		hour   int
		minute int
	}{
		{"23:00", 23, 0},
		{"23.30", 23, 30},
		{"11:00 PM", 23, 0},
		{"11 PM", 23, 0},
	}

	for _, tt := range tests {
		hour, minute, err := ParseTimeOfDay(tt.input)
		if err != nil {
			t.Errorf("Expected %q to parse: %v", tt.input, err)
			continue
		}
		if hour != tt.hour || minute != tt.minute {
			t.Errorf("ParseTimeOfDay(%q) = %d:%d, expected %d:%d", tt.input, hour, minute, tt.hour, tt.minute)
		}
	}

	if _, _, err := ParseTimeOfDay("doors open late"); err == nil {
		t.Error("Expected unparseable time to fail")
	}
}

// TestCombineDateAndTime tests date plus wall-clock combination
func TestCombineDateAndTime(t *testing.T) {
	cest := time.FixedZone("CEST", 2*60*60)
	date := time.Date(2025, 7, 15, 0, 0, 0, 0, cest)

	got := CombineDateAndTime(date, 23, 30, cest)
	expected := time.Date(2025, 7, 15, 21, 30, 0, 0, time.UTC)

	if !got.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
