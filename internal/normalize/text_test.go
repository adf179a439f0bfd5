package normalize

import "testing"

// TestCleanText tests whitespace collapsing from HTML text extraction
func TestCleanText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Carl Cox\n\t at   Privilege ", "Carl Cox at Privilege"},
		{"\n\n\n", ""},
		{"already clean", "already clean"},
	}

	for _, tt := range tests {
		if got := CleanText(tt.input); got != tt.expected {
			t.Errorf("CleanText(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

// TestSpecialCharRatio tests scrape-artifact detection
func TestSpecialCharRatio(t *testing.T) {
	if ratio := SpecialCharRatio("Carl Cox at Privilege"); ratio != 0 {
		t.Errorf("Expected clean title ratio 0, got %.2f", ratio)
	}
	if ratio := SpecialCharRatio("{{title}}##%%"); ratio < 0.3 {
		t.Errorf("Expected template junk to score high, got %.2f", ratio)
	}
	if ratio := SpecialCharRatio(""); ratio != 0 {
		t.Errorf("Expected empty string ratio 0, got %.2f", ratio)
	}
}

// TestIsCapitalized tests leading-letter capitalization detection
func TestIsCapitalized(t *testing.T) {
	if !IsCapitalized("Carl Cox") {
		t.Error("Expected capitalized title to pass")
	}
	if IsCapitalized("carl-cox-at-privilege") {
		t.Error("Expected slug to fail capitalization check")
	}
	if IsCapitalized("2025 opening party") {
		t.Error("Expected lowercase after digits to fail")
	}
	if !IsCapitalized("2025 Opening Party") {
		t.Error("Expected first letter check to skip leading digits")
	}
}

// TestHasDateLikeToken tests date token spotting in free text
func TestHasDateLikeToken(t *testing.T) {
	positives := []string{
		"Opening Party 15 July",
		"July 15 at Amnesia",
		"15/07/2025 23:00",
		"Carl Cox 2025-07-15",
		"Closing 15.07.25",
	}
	for _, s := range positives {
		if !HasDateLikeToken(s) {
			t.Errorf("Expected %q to contain a date-like token", s)
		}
	}

	negatives := []string{"Carl Cox at Privilege", "", "Every summer"}
	for _, s := range negatives {
		if HasDateLikeToken(s) {
			t.Errorf("Expected %q to contain no date-like token", s)
		}
	}
}

// TestTruncate tests rune-safe truncation
func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Expected unmodified string, got %q", got)
	}
	if got := Truncate("a longer description", 8); got != "a longer..." {
		t.Errorf("Expected truncated string, got %q", got)
	}
}
