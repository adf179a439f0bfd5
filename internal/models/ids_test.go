package models

import (
	"strings"
	"testing"
)

// TestGenerateEventIDDeterminism tests that identical inputs always
// yield the identical id across repeated calls
func TestGenerateEventIDDeterminism(t *testing.T) {
	id1 := GenerateEventID("Carl Cox at Privilege", "2025-07-15", "Privilege Ibiza", "ticketsibiza.com")
	id2 := GenerateEventID("Carl Cox at Privilege", "2025-07-15", "Privilege Ibiza", "ticketsibiza.com")

	if id1 != id2 {
		t.Errorf("Expected identical ids for identical inputs, got %s and %s", id1, id2)
	}
	if !strings.HasPrefix(id1, "evt_") {
		t.Errorf("Expected evt_ prefix, got %s", id1)
	}
	if len(id1) != len("evt_")+16 {
		t.Errorf("Expected 16 hex chars after prefix, got %s", id1)
	}
}

// TestGenerateEventIDNormalization tests that case, surrounding
// whitespace and punctuation do not change the id
func TestGenerateEventIDNormalization(t *testing.T) {
	base := GenerateEventID("Carl Cox at Privilege", "2025-07-15", "Privilege Ibiza", "ticketsibiza.com")

	variants := []struct {
		title string
		venue string
	}{
		{"  Carl Cox at Privilege  ", "Privilege Ibiza"},
		{"CARL COX AT PRIVILEGE", "privilege ibiza"},
		{"Carl Cox at Privilege!", "Privilege, Ibiza"},
		{"Carl  Cox   at  Privilege", "Privilege Ibiza"},
	}

	for _, v := range variants {
		id := GenerateEventID(v.title, "2025-07-15", v.venue, "ticketsibiza.com")
		if id != base {
			t.Errorf("Expected normalized variant (%q, %q) to hash to %s, got %s", v.title, v.venue, base, id)
		}
	}
}

// TestGenerateEventIDMissingComponents tests sentinel behavior for
// absent fields: an unknown venue must not collide with a different
// event that also has an unknown venue
func TestGenerateEventIDMissingComponents(t *testing.T) {
	a := GenerateEventID("Solomun +1", "2025-08-01", "", "pacha.com")
	b := GenerateEventID("Amelie Lens", "2025-08-01", "", "pacha.com")
	if a == b {
		t.Error("Expected different events with unknown venues to have different ids")
	}

	// Identical everything plus unknown venue must still be stable
	c := GenerateEventID("Solomun +1", "2025-08-01", "", "pacha.com")
	if a != c {
		t.Errorf("Expected stable id for repeated missing-venue input, got %s and %s", a, c)
	}

	// Empty string and whitespace both normalize to the sentinel
	d := GenerateEventID("Solomun +1", "2025-08-01", "   ", "pacha.com")
	if a != d {
		t.Error("Expected whitespace-only venue to hash like the missing sentinel")
	}
}

// TestGenerateCanonicalID tests the slug form of the identity
func TestGenerateCanonicalID(t *testing.T) {
	slug := GenerateCanonicalID("Carl Cox at Privilege", "2025-07-15", "Privilege Ibiza")
	expected := "carl-cox-at-privilege_2025-07-15_privilege-ibiza"
	if slug != expected {
		t.Errorf("Expected %q, got %q", expected, slug)
	}

	// Hyphens already present in a component survive slugging
	slug = GenerateCanonicalID("Co-Op Night", "2025-07-15", "DC-10")
	expected = "co-op-night_2025-07-15_dc-10"
	if slug != expected {
		t.Errorf("Expected %q, got %q", expected, slug)
	}

	slug = GenerateCanonicalID("Untitled", "", "")
	if !strings.Contains(slug, MissingComponentSentinel) {
		t.Errorf("Expected sentinel in slug for missing components, got %q", slug)
	}
}

// TestExtractDomain tests URL to domain reduction
func TestExtractDomain(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.ticketsibiza.com/event/carl-cox", "ticketsibiza.com"},
		{"http://pacha.com", "pacha.com"},
		{"https://clubtickets.com/es/ibiza", "clubtickets.com"},
	}

	for _, tt := range tests {
		if got := ExtractDomain(tt.url); got != tt.expected {
			t.Errorf("ExtractDomain(%q) = %q, expected %q", tt.url, got, tt.expected)
		}
	}
}

// TestCalculateDuplicateSimilarity tests the dedup diagnostic scoring
func TestCalculateDuplicateSimilarity(t *testing.T) {
	venue := &Venue{Name: "Amnesia"}
	e1 := CanonicalEvent{Title: "Elrow Opening Party", Venue: venue}
	e2 := CanonicalEvent{Title: "Elrow Opening Party", Venue: venue}

	if sim := CalculateDuplicateSimilarity(e1, e2); sim < 0.75 {
		t.Errorf("Expected high similarity for matching title and venue, got %.2f", sim)
	}

	e3 := CanonicalEvent{Title: "Completely Different", Venue: &Venue{Name: "DC10"}}
	if sim := CalculateDuplicateSimilarity(e1, e3); sim > 0.25 {
		t.Errorf("Expected low similarity for different events, got %.2f", sim)
	}
}
