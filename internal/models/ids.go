package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// MissingComponentSentinel stands in for an absent id component so
// that "unknown venue" hashes differently from any real venue while
// keeping the id a pure function of its inputs.
const MissingComponentSentinel = "unknown"

// GenerateEventID derives the stable event identifier from the
// normalized (title, start date day, venue name, source domain) tuple.
// Identical inputs always yield the identical id, which is what makes
// the storage upsert idempotent across runs.
func GenerateEventID(title, startDay, venueName, sourceDomain string) string {
	input := strings.Join([]string{
		normalizeIDComponent(title),
		normalizeIDComponent(startDay),
		normalizeIDComponent(venueName),
		normalizeIDComponent(sourceDomain),
	}, "|")

	hash := sha256.Sum256([]byte(input))
	return "evt_" + hex.EncodeToString(hash[:])[:16]
}

// GenerateVenueID derives a stable venue identifier from its name
func GenerateVenueID(venueName string) string {
	normalized := normalizeIDComponent(venueName)
	hash := sha256.Sum256([]byte("venue|" + normalized))
	return "ven_" + hex.EncodeToString(hash[:])[:12]
}

// GenerateActID derives a stable performer identifier from its name
func GenerateActID(performerName string) string {
	normalized := normalizeIDComponent(performerName)
	hash := sha256.Sum256([]byte("act|" + normalized))
	return "act_" + hex.EncodeToString(hash[:])[:12]
}

// GenerateCanonicalID builds the human-readable slug form of the event
// identity, e.g. "carl-cox-at-privilege_2025-07-15_privilege-ibiza".
func GenerateCanonicalID(title, startDay, venueName string) string {
	parts := []string{
		slugify(title),
		slugify(startDay),
		slugify(venueName),
	}
	return strings.Join(parts, "_")
}

// normalizeIDComponent lowercases, trims, collapses whitespace and
// strips punctuation, substituting the sentinel for empty components.
func normalizeIDComponent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MissingComponentSentinel
	}

	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	normalized := strings.TrimSpace(b.String())
	if normalized == "" {
		return MissingComponentSentinel
	}
	return normalized
}

// slugify converts a component into a lowercase dash-separated token.
// Unlike normalizeIDComponent it keeps existing hyphens, so date
// components like "2025-07-15" survive intact.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MissingComponentSentinel
	}

	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case unicode.IsSpace(r) || r == '-':
			if !lastDash && b.Len() > 0 {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return MissingComponentSentinel
	}
	return slug
}

// CalculateDuplicateSimilarity calculates similarity between two events
// (0.0 to 1.0) for cross-source dedup diagnostics beyond the exact
// event_id match.
func CalculateDuplicateSimilarity(e1, e2 CanonicalEvent) float64 {
	score := 0.0
	maxScore := 4.0

	t1 := strings.ToLower(e1.Title)
	t2 := strings.ToLower(e2.Title)
	if t1 == t2 {
		score += 2.0
	} else if strings.Contains(t1, t2) || strings.Contains(t2, t1) {
		score += 1.0
	}

	if e1.Venue != nil && e2.Venue != nil {
		if strings.EqualFold(e1.Venue.Name, e2.Venue.Name) {
			score += 1.0
		} else if e1.Venue.Address != "" && e2.Venue.Address != "" &&
			strings.Contains(strings.ToLower(e1.Venue.Address), strings.ToLower(e2.Venue.Address)) {
			score += 0.5
		}
	}

	if e1.DateTime != nil && e2.DateTime != nil &&
		e1.DateTime.StartUTC != nil && e2.DateTime.StartUTC != nil {
		d1 := e1.DateTime.StartUTC.Format("2006-01-02")
		d2 := e2.DateTime.StartUTC.Format("2006-01-02")
		if d1 == d2 {
			score += 1.0
		}
	}

	return score / maxScore
}

// ExtractDomain extracts the bare domain name from a URL
func ExtractDomain(url string) string {
	domain := url
	if strings.HasPrefix(domain, "http://") {
		domain = domain[7:]
	} else if strings.HasPrefix(domain, "https://") {
		domain = domain[8:]
	}

	if idx := strings.Index(domain, "/"); idx != -1 {
		domain = domain[:idx]
	}

	domain = strings.TrimPrefix(domain, "www.")
	return domain
}

// FormatStartDay renders the day component used in the event id
func FormatStartDay(year int, month int, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
