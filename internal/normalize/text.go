// Package normalize holds the pure helpers the pipeline uses to turn
// scraped fragments into canonical values: text cleanup, date/time
// parsing to UTC, price/currency parsing and coordinate validation.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Tokens that look like a date inside free text: "15 July",
	// "July 15", "15/07/2025", "2025-07-15", "15.07.25"
	dateTokenRe = regexp.MustCompile(`(?i)\b(\d{1,2}(st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*|(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2}|\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`)
)

// CleanText trims and collapses all whitespace runs (including
// newlines from HTML text extraction) into single spaces.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Truncate cuts a string to max runes, appending an ellipsis marker
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// WordCount counts whitespace-separated words in cleaned text
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// SpecialCharRatio returns the fraction of characters that are neither
// letters, digits nor common punctuation. Scrape artifacts (template
// braces, control characters, stray markup) drive this ratio up.
func SpecialCharRatio(s string) float64 {
	if s == "" {
		return 0
	}

	special := 0
	total := 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '\'', '-', ',', '.', ':', '&', '+', '!', '?', '(', ')':
			continue
		}
		special++
	}

	return float64(special) / float64(total)
}

// IsCapitalized reports whether the first letter of the text is upper
// case (titles scraped from templates are often all-lowercase slugs).
func IsCapitalized(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return unicode.IsUpper(r)
		}
	}
	return false
}

// HasDateLikeToken reports whether free text contains something that
// reads as a date.
func HasDateLikeToken(s string) bool {
	return dateTokenRe.MatchString(s)
}
