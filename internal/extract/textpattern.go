package extract

import (
	"regexp"
	"strings"

	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/normalize"
)

// TextPatternStrategy mines the page's visible text with regular
// expressions. It is the last resort for pages with no usable markup,
// so everything it produces carries low confidence. The aggressive
// variant, used on escalation passes, accepts looser matches at even
// lower confidence.
type TextPatternStrategy struct {
	aggressive bool
}

// NewTextPatternStrategy creates the text miner. Pass aggressive=true
// for the escalation variant.
func NewTextPatternStrategy(aggressive bool) *TextPatternStrategy {
	return &TextPatternStrategy{aggressive: aggressive}
}

// Name implements Strategy
func (s *TextPatternStrategy) Name() string { return StrategyTextPattern }

// Priority implements Strategy
func (s *TextPatternStrategy) Priority() int { return PriorityTextPattern }

var (
	// "14 June 2026", "14th June", "June 14, 2026"
	longDateRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s*(\d{4})?\b`)
	usDateRe   = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s*(\d{4})?\b`)
	// "14/06/2026", "2026-06-14"
	numericDateRe = regexp.MustCompile(`\b(\d{1,2}[/.]\d{1,2}[/.]\d{4}|\d{4}-\d{2}-\d{2})\b`)

	priceTextRe = regexp.MustCompile(`(?i)(?:from\s+)?(?:€|£|\$)\s?\d+(?:[.,]\d{2})?|\b\d+(?:[.,]\d{2})?\s?(?:€|euros?)\b`)
	freeTextRe  = regexp.MustCompile(`(?i)\b(free\s+entry|entrada\s+libre|free\s+admission|no\s+cover)\b`)

	labeledVenueRe  = regexp.MustCompile(`(?i)\b(?:venue|location|club)\s*:\s*([A-Z][\w&'. -]{2,40})`)
	labeledLineupRe = regexp.MustCompile(`(?i)\b(?:line[\s-]?up|djs?|artists?)\s*:\s*([^\n.]{3,160})`)

	// Aggressive only. "at Amnesia", "@ Pacha" matches too much on
	// normal pages to run by default.
	atVenueRe   = regexp.MustCompile(`(?:\bat\s+|@\s?)([A-ZÀ-Ý][\p{L}&']+(?:\s+[A-ZÀ-Ý][\p{L}&']+){0,3})`)
	monthYearRe = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b`)

	nameListSplitRe = regexp.MustCompile(`\s*(?:,|&|\band\b|/|\|)\s*`)
)

// Extract implements Strategy
func (s *TextPatternStrategy) Extract(doc *Document, ctx Context) []models.RawField {
	text := doc.VisibleText()
	if text == "" {
		return nil
	}

	var fields []models.RawField
	add := func(name, value string, confidence float64) {
		value = normalize.CleanText(value)
		if value != "" {
			fields = append(fields, field(name, value, confidence, StrategyTextPattern, PriorityTextPattern))
		}
	}

	if heading := normalize.CleanText(doc.Find("h1").First().Text()); heading != "" {
		add(models.FieldTitle, heading, 0.5)
	}

	if date := firstDateMatch(text); date != "" {
		add(models.FieldDateText, date, 0.45)
	}

	if price := priceTextRe.FindString(text); price != "" {
		add(models.FieldPriceText, price, 0.4)
	} else if freeTextRe.MatchString(text) {
		add(models.FieldIsFree, "true", 0.4)
	}

	if m := labeledVenueRe.FindStringSubmatch(text); m != nil {
		add(models.FieldVenueName, m[1], 0.45)
	}

	if m := labeledLineupRe.FindStringSubmatch(text); m != nil {
		if names := splitNameList(m[1]); len(names) > 0 {
			fields = append(fields, multiField(models.FieldPerformers, names, 0.4, StrategyTextPattern, PriorityTextPattern))
		}
	}

	if s.aggressive {
		fields = append(fields, s.extractAggressive(text)...)
	}

	return fields
}

// extractAggressive applies the looser patterns. Confidence stays
// below every normal-pass tier so these matches never displace fields
// already extracted.
func (s *TextPatternStrategy) extractAggressive(text string) []models.RawField {
	var fields []models.RawField
	add := func(name, value string, confidence float64) {
		value = normalize.CleanText(value)
		if value != "" {
			fields = append(fields, field(name, value, confidence, StrategyTextPattern, PriorityTextPattern))
		}
	}

	if m := atVenueRe.FindStringSubmatch(text); m != nil {
		add(models.FieldVenueName, strings.TrimRight(m[1], ". "), 0.3)
	}

	// A bare month mention is better than nothing on an escalation pass
	if m := monthYearRe.FindString(text); m != "" {
		add(models.FieldDateText, m, 0.3)
	}

	return fields
}

func firstDateMatch(text string) string {
	if m := longDateRe.FindString(text); m != "" {
		return m
	}
	if m := usDateRe.FindString(text); m != "" {
		return m
	}
	return numericDateRe.FindString(text)
}

// splitNameList breaks a lineup fragment on the usual separators and
// drops entries that look like prose rather than act names.
func splitNameList(raw string) []string {
	parts := nameListSplitRe.Split(raw, -1)

	var names []string
	for _, part := range parts {
		name := normalize.CleanText(part)
		if name == "" || len(name) > 60 || normalize.WordCount(name) > 6 {
			continue
		}
		// Digits or currency marks mean the capture ran into ticket copy
		if strings.ContainsAny(name, "0123456789€£$") {
			continue
		}
		names = append(names, name)
	}
	return names
}
