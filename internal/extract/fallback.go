package extract

import (
	"github.com/PuerkitoBio/goquery"

	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/normalize"
)

// FallbackSelectorStrategy probes class-name and element conventions
// that hold across many listing sites (time elements with datetime
// attributes, venue/lineup class names). It is not curated per site,
// so it runs only on escalation passes and stays below the curated
// selector tier in confidence.
type FallbackSelectorStrategy struct{}

// NewFallbackSelectorStrategy creates the fallback selector strategy
func NewFallbackSelectorStrategy() *FallbackSelectorStrategy {
	return &FallbackSelectorStrategy{}
}

// Name implements Strategy
func (s *FallbackSelectorStrategy) Name() string { return StrategyFallbackSelector }

// Priority implements Strategy
func (s *FallbackSelectorStrategy) Priority() int { return PriorityFallbackSelector }

// Extract implements Strategy
func (s *FallbackSelectorStrategy) Extract(doc *Document, ctx Context) []models.RawField {
	var fields []models.RawField

	add := func(name, value string, confidence float64) {
		value = normalize.CleanText(value)
		if value != "" {
			fields = append(fields, field(name, value, confidence, StrategyFallbackSelector, PriorityFallbackSelector))
		}
	}

	if datetime := doc.Find("time[datetime]").First().AttrOr("datetime", ""); datetime != "" {
		add(models.FieldStartDatetime, datetime, 0.55)
	}

	add(models.FieldVenueName, firstText(doc, `[class*="venue"], [class*="club-name"], [class*="location-name"]`), 0.45)
	add(models.FieldPriceText, firstText(doc, `[class*="price"]`), 0.45)

	if performers := collectTexts(doc, `[class*="lineup"] a, [class*="lineup"] li, [class*="artist-name"]`); len(performers) > 0 {
		fields = append(fields, multiField(models.FieldPerformers, performers, 0.45, StrategyFallbackSelector, PriorityFallbackSelector))
	}

	return fields
}

func firstText(doc *Document, selector string) string {
	return doc.Find(selector).First().Text()
}

func collectTexts(doc *Document, selector string) []string {
	var values []string
	seen := make(map[string]bool)

	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		value := normalize.CleanText(sel.Text())
		if value == "" || len(value) > 60 || seen[value] {
			return
		}
		seen[value] = true
		values = append(values, value)
	})

	return values
}
