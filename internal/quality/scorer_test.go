package quality

import (
	"math"
	"testing"
	"time"

	"ibiza-events-aggregator/internal/models"
)

var scrapedAt = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func richEvent() *models.CanonicalEvent {
	start := time.Date(2026, 6, 14, 21, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 15, 4, 0, 0, 0, time.UTC)
	price := 60.0

	return &models.CanonicalEvent{
		EventID: "evt_test",
		Title:   "Glitterbox Opening Party",
		Type:    models.TypeClubNight,
		Status:  models.StatusScheduled,
		DateTime: &models.EventDateTime{
			StartUTC: &start,
			EndUTC:   &end,
			Timezone: "Europe/Madrid",
		},
		Venue: &models.Venue{
			Name:        "Hï Ibiza",
			Address:     "Platja d'en Bossa, Sant Josep de sa Talaia",
			Coordinates: &models.Coordinates{Lat: 38.8824, Lng: 1.4102},
		},
		Performers: []models.Performer{
			{Name: "Purple Disco Machine", Role: models.RoleHeadliner},
			{Name: "Melvo Baptiste", Role: models.RoleSupport},
		},
		Ticketing: &models.Ticketing{
			MinPrice:    &price,
			Currency:    "EUR",
			PurchaseURL: "https://tickets.example.com/glitterbox",
		},
		Provenance: models.Provenance{ScrapedAt: scrapedAt},
	}
}

func TestScoreRichEvent(t *testing.T) {
	report := NewScorer(Config{}).Score(richEvent())

	if math.Abs(report.OverallScore-1.0) > 1e-9 {
		t.Errorf("overall = %f, want 1.0", report.OverallScore)
	}
	if report.Level != models.LevelExcellent {
		t.Errorf("level = %q", report.Level)
	}
	if len(report.Flags) != 0 {
		t.Errorf("flags = %v, want none", report.Flags)
	}
	for dimension, score := range report.FieldScores {
		if math.Abs(score-1.0) > 1e-9 {
			t.Errorf("dimension %s = %f, want 1.0", dimension, score)
		}
	}
}

func TestScoreSparseEvent(t *testing.T) {
	event := &models.CanonicalEvent{
		EventID:    "evt_sparse",
		Title:      "Event",
		Provenance: models.Provenance{ScrapedAt: scrapedAt},
	}

	report := NewScorer(Config{}).Score(event)

	// Present only, one word, capitalized, too short: 0.4 + 0.1
	if math.Abs(report.OverallScore-0.5) > 1e-9 {
		t.Errorf("overall = %f, want 0.5", report.OverallScore)
	}
	if report.Level != models.LevelVeryPoor {
		t.Errorf("level = %q", report.Level)
	}

	for _, issue := range []string{
		models.IssueTitleTooShort,
		models.IssueMissingDatetime,
		models.IssueMissingLocation,
		models.IssueMissingLineup,
		models.IssueMissingTicketInfo,
	} {
		if !report.HasFlag(issue) {
			t.Errorf("missing flag %s", issue)
		}
	}

	if len(report.FieldScores) != 1 {
		t.Errorf("field_scores = %v, absent dimensions must not appear", report.FieldScores)
	}
}

func TestLevelThresholdsConfigurable(t *testing.T) {
	event := &models.CanonicalEvent{
		EventID:    "evt_sparse",
		Title:      "Event",
		Provenance: models.Provenance{ScrapedAt: scrapedAt},
	}

	// Default bands put a 0.5 score in very_poor
	report := NewScorer(Config{}).Score(event)
	if report.Level != models.LevelVeryPoor {
		t.Errorf("level = %q, want %q under default thresholds", report.Level, models.LevelVeryPoor)
	}

	// Loosened bands move the same score up to fair
	loose := Config{Levels: LevelThresholds{Excellent: 0.9, Good: 0.7, Fair: 0.5, Poor: 0.3}}
	report = NewScorer(loose).Score(event)
	if report.Level != models.LevelFair {
		t.Errorf("level = %q, want %q under loosened thresholds", report.Level, models.LevelFair)
	}
}

func TestRenormalizationOverPresentDimensions(t *testing.T) {
	event := richEvent()
	event.Performers = nil
	event.Ticketing = nil

	report := NewScorer(Config{}).Score(event)
	weights := DefaultConfig().Weights

	var sum, weightSum float64
	for dimension, score := range report.FieldScores {
		sum += score * weights[dimension]
		weightSum += weights[dimension]
	}
	want := sum / weightSum

	if math.Abs(report.OverallScore-want) > 1e-9 {
		t.Errorf("overall = %f, want renormalized %f", report.OverallScore, want)
	}
	if _, ok := report.FieldScores[models.DimensionLineup]; ok {
		t.Error("lineup must be absent from field_scores")
	}
}

func TestScoreBoundsOnGarbage(t *testing.T) {
	farFuture := scrapedAt.AddDate(10, 0, 0)
	badPrice := -5.0

	event := &models.CanonicalEvent{
		EventID:  "evt_garbage",
		Title:    "!!! ### $$$ %%%",
		DateTime: &models.EventDateTime{StartUTC: &farFuture},
		Venue: &models.Venue{
			Name:        "X",
			Coordinates: &models.Coordinates{Lat: 51.5, Lng: -0.12},
		},
		Ticketing:  &models.Ticketing{MinPrice: &badPrice},
		Provenance: models.Provenance{ScrapedAt: scrapedAt},
	}

	report := NewScorer(Config{}).Score(event)

	if report.OverallScore < 0 || report.OverallScore > 1 {
		t.Errorf("overall = %f out of bounds", report.OverallScore)
	}
	for dimension, score := range report.FieldScores {
		if score < 0 || score > 1 {
			t.Errorf("dimension %s = %f out of bounds", dimension, score)
		}
	}

	if !report.HasFlag(models.IssueDateTooFarFuture) {
		t.Error("missing date_too_far_future flag")
	}
	if !report.HasFlag(models.IssueCoordsOutOfBounds) {
		t.Error("missing coordinates_out_of_bounds flag")
	}
	if !report.HasFlag(models.IssueUnusualPriceRange) {
		t.Error("missing unusual_price_range flag")
	}
	if !report.HasFlag(models.IssueMissingCurrency) {
		t.Error("missing missing_currency flag")
	}
}

func TestDateChecksUseScrapeTime(t *testing.T) {
	event := richEvent()

	// Start is after the scrape even though it is long past by now
	oldScrape := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	oldStart := time.Date(2020, 5, 20, 22, 0, 0, 0, time.UTC)
	event.Provenance.ScrapedAt = oldScrape
	event.DateTime.StartUTC = &oldStart

	report := NewScorer(Config{}).Score(event)
	if report.HasFlag(models.IssueDateInPast) {
		t.Error("date after scrape time must not be flagged as past")
	}

	// And a date before the scrape is flagged regardless of wall clock
	pastStart := oldScrape.AddDate(0, -1, 0)
	event.DateTime.StartUTC = &pastStart
	report = NewScorer(Config{}).Score(event)
	if !report.HasFlag(models.IssueDateInPast) {
		t.Error("date before scrape time must be flagged")
	}
	if got := report.FieldScores[models.DimensionDatetime]; math.Abs(got-0.8) > 1e-9 {
		t.Errorf("past date dimension score = %f, want 0.8", got)
	}
}

func TestUnparseableDateText(t *testing.T) {
	event := richEvent()
	event.DateTime = &models.EventDateTime{DisplayText: "every full moon"}

	report := NewScorer(Config{}).Score(event)
	if !report.HasFlag(models.IssueUnparseableDate) {
		t.Error("missing unparseable_date flag")
	}
	if got := report.FieldScores[models.DimensionDatetime]; got != 0.3 {
		t.Errorf("datetime score = %f, want 0.3 for text-only date", got)
	}
}

func TestFreeEventTicketing(t *testing.T) {
	event := richEvent()
	event.Ticketing = &models.Ticketing{IsFree: true}

	report := NewScorer(Config{}).Score(event)
	if got := report.FieldScores[models.DimensionTicketing]; got != 1.0 {
		t.Errorf("ticketing score = %f, free events need no price detail", got)
	}
}

func TestLineupFlags(t *testing.T) {
	event := richEvent()
	event.Performers = []models.Performer{{Name: "Solo DJ", Role: models.RoleSupport}}

	report := NewScorer(Config{}).Score(event)
	if !report.HasFlag(models.IssueNoHeadliner) {
		t.Error("missing no_headliner flag")
	}
	if got := report.FieldScores[models.DimensionLineup]; math.Abs(got-0.6) > 1e-9 {
		t.Errorf("lineup score = %f, want 0.6 for single unbilled act", got)
	}
}
