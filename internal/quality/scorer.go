// Package quality scores canonical events across five weighted
// dimensions and flags the validation issues it finds along the way.
package quality

import (
	"log"
	"time"
	"unicode/utf8"

	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/normalize"
)

// Config tunes the scorer. Zero values are replaced by the defaults
// from DefaultConfig, so callers can override selectively.
type Config struct {
	// Weights per dimension; dimensions absent from the event are
	// dropped from both sides of the weighted average.
	Weights map[string]float64

	// Plausible single-ticket price band in event currency
	PriceMin float64
	PriceMax float64

	// Geographic sanity box for venue coordinates
	GeoBounds normalize.BoundingBox

	// Start dates further out than this are flagged as suspect
	MaxFutureDays int

	// Minimum overall score per quality level; anything below Poor
	// is reported as very_poor
	Levels LevelThresholds
}

// LevelThresholds holds the minimum overall score for each named
// quality level.
type LevelThresholds struct {
	Excellent float64
	Good      float64
	Fair      float64
	Poor      float64
}

// DefaultConfig returns the production scoring configuration,
// calibrated for Ibiza club listings.
func DefaultConfig() Config {
	return Config{
		Weights: map[string]float64{
			models.DimensionTitle:     0.25,
			models.DimensionDatetime:  0.25,
			models.DimensionVenue:     0.20,
			models.DimensionLineup:    0.15,
			models.DimensionTicketing: 0.15,
		},
		PriceMin:      20,
		PriceMax:      200,
		GeoBounds:     normalize.IbizaBounds,
		MaxFutureDays: 730,
		Levels: LevelThresholds{
			Excellent: 0.9,
			Good:      0.8,
			Fair:      0.7,
			Poor:      0.6,
		},
	}
}

// Scorer evaluates canonical events. Scoring is deterministic: date
// checks compare against the event's scrape timestamp, never the wall
// clock, so re-scoring stored events yields identical reports.
type Scorer struct {
	config Config
}

// NewScorer creates a scorer, filling unset config fields from the
// defaults.
func NewScorer(config Config) *Scorer {
	defaults := DefaultConfig()
	if config.Weights == nil {
		config.Weights = defaults.Weights
	}
	if config.PriceMin == 0 && config.PriceMax == 0 {
		config.PriceMin = defaults.PriceMin
		config.PriceMax = defaults.PriceMax
	}
	if config.GeoBounds == (normalize.BoundingBox{}) {
		config.GeoBounds = defaults.GeoBounds
	}
	if config.MaxFutureDays == 0 {
		config.MaxFutureDays = defaults.MaxFutureDays
	}
	if config.Levels == (LevelThresholds{}) {
		config.Levels = defaults.Levels
	}
	return &Scorer{config: config}
}

// Score produces the quality report for one event. Every dimension
// score lands in [0, 1] and the overall score is the weighted average
// over the dimensions the event actually has.
func (s *Scorer) Score(event *models.CanonicalEvent) models.QualityReport {
	report := models.QualityReport{
		FieldScores: make(map[string]float64),
	}

	reference := event.Provenance.ScrapedAt
	if reference.IsZero() {
		reference = time.Now().UTC()
	}

	s.scoreTitle(event, &report)
	s.scoreDatetime(event, reference, &report)
	s.scoreVenue(event, &report)
	s.scoreLineup(event, &report)
	s.scoreTicketing(event, &report)

	report.OverallScore = s.weightedOverall(report.FieldScores)
	report.Level = s.levelFor(report.OverallScore)

	log.Printf("[QUALITY] event=%s score=%.2f level=%s flags=%d",
		event.EventID, report.OverallScore, report.Level, len(report.Flags))

	return report
}

// weightedOverall renormalizes the weighted sum over present
// dimensions. An event with only title and datetime is judged on how
// well it does title and datetime, not punished twice for the missing
// rest; the absences are already recorded as flags.
func (s *Scorer) weightedOverall(scores map[string]float64) float64 {
	var sum, weightSum float64
	for dimension, score := range scores {
		weight := s.config.Weights[dimension]
		sum += score * weight
		weightSum += weight
	}
	if weightSum == 0 {
		return 0
	}
	return clamp01(sum / weightSum)
}

func (s *Scorer) scoreTitle(event *models.CanonicalEvent, report *models.QualityReport) {
	title := event.Title
	if title == "" {
		// Mapping rejects untitled events, so this is belt and braces
		report.Flags = append(report.Flags, models.QualityFlag{Field: "title", Issue: models.IssueMissingTitle})
		return
	}

	score := 0.4
	if utf8.RuneCountInString(title) >= 8 {
		score += 0.3
	} else {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "title", Issue: models.IssueTitleTooShort})
	}
	if normalize.WordCount(title) >= 2 {
		score += 0.2
	}
	if normalize.IsCapitalized(title) {
		score += 0.1
	}
	if normalize.HasDateLikeToken(title) {
		score += 0.1
	}
	if normalize.SpecialCharRatio(title) > 0.3 {
		score /= 2
	}

	report.FieldScores[models.DimensionTitle] = clamp01(score)
}

func (s *Scorer) scoreDatetime(event *models.CanonicalEvent, reference time.Time, report *models.QualityReport) {
	dt := event.DateTime
	if dt == nil || (dt.StartUTC == nil && dt.DisplayText == "") {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "datetime", Issue: models.IssueMissingDatetime})
		return
	}

	if dt.StartUTC == nil {
		// Raw date text survived extraction but never parsed
		report.Flags = append(report.Flags, models.QualityFlag{Field: "datetime", Issue: models.IssueUnparseableDate})
		report.FieldScores[models.DimensionDatetime] = 0.3
		return
	}

	score := 0.6
	start := *dt.StartUTC

	horizon := reference.AddDate(0, 0, s.config.MaxFutureDays)
	if start.After(horizon) {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "datetime", Issue: models.IssueDateTooFarFuture})
	} else {
		score += 0.2
	}

	if start.Before(reference.AddDate(0, 0, -1)) {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "datetime", Issue: models.IssueDateInPast})
	} else {
		score += 0.2
	}

	report.FieldScores[models.DimensionDatetime] = clamp01(score)
}

func (s *Scorer) scoreVenue(event *models.CanonicalEvent, report *models.QualityReport) {
	venue := event.Venue
	if venue == nil || venue.Name == "" {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "venue", Issue: models.IssueMissingLocation})
		return
	}

	score := 0.5
	if venue.Address != "" {
		score += 0.25
	} else {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "venue", Issue: models.IssueMissingAddress})
	}

	if coords := venue.Coordinates; coords != nil {
		if s.config.GeoBounds.Contains(coords.Lat, coords.Lng) {
			score += 0.25
		} else {
			report.Flags = append(report.Flags, models.QualityFlag{Field: "venue", Issue: models.IssueCoordsOutOfBounds})
		}
	}

	report.FieldScores[models.DimensionVenue] = clamp01(score)
}

func (s *Scorer) scoreLineup(event *models.CanonicalEvent, report *models.QualityReport) {
	performers := event.Performers
	if len(performers) == 0 {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "lineup", Issue: models.IssueMissingLineup})
		return
	}

	score := 0.6
	hasHeadliner := false
	for _, performer := range performers {
		if performer.Role == models.RoleHeadliner {
			hasHeadliner = true
			break
		}
	}
	if hasHeadliner {
		score += 0.2
	} else {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "lineup", Issue: models.IssueNoHeadliner})
	}
	if len(performers) >= 2 {
		score += 0.2
	}

	report.FieldScores[models.DimensionLineup] = clamp01(score)
}

func (s *Scorer) scoreTicketing(event *models.CanonicalEvent, report *models.QualityReport) {
	ticketing := event.Ticketing
	if ticketing == nil {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "ticketing", Issue: models.IssueMissingTicketInfo})
		return
	}

	if ticketing.IsFree {
		report.FieldScores[models.DimensionTicketing] = 1.0
		return
	}

	if ticketing.MinPrice == nil {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "ticketing", Issue: models.IssueUnparseablePrice})
		report.FieldScores[models.DimensionTicketing] = 0.4
		return
	}

	score := 0.6
	price := *ticketing.MinPrice
	if price >= s.config.PriceMin && price <= s.config.PriceMax {
		score += 0.2
	} else {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "ticketing", Issue: models.IssueUnusualPriceRange})
	}
	if ticketing.Currency != "" {
		score += 0.1
	} else {
		report.Flags = append(report.Flags, models.QualityFlag{Field: "ticketing", Issue: models.IssueMissingCurrency})
	}
	if ticketing.PurchaseURL != "" {
		score += 0.1
	}

	report.FieldScores[models.DimensionTicketing] = clamp01(score)
}

func (s *Scorer) levelFor(score float64) string {
	switch {
	case score >= s.config.Levels.Excellent:
		return models.LevelExcellent
	case score >= s.config.Levels.Good:
		return models.LevelGood
	case score >= s.config.Levels.Fair:
		return models.LevelFair
	case score >= s.config.Levels.Poor:
		return models.LevelPoor
	default:
		return models.LevelVeryPoor
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
