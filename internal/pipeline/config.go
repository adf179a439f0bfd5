// Package pipeline drives one document through extraction, mapping and
// scoring, with a bounded escalation loop when quality falls short.
package pipeline

import (
	"time"

	"ibiza-events-aggregator/internal/extract"
	"ibiza-events-aggregator/internal/normalize"
	"ibiza-events-aggregator/internal/quality"
)

// Config is the single configuration object for a pipeline run. It is
// constructed once and passed in; the pipeline holds no global state.
type Config struct {
	// QualityThreshold is the overall score a record must reach to be
	// accepted without escalation.
	QualityThreshold float64

	// MaxEscalations bounds the re-extraction loop
	MaxEscalations int

	// CompletenessThreshold is the fraction of required fields that
	// must be present before escalation stops being warranted.
	CompletenessThreshold float64

	// Scoring carries the dimension weights and plausibility bounds
	Scoring quality.Config

	// DefaultTimezone interprets local datetimes that carry no offset
	DefaultTimezone string

	// MaxTicketTiers caps the tier list kept from noisy sources
	MaxTicketTiers int

	// StrategyOrder names the extraction strategies to run, in order.
	// Nil means the full default chain.
	StrategyOrder []string

	// SiteConfigs holds the per-site selector sets; nil means only the
	// generic strategies run.
	SiteConfigs []extract.SiteConfig

	// Timeout bounds one document's run when the caller passes no
	// deadline of its own. Zero means no limit.
	Timeout time.Duration
}

// DefaultConfig returns the production defaults. The numeric
// thresholds are business tuning inherited from operating the scraper,
// kept configurable rather than baked in.
func DefaultConfig() Config {
	return Config{
		QualityThreshold:      0.7,
		MaxEscalations:        2,
		CompletenessThreshold: 2.0 / 3.0,
		Scoring:               quality.DefaultConfig(),
		DefaultTimezone:       normalize.DefaultTimezoneName,
		MaxTicketTiers:        3,
		StrategyOrder:         extract.DefaultStrategyOrder,
		SiteConfigs:           extract.DefaultSiteConfigs(),
	}
}

// normalized fills zero-valued fields from the defaults so a partially
// specified config behaves sensibly.
func (c Config) normalized() Config {
	defaults := DefaultConfig()
	if c.QualityThreshold == 0 {
		c.QualityThreshold = defaults.QualityThreshold
	}
	if c.MaxEscalations == 0 {
		c.MaxEscalations = defaults.MaxEscalations
	}
	if c.CompletenessThreshold == 0 {
		c.CompletenessThreshold = defaults.CompletenessThreshold
	}
	if c.Scoring.Weights == nil {
		c.Scoring = defaults.Scoring
	}
	if c.DefaultTimezone == "" {
		c.DefaultTimezone = defaults.DefaultTimezone
	}
	if c.MaxTicketTiers == 0 {
		c.MaxTicketTiers = defaults.MaxTicketTiers
	}
	if c.StrategyOrder == nil {
		c.StrategyOrder = defaults.StrategyOrder
	}
	// nil means "use the built-ins"; pass an empty non-nil slice to
	// disable per-site selectors entirely.
	if c.SiteConfigs == nil {
		c.SiteConfigs = defaults.SiteConfigs
	}
	return c
}
