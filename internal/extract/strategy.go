package extract

import "ibiza-events-aggregator/internal/models"

// Strategy names as they appear in field provenance and diagnostics
const (
	StrategyStructuredData   = "structured_data"
	StrategySiteSelector     = "site_selector"
	StrategyMetaTag          = "meta_tag"
	StrategyTextPattern      = "text_pattern"
	StrategyFallbackSelector = "fallback_selector"
)

// Strategy priorities. Lower runs first and wins confidence ties.
const (
	PriorityStructuredData   = 1
	PrioritySiteSelector     = 2
	PriorityMetaTag          = 3
	PriorityTextPattern      = 4
	PriorityFallbackSelector = 5
)

// Strategy extracts raw fields from one document. Implementations must
// be side-effect free and must not panic; a page the strategy cannot
// handle yields an empty slice, never an error.
type Strategy interface {
	Name() string
	Priority() int
	Extract(doc *Document, ctx Context) []models.RawField
}

// DefaultStrategyOrder is the standard strategy chain by name, in
// priority order.
var DefaultStrategyOrder = []string{
	StrategyStructuredData,
	StrategySiteSelector,
	StrategyMetaTag,
	StrategyTextPattern,
}

// DefaultStrategies returns the standard strategy chain in priority
// order. Site selector configs may be nil when no per-site selectors
// are registered.
func DefaultStrategies(configs []SiteConfig) []Strategy {
	return StrategiesByName(DefaultStrategyOrder, configs)
}

// StrategiesByName resolves an ordered list of strategy names into the
// chain to run, so callers can restrict or reorder extraction. Unknown
// names are skipped.
func StrategiesByName(names []string, configs []SiteConfig) []Strategy {
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		switch name {
		case StrategyStructuredData:
			strategies = append(strategies, NewStructuredDataStrategy())
		case StrategySiteSelector:
			strategies = append(strategies, NewSiteSelectorStrategy(configs))
		case StrategyMetaTag:
			strategies = append(strategies, NewMetaTagStrategy())
		case StrategyTextPattern:
			strategies = append(strategies, NewTextPatternStrategy(false))
		case StrategyFallbackSelector:
			strategies = append(strategies, NewFallbackSelectorStrategy())
		}
	}
	return strategies
}

// EscalationStrategies returns the supplemental chain used on
// re-extraction passes: uncurated fallback selectors plus the
// aggressive text miner. Both accept looser matches at lower
// confidence, so earlier higher-confidence fields survive the merge
// untouched.
func EscalationStrategies() []Strategy {
	return []Strategy{
		NewTextPatternStrategy(true),
		NewFallbackSelectorStrategy(),
	}
}

func field(name, value string, confidence float64, strategy string, priority int) models.RawField {
	return models.RawField{
		Name:       name,
		Value:      value,
		Confidence: confidence,
		Strategy:   strategy,
		Priority:   priority,
	}
}

func multiField(name string, values []string, confidence float64, strategy string, priority int) models.RawField {
	return models.RawField{
		Name:       name,
		Values:     values,
		Confidence: confidence,
		Strategy:   strategy,
		Priority:   priority,
	}
}
