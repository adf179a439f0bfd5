package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/normalize"
)

// SiteSelectorStrategy applies hand-curated CSS selector sets keyed by
// source domain. It only fires for pages whose domain has a registered
// config, so on unknown sources it is a no-op and the generic
// strategies carry the page.
type SiteSelectorStrategy struct {
	configs map[string]SiteConfig
}

// NewSiteSelectorStrategy creates the strategy from a selector set
// list. Later entries for the same domain win.
func NewSiteSelectorStrategy(configs []SiteConfig) *SiteSelectorStrategy {
	byDomain := make(map[string]SiteConfig, len(configs))
	for _, config := range configs {
		byDomain[strings.ToLower(config.Domain)] = config
	}
	return &SiteSelectorStrategy{configs: byDomain}
}

// Name implements Strategy
func (s *SiteSelectorStrategy) Name() string { return StrategySiteSelector }

// Priority implements Strategy
func (s *SiteSelectorStrategy) Priority() int { return PrioritySiteSelector }

// Extract implements Strategy
func (s *SiteSelectorStrategy) Extract(doc *Document, ctx Context) []models.RawField {
	config, ok := s.configFor(ctx.SourceDomain)
	if !ok {
		return nil
	}

	var fields []models.RawField
	for name, rule := range config.Fields {
		confidence := rule.Confidence
		if confidence == 0 {
			confidence = defaultSelectorConfidence
		}

		if rule.All {
			values := selectAll(doc, rule)
			if len(values) > 0 {
				fields = append(fields, multiField(name, values, confidence, StrategySiteSelector, PrioritySiteSelector))
			}
			continue
		}

		if value := selectOne(doc, rule); value != "" {
			fields = append(fields, field(name, value, confidence, StrategySiteSelector, PrioritySiteSelector))
		}
	}

	return fields
}

// configFor matches the source domain against registered configs,
// tolerating a www. prefix on either side.
func (s *SiteSelectorStrategy) configFor(domain string) (SiteConfig, bool) {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))
	if config, ok := s.configs[domain]; ok {
		return config, true
	}
	config, ok := s.configs["www."+domain]
	return config, ok
}

func selectOne(doc *Document, rule FieldSelector) string {
	sel := doc.Find(rule.Selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return ruleValue(sel, rule)
}

func selectAll(doc *Document, rule FieldSelector) []string {
	var values []string
	seen := make(map[string]bool)

	doc.Find(rule.Selector).Each(func(_ int, sel *goquery.Selection) {
		value := ruleValue(sel, rule)
		if value == "" || seen[value] {
			return
		}
		seen[value] = true
		values = append(values, value)
	})

	return values
}

func ruleValue(sel *goquery.Selection, rule FieldSelector) string {
	if rule.Attr != "" {
		return normalize.CleanText(sel.AttrOr(rule.Attr, ""))
	}
	return normalize.CleanText(sel.Text())
}
