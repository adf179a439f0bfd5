package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/normalize"
)

// StructuredDataStrategy reads schema.org Event markup, JSON-LD first
// and microdata as a fallback. Publisher-declared data is the most
// trustworthy source on a page, so extracted fields carry the highest
// confidences in the chain.
type StructuredDataStrategy struct{}

// NewStructuredDataStrategy creates the structured data strategy
func NewStructuredDataStrategy() *StructuredDataStrategy {
	return &StructuredDataStrategy{}
}

// Name implements Strategy
func (s *StructuredDataStrategy) Name() string { return StrategyStructuredData }

// Priority implements Strategy
func (s *StructuredDataStrategy) Priority() int { return PriorityStructuredData }

// Extract implements Strategy
func (s *StructuredDataStrategy) Extract(doc *Document, ctx Context) []models.RawField {
	fields := s.extractJSONLD(doc)
	fields = append(fields, s.extractMicrodata(doc)...)
	return fields
}

func (s *StructuredDataStrategy) extractJSONLD(doc *Document) []models.RawField {
	var fields []models.RawField

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var payload interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			// Broken JSON-LD blocks are common in the wild; skip and
			// let the lower-priority strategies cover the page.
			return
		}
		for _, event := range collectEventNodes(payload) {
			fields = append(fields, s.eventNodeFields(event)...)
		}
	})

	return fields
}

// collectEventNodes walks a decoded JSON-LD payload and returns every
// node whose @type is an Event subtype. Handles top-level arrays and
// @graph containers.
func collectEventNodes(payload interface{}) []map[string]interface{} {
	var events []map[string]interface{}

	switch node := payload.(type) {
	case []interface{}:
		for _, item := range node {
			events = append(events, collectEventNodes(item)...)
		}
	case map[string]interface{}:
		if isEventType(node["@type"]) {
			events = append(events, node)
		}
		if graph, ok := node["@graph"]; ok {
			events = append(events, collectEventNodes(graph)...)
		}
	}

	return events
}

func isEventType(raw interface{}) bool {
	switch t := raw.(type) {
	case string:
		return strings.Contains(t, "Event") || t == "Festival"
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && (strings.Contains(s, "Event") || s == "Festival") {
				return true
			}
		}
	}
	return false
}

func (s *StructuredDataStrategy) eventNodeFields(event map[string]interface{}) []models.RawField {
	var fields []models.RawField

	add := func(name, value string, confidence float64) {
		value = normalize.CleanText(value)
		if value != "" {
			fields = append(fields, field(name, value, confidence, StrategyStructuredData, PriorityStructuredData))
		}
	}

	add(models.FieldTitle, jsonString(event["name"]), 0.95)
	add(models.FieldDescription, jsonString(event["description"]), 0.9)
	add(models.FieldStartDatetime, jsonString(event["startDate"]), 0.95)
	add(models.FieldEndDatetime, jsonString(event["endDate"]), 0.9)
	add(models.FieldDateText, jsonString(event["startDate"]), 0.9)

	if status := schemaEventStatus(jsonString(event["eventStatus"])); status != "" {
		add(models.FieldStatus, status, 0.9)
	}
	if _, ok := event["eventSchedule"]; ok {
		add(models.FieldRecurring, "true", 0.9)
	}

	fields = append(fields, s.locationFields(event["location"])...)
	fields = append(fields, s.performerFields(event["performer"])...)
	fields = append(fields, s.offerFields(event["offers"])...)

	if images := jsonStringList(event["image"]); len(images) > 0 {
		fields = append(fields, multiField(models.FieldImageURLs, images, 0.9, StrategyStructuredData, PriorityStructuredData))
	}

	return fields
}

func (s *StructuredDataStrategy) locationFields(raw interface{}) []models.RawField {
	var fields []models.RawField

	add := func(name, value string, confidence float64) {
		value = normalize.CleanText(value)
		if value != "" {
			fields = append(fields, field(name, value, confidence, StrategyStructuredData, PriorityStructuredData))
		}
	}

	switch loc := raw.(type) {
	case string:
		add(models.FieldVenueName, loc, 0.9)
	case map[string]interface{}:
		add(models.FieldVenueName, jsonString(loc["name"]), 0.95)
		add(models.FieldVenueAddress, schemaAddress(loc["address"]), 0.9)
		if geo, ok := loc["geo"].(map[string]interface{}); ok {
			add(models.FieldLatitude, jsonNumber(geo["latitude"]), 0.95)
			add(models.FieldLongitude, jsonNumber(geo["longitude"]), 0.95)
		}
	case []interface{}:
		if len(loc) > 0 {
			fields = append(fields, s.locationFields(loc[0])...)
		}
	}

	return fields
}

func (s *StructuredDataStrategy) performerFields(raw interface{}) []models.RawField {
	names := performerNames(raw)
	if len(names) == 0 {
		return nil
	}

	fields := []models.RawField{
		multiField(models.FieldPerformers, names, 0.9, StrategyStructuredData, PriorityStructuredData),
	}
	// Schema.org carries no billing order semantics, but publishers
	// consistently list the headline act first.
	fields = append(fields, field(models.FieldHeadliner, names[0], 0.85, StrategyStructuredData, PriorityStructuredData))
	return fields
}

func performerNames(raw interface{}) []string {
	var names []string

	appendName := func(value string) {
		value = normalize.CleanText(value)
		if value != "" {
			names = append(names, value)
		}
	}

	switch p := raw.(type) {
	case string:
		appendName(p)
	case map[string]interface{}:
		appendName(jsonString(p["name"]))
	case []interface{}:
		for _, item := range p {
			switch entry := item.(type) {
			case string:
				appendName(entry)
			case map[string]interface{}:
				appendName(jsonString(entry["name"]))
			}
		}
	}

	return names
}

func (s *StructuredDataStrategy) offerFields(raw interface{}) []models.RawField {
	offer, ok := firstOffer(raw)
	if !ok {
		return nil
	}

	var fields []models.RawField
	add := func(name, value string, confidence float64) {
		value = normalize.CleanText(value)
		if value != "" {
			fields = append(fields, field(name, value, confidence, StrategyStructuredData, PriorityStructuredData))
		}
	}

	price := jsonNumber(offer["price"])
	if price == "" {
		price = jsonNumber(offer["lowPrice"])
	}
	currency := jsonString(offer["priceCurrency"])

	if price == "0" {
		add(models.FieldIsFree, "true", 0.9)
	} else if price != "" {
		if currency != "" {
			add(models.FieldPriceText, fmt.Sprintf("%s %s", price, currency), 0.95)
		} else {
			add(models.FieldPriceText, price, 0.9)
		}
	}
	add(models.FieldCurrency, currency, 0.95)
	add(models.FieldPurchaseURL, jsonString(offer["url"]), 0.9)

	return fields
}

func firstOffer(raw interface{}) (map[string]interface{}, bool) {
	switch o := raw.(type) {
	case map[string]interface{}:
		return o, true
	case []interface{}:
		for _, item := range o {
			if m, ok := item.(map[string]interface{}); ok {
				return m, true
			}
		}
	}
	return nil, false
}

// schemaEventStatus maps schema.org EventStatusType URLs to canonical
// status values.
func schemaEventStatus(raw string) string {
	switch {
	case strings.Contains(raw, "EventCancelled"):
		return models.StatusCancelled
	case strings.Contains(raw, "EventPostponed"):
		return models.StatusPostponed
	case strings.Contains(raw, "EventRescheduled"), strings.Contains(raw, "EventScheduled"):
		return models.StatusScheduled
	}
	return ""
}

// schemaAddress flattens a PostalAddress node (or plain string) into a
// single display line.
func schemaAddress(raw interface{}) string {
	switch addr := raw.(type) {
	case string:
		return addr
	case map[string]interface{}:
		parts := []string{
			jsonString(addr["streetAddress"]),
			jsonString(addr["addressLocality"]),
			jsonString(addr["postalCode"]),
			jsonString(addr["addressRegion"]),
			jsonString(addr["addressCountry"]),
		}
		var kept []string
		for _, part := range parts {
			part = normalize.CleanText(part)
			if part != "" {
				kept = append(kept, part)
			}
		}
		return strings.Join(kept, ", ")
	}
	return ""
}

func jsonString(raw interface{}) string {
	s, _ := raw.(string)
	return s
}

// jsonNumber renders a JSON value that may arrive as float64 or string
func jsonNumber(raw interface{}) string {
	switch n := raw.(type) {
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	case string:
		return strings.TrimSpace(n)
	}
	return ""
}

func jsonStringList(raw interface{}) []string {
	var values []string
	switch v := raw.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			values = append(values, s)
		}
	case map[string]interface{}:
		if s := strings.TrimSpace(jsonString(v["url"])); s != "" {
			values = append(values, s)
		}
	case []interface{}:
		for _, item := range v {
			values = append(values, jsonStringList(item)...)
		}
	}
	return values
}

func (s *StructuredDataStrategy) extractMicrodata(doc *Document) []models.RawField {
	var fields []models.RawField

	doc.Find(`[itemscope][itemtype*="schema.org/Event"], [itemscope][itemtype*="schema.org/MusicEvent"]`).Each(func(_ int, scope *goquery.Selection) {
		add := func(name, value string, confidence float64) {
			value = normalize.CleanText(value)
			if value != "" {
				fields = append(fields, field(name, value, confidence, StrategyStructuredData, PriorityStructuredData))
			}
		}

		add(models.FieldTitle, itemprop(scope, "name"), 0.85)
		add(models.FieldStartDatetime, itemprop(scope, "startDate"), 0.85)
		add(models.FieldEndDatetime, itemprop(scope, "endDate"), 0.85)
		add(models.FieldDateText, itemprop(scope, "startDate"), 0.8)
		add(models.FieldDescription, itemprop(scope, "description"), 0.8)
		add(models.FieldVenueName, microdataVenue(scope), 0.85)
		add(models.FieldVenueAddress, itemprop(scope, "address"), 0.8)
	})

	return fields
}

// itemprop reads an itemprop value, preferring content/datetime attrs
// over element text the way schema.org microdata is published.
func itemprop(scope *goquery.Selection, prop string) string {
	sel := scope.Find(fmt.Sprintf(`[itemprop="%s"]`, prop)).First()
	if sel.Length() == 0 {
		return ""
	}
	if content, ok := sel.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return content
	}
	if datetime, ok := sel.Attr("datetime"); ok && strings.TrimSpace(datetime) != "" {
		return datetime
	}
	return sel.Text()
}

// microdataVenue handles both a flat location itemprop and a nested
// Place scope with its own name.
func microdataVenue(scope *goquery.Selection) string {
	loc := scope.Find(`[itemprop="location"]`).First()
	if loc.Length() == 0 {
		return ""
	}
	if name := loc.Find(`[itemprop="name"]`).First(); name.Length() > 0 {
		return name.Text()
	}
	return loc.Text()
}
