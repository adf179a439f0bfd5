package extract

import (
	"testing"
	"time"

	"ibiza-events-aggregator/internal/models"
)

const selectorTestYAML = `
sites:
  - domain: ticketsibiza.com
    fields:
      title:
        selector: h1.product_title
      venue_name:
        selector: .event-venue a
        confidence: 0.85
      image_urls:
        selector: .gallery img
        attr: src
        all: true
`

func TestParseSiteConfigs(t *testing.T) {
	configs, err := ParseSiteConfigs([]byte(selectorTestYAML))
	if err != nil {
		t.Fatalf("ParseSiteConfigs failed: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("got %d configs, want 1", len(configs))
	}
	if configs[0].Domain != "ticketsibiza.com" {
		t.Errorf("domain = %q", configs[0].Domain)
	}
	if rule := configs[0].Fields["image_urls"]; !rule.All || rule.Attr != "src" {
		t.Errorf("image_urls rule = %+v", rule)
	}
}

func TestParseSiteConfigsRejectsIncomplete(t *testing.T) {
	if _, err := ParseSiteConfigs([]byte("sites:\n  - fields:\n      title:\n        selector: h1\n")); err == nil {
		t.Error("expected error for config without domain")
	}
	if _, err := ParseSiteConfigs([]byte("sites:\n  - domain: x.com\n    fields:\n      title: {}\n")); err == nil {
		t.Error("expected error for field without selector")
	}
}

func TestSiteSelectorMatchesDomain(t *testing.T) {
	configs, err := ParseSiteConfigs([]byte(selectorTestYAML))
	if err != nil {
		t.Fatalf("ParseSiteConfigs failed: %v", err)
	}

	html := `<html><body>
	  <h1 class="product_title">Paradise Opening</h1>
	  <div class="event-venue"><a href="/venues/dc10">DC10</a></div>
	  <div class="gallery">
	    <img src="https://cdn.example.com/a.jpg">
	    <img src="https://cdn.example.com/b.jpg">
	    <img src="https://cdn.example.com/a.jpg">
	  </div>
	</body></html>`

	doc, err := ParseDocument(html)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	strategy := NewSiteSelectorStrategy(configs)
	ctx := NewContext("ticketsibiza", "https://www.ticketsibiza.com/event/paradise", time.Now())

	record := models.NewPartialRecord()
	record.MergeAll(strategy.Extract(doc, ctx))

	if got := record.Value(models.FieldTitle); got != "Paradise Opening" {
		t.Errorf("title = %q", got)
	}
	if got := record[models.FieldVenueName]; got.Value != "DC10" || got.Confidence != 0.85 {
		t.Errorf("venue_name = %+v, want explicit confidence honored", got)
	}
	if got := record[models.FieldTitle].Confidence; got != defaultSelectorConfidence {
		t.Errorf("title confidence = %f, want default %f", got, defaultSelectorConfidence)
	}
	if got := record.Values(models.FieldImageURLs); len(got) != 2 {
		t.Errorf("image_urls = %v, want duplicates dropped", got)
	}
}

func TestSiteSelectorSkipsUnknownDomain(t *testing.T) {
	strategy := NewSiteSelectorStrategy(DefaultSiteConfigs())
	doc, _ := ParseDocument(`<html><body><h1 class="product_title">X</h1></body></html>`)

	ctx := NewContext("other", "https://unknown-listings.example.com/e/1", time.Now())
	if fields := strategy.Extract(doc, ctx); len(fields) != 0 {
		t.Errorf("unknown domain produced %d fields, want none", len(fields))
	}
}
