package extract

import (
	"testing"

	"ibiza-events-aggregator/internal/models"
)

func textDoc(t *testing.T, body string) *Document {
	t.Helper()
	doc, err := ParseDocument("<html><body>" + body + "</body></html>")
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	return doc
}

func TestTextPatternDates(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"<p>Saturday 14th June 2026, doors at 23:00</p>", "14th June 2026"},
		{"<p>Coming June 14, 2026 to the island</p>", "June 14, 2026"},
		{"<p>Next show: 14/06/2026</p>", "14/06/2026"},
		{"<p>Next show: 2026-06-14</p>", "2026-06-14"},
	}

	strategy := NewTextPatternStrategy(false)
	for _, tc := range cases {
		record := models.NewPartialRecord()
		record.MergeAll(strategy.Extract(textDoc(t, tc.body), Context{}))
		if got := record.Value(models.FieldDateText); got != tc.want {
			t.Errorf("body %q: date_text = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestTextPatternPriceAndLineup(t *testing.T) {
	doc := textDoc(t, `<h1>Techno Tuesday</h1>
	<p>Line-up: Charlotte de Witte, Amelie Lens & FJAAK.</p>
	<p>Tickets from €45.00 at the door.</p>
	<p>Venue: DC10</p>`)

	record := models.NewPartialRecord()
	record.MergeAll(NewTextPatternStrategy(false).Extract(doc, Context{}))

	if got := record.Value(models.FieldTitle); got != "Techno Tuesday" {
		t.Errorf("title = %q", got)
	}
	if got := record.Value(models.FieldPriceText); got == "" {
		t.Error("expected price_text from euro amount")
	}
	if got := record.Value(models.FieldVenueName); got != "DC10" {
		t.Errorf("venue_name = %q", got)
	}

	performers := record.Values(models.FieldPerformers)
	if len(performers) != 3 {
		t.Fatalf("performers = %v, want 3 acts", performers)
	}
	if performers[0] != "Charlotte de Witte" || performers[2] != "FJAAK" {
		t.Errorf("performers = %v", performers)
	}
}

func TestTextPatternFreeEntry(t *testing.T) {
	record := models.NewPartialRecord()
	record.MergeAll(NewTextPatternStrategy(false).Extract(textDoc(t, "<p>Free entry before midnight</p>"), Context{}))

	if got := record.Value(models.FieldIsFree); got != "true" {
		t.Errorf("is_free = %q", got)
	}
}

func TestTextPatternLowConfidence(t *testing.T) {
	doc := textDoc(t, "<h1>Some Night</h1><p>14 June 2026</p>")

	for _, field := range NewTextPatternStrategy(false).Extract(doc, Context{}) {
		if field.Confidence > 0.5 {
			t.Errorf("field %s confidence = %f, text mining must stay low confidence", field.Name, field.Confidence)
		}
	}
}

func TestAggressiveVariantOnly(t *testing.T) {
	doc := textDoc(t, "<p>Tonight at Amnesia. Special guests all night. See you in July 2026.</p>")

	normal := models.NewPartialRecord()
	normal.MergeAll(NewTextPatternStrategy(false).Extract(doc, Context{}))
	if normal.Has(models.FieldVenueName) {
		t.Error("normal pass must not use the loose at-venue pattern")
	}

	aggressive := models.NewPartialRecord()
	aggressive.MergeAll(NewTextPatternStrategy(true).Extract(doc, Context{}))
	if got := aggressive.Value(models.FieldVenueName); got != "Amnesia" {
		t.Errorf("aggressive venue_name = %q", got)
	}
	if got := aggressive.Value(models.FieldDateText); got != "July 2026" {
		t.Errorf("aggressive date_text = %q", got)
	}
}
