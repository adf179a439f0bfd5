package extract

import (
	"reflect"
	"testing"
	"time"

	"ibiza-events-aggregator/internal/models"
)

type stubStrategy struct {
	name     string
	priority int
	fields   []models.RawField
	panics   bool
}

func (s *stubStrategy) Name() string  { return s.name }
func (s *stubStrategy) Priority() int { return s.priority }
func (s *stubStrategy) Extract(doc *Document, ctx Context) []models.RawField {
	if s.panics {
		panic("boom")
	}
	return s.fields
}

func testDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseDocument("<html><body><p>stub</p></body></html>")
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	return doc
}

func TestCoordinatorConfidenceMerge(t *testing.T) {
	high := &stubStrategy{name: "high", priority: 1, fields: []models.RawField{
		{Name: models.FieldTitle, Value: "Structured Title", Confidence: 0.95, Strategy: "high", Priority: 1},
	}}
	low := &stubStrategy{name: "low", priority: 3, fields: []models.RawField{
		{Name: models.FieldTitle, Value: "Meta Title", Confidence: 0.6, Strategy: "low", Priority: 3},
		{Name: models.FieldVenueName, Value: "Pacha", Confidence: 0.6, Strategy: "low", Priority: 3},
	}}

	coordinator := NewCoordinator(2.0 / 3.0)
	record := models.NewPartialRecord()
	coordinator.Run(testDoc(t), Context{}, []Strategy{high, low}, record)

	if got := record.Value(models.FieldTitle); got != "Structured Title" {
		t.Errorf("title = %q, lower confidence strategy must not overwrite", got)
	}
	if got := record.Value(models.FieldVenueName); got != "Pacha" {
		t.Errorf("venue_name = %q, gap-filling field must land", got)
	}
}

func TestCoordinatorTieKeepsEarlierStrategy(t *testing.T) {
	first := &stubStrategy{name: "first", priority: 1, fields: []models.RawField{
		{Name: models.FieldTitle, Value: "First", Confidence: 0.8, Strategy: "first", Priority: 1},
	}}
	second := &stubStrategy{name: "second", priority: 2, fields: []models.RawField{
		{Name: models.FieldTitle, Value: "Second", Confidence: 0.8, Strategy: "second", Priority: 2},
	}}

	record := models.NewPartialRecord()
	// Registration order reversed; priority ordering must restore it
	NewCoordinator(1).Run(testDoc(t), Context{}, []Strategy{second, first}, record)

	if got := record[models.FieldTitle]; got.Value != "First" || got.Strategy != "first" {
		t.Errorf("tie broke toward %q from %s, want earlier strategy", got.Value, got.Strategy)
	}
}

func TestCoordinatorContainsPanic(t *testing.T) {
	bad := &stubStrategy{name: "bad", priority: 1, panics: true}
	good := &stubStrategy{name: "good", priority: 2, fields: []models.RawField{
		{Name: models.FieldTitle, Value: "Survivor", Confidence: 0.7, Strategy: "good", Priority: 2},
	}}

	record := models.NewPartialRecord()
	outcomes := NewCoordinator(1).Run(testDoc(t), Context{}, []Strategy{bad, good}, record)

	if !outcomes[0].Panicked {
		t.Error("expected panic recorded for bad strategy")
	}
	if got := record.Value(models.FieldTitle); got != "Survivor" {
		t.Errorf("title = %q, chain must continue past a panicking strategy", got)
	}
}

func TestCompleteness(t *testing.T) {
	coordinator := NewCoordinator(2.0 / 3.0)
	record := models.NewPartialRecord()

	if got := coordinator.Completeness(record); got != 0 {
		t.Errorf("empty record completeness = %f", got)
	}
	if !coordinator.NeedsEscalation(record) {
		t.Error("empty record must need escalation")
	}

	record.Merge(models.RawField{Name: models.FieldTitle, Value: "Party", Confidence: 0.5})
	record.Merge(models.RawField{Name: models.FieldDateText, Value: "14 June 2026", Confidence: 0.4})

	if got := coordinator.Completeness(record); got < 0.66 || got > 0.67 {
		t.Errorf("completeness = %f, want 2/3", got)
	}
	if coordinator.NeedsEscalation(record) {
		t.Error("2/3 completeness must satisfy a 2/3 threshold")
	}

	// date_text and start_datetime count as one group
	record.Merge(models.RawField{Name: models.FieldStartDatetime, Value: "2026-06-14", Confidence: 0.9})
	if got := coordinator.Completeness(record); got < 0.66 || got > 0.67 {
		t.Errorf("completeness = %f, alias fields must not double count", got)
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []StrategyOutcome{
		{Strategy: StrategyStructuredData, Extracted: 8, Stored: 8},
		{Strategy: StrategyMetaTag, Extracted: 3, Stored: 1},
	}
	if got := Summarize(outcomes); got != "2 strategies, 9 fields stored" {
		t.Errorf("Summarize = %q", got)
	}
}

func TestStrategiesByName(t *testing.T) {
	chain := StrategiesByName([]string{StrategyMetaTag, StrategyTextPattern}, nil)
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if chain[0].Name() != StrategyMetaTag || chain[1].Name() != StrategyTextPattern {
		t.Errorf("chain = [%s, %s], want requested order", chain[0].Name(), chain[1].Name())
	}

	// Unknown names are skipped rather than erroring
	chain = StrategiesByName([]string{"llm_extraction", StrategyStructuredData}, nil)
	if len(chain) != 1 || chain[0].Name() != StrategyStructuredData {
		t.Errorf("unknown strategy name must be skipped, got %d entries", len(chain))
	}

	full := DefaultStrategies(nil)
	if len(full) != len(DefaultStrategyOrder) {
		t.Errorf("default chain = %d strategies, want %d", len(full), len(DefaultStrategyOrder))
	}
}

func TestEscalationPassDoesNotDisplace(t *testing.T) {
	doc, err := ParseDocument(`<html><body>
	  <h1>Warehouse Night</h1>
	  <p>Join us at Amnesia. Doors 23:00.</p>
	</body></html>`)
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	ctx := NewContext("unknown", "https://example.com/e/1", time.Now())
	coordinator := NewCoordinator(2.0 / 3.0)

	record := models.NewPartialRecord()
	coordinator.Run(doc, ctx, DefaultStrategies(nil), record)

	titleBefore := record[models.FieldTitle]
	coordinator.Run(doc, ctx, EscalationStrategies(), record)

	if got := record[models.FieldTitle]; !reflect.DeepEqual(got, titleBefore) {
		t.Errorf("escalation pass replaced title %+v with %+v", titleBefore, got)
	}
	if got := record.Value(models.FieldVenueName); got == "" {
		t.Error("aggressive pass should recover venue from 'at Amnesia'")
	}
}
