package extract

import (
	"fmt"
	"log"
	"sort"

	"ibiza-events-aggregator/internal/models"
)

// Required fields for the completeness heuristic. A record is complete
// enough when it covers at least the configured fraction of these.
var completenessFields = [][]string{
	{models.FieldTitle},
	{models.FieldStartDatetime, models.FieldDateText},
	{models.FieldVenueName},
}

// StrategyOutcome records what one strategy contributed to a pass,
// kept for run diagnostics.
type StrategyOutcome struct {
	Strategy  string `json:"strategy"`
	Extracted int    `json:"fields_extracted"`
	Stored    int    `json:"fields_stored"`
	Panicked  bool   `json:"panicked,omitempty"`
}

// Coordinator runs a strategy chain over a document and merges the
// output into one partial record.
type Coordinator struct {
	completenessThreshold float64
}

// NewCoordinator creates a coordinator with the given completeness
// threshold (fraction of required fields that must be present).
func NewCoordinator(completenessThreshold float64) *Coordinator {
	return &Coordinator{completenessThreshold: completenessThreshold}
}

// Run executes the strategies in priority order, merging each one's
// fields into record. Strategies are independent; a panic in one is
// contained and the rest of the chain still runs. The same record can
// be passed through multiple passes (escalation) and only strictly
// higher confidence values replace existing ones.
func (c *Coordinator) Run(doc *Document, ctx Context, strategies []Strategy, record models.PartialRecord) []StrategyOutcome {
	ordered := make([]Strategy, len(strategies))
	copy(ordered, strategies)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	outcomes := make([]StrategyOutcome, 0, len(ordered))
	for _, strategy := range ordered {
		outcome := c.runStrategy(strategy, doc, ctx, record)
		outcomes = append(outcomes, outcome)
		log.Printf("[EXTRACT] strategy=%s extracted=%d stored=%d", outcome.Strategy, outcome.Extracted, outcome.Stored)
	}

	return outcomes
}

func (c *Coordinator) runStrategy(strategy Strategy, doc *Document, ctx Context, record models.PartialRecord) (outcome StrategyOutcome) {
	outcome.Strategy = strategy.Name()

	defer func() {
		if r := recover(); r != nil {
			outcome.Panicked = true
			log.Printf("[EXTRACT] strategy %s panicked, skipping: %v", strategy.Name(), r)
		}
	}()

	fields := strategy.Extract(doc, ctx)
	outcome.Extracted = len(fields)
	outcome.Stored = record.MergeAll(fields)
	return outcome
}

// Completeness returns the fraction of required field groups present
// in the record. Each group counts when any of its aliases is set.
func (c *Coordinator) Completeness(record models.PartialRecord) float64 {
	present := 0
	for _, group := range completenessFields {
		for _, name := range group {
			if record.Has(name) {
				present++
				break
			}
		}
	}
	return float64(present) / float64(len(completenessFields))
}

// NeedsEscalation reports whether the record is still too sparse after
// a pass and a supplemental extraction pass is warranted.
func (c *Coordinator) NeedsEscalation(record models.PartialRecord) bool {
	return c.Completeness(record) < c.completenessThreshold
}

// Summarize renders a short diagnostic line for logging
func Summarize(outcomes []StrategyOutcome) string {
	total := 0
	for _, o := range outcomes {
		total += o.Stored
	}
	return fmt.Sprintf("%d strategies, %d fields stored", len(outcomes), total)
}
