package pipeline

import (
	"context"
	"log"
	"time"

	"ibiza-events-aggregator/internal/extract"
	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/quality"
)

// Pipeline states. The non-terminal states exist for logging and
// diagnostics; callers only ever observe the three terminal ones.
type State string

const (
	StateInit        State = "INIT"
	StateStrategyRun State = "STRATEGY_RUN"
	StateMerge       State = "MERGE"
	StateMap         State = "MAP"
	StateScore       State = "SCORE"
	StateEscalate    State = "ESCALATE"

	StateAccepted           State = "ACCEPTED"
	StateLowQualityAccepted State = "LOW_QUALITY_ACCEPTED"
	StateFailed             State = "FAILED"
)

// Result is the terminal outcome of one document's run
type Result struct {
	Event       *models.CanonicalEvent
	Report      models.QualityReport
	State       State
	Escalations int
	Outcomes    []extract.StrategyOutcome
}

// Orchestrator drives one document through the pipeline: run
// strategies, merge, map, score, and escalate to broader extraction
// while quality stays under the threshold. The whole run is pure CPU
// work over the already fetched document; no step performs I/O.
type Orchestrator struct {
	config      Config
	coordinator *extract.Coordinator
	mapper      *Mapper
	scorer      *quality.Scorer
}

// NewOrchestrator creates an orchestrator from a config
func NewOrchestrator(config Config) *Orchestrator {
	config = config.normalized()
	return &Orchestrator{
		config:      config,
		coordinator: extract.NewCoordinator(config.CompletenessThreshold),
		mapper:      NewMapper(config),
		scorer:      quality.NewScorer(config.Scoring),
	}
}

// Run processes one document. On context expiry it returns the best
// result computed so far as LOW_QUALITY_ACCEPTED rather than raising;
// the only error path is a document yielding no title at all.
func (o *Orchestrator) Run(ctx context.Context, html, sourcePlatform, sourceURL string, scrapedAt time.Time) (*Result, error) {
	result := &Result{State: StateInit}

	doc, err := extract.ParseDocument(html)
	if err != nil {
		result.State = StateFailed
		return result, &ExtractionError{SourceURL: sourceURL, Reason: err.Error()}
	}

	ectx := extract.NewContext(sourcePlatform, sourceURL, scrapedAt)
	record := models.NewPartialRecord()
	strategies := extract.StrategiesByName(o.config.StrategyOrder, o.config.SiteConfigs)

	for {
		result.State = StateStrategyRun
		outcomes := o.coordinator.Run(doc, ectx, strategies, record)
		result.Outcomes = append(result.Outcomes, outcomes...)

		result.State = StateMap
		event, err := o.mapper.Map(record, ectx)
		if err != nil {
			// Only the very first pass can run out of titles; the
			// escalation passes never remove fields.
			result.State = StateFailed
			log.Printf("[PIPELINE] url=%s state=%s: %v", sourceURL, result.State, err)
			return result, err
		}

		result.State = StateScore
		report := o.scorer.Score(event)
		result.Event = event
		result.Report = report

		if report.OverallScore >= o.config.QualityThreshold {
			result.State = StateAccepted
			log.Printf("[PIPELINE] url=%s state=%s score=%.2f escalations=%d extraction=%s",
				sourceURL, result.State, report.OverallScore, result.Escalations,
				extract.Summarize(result.Outcomes))
			return result, nil
		}

		if ctx.Err() != nil {
			log.Printf("[PIPELINE] url=%s deadline hit, returning best effort", sourceURL)
			return o.acceptLowQuality(result), nil
		}

		if result.Escalations >= o.config.MaxEscalations {
			return o.acceptLowQuality(result), nil
		}

		result.State = StateEscalate
		result.Escalations++
		strategies = extract.EscalationStrategies()
		log.Printf("[PIPELINE] url=%s state=%s pass=%d score=%.2f completeness=%.2f",
			sourceURL, result.State, result.Escalations, report.OverallScore,
			o.coordinator.Completeness(record))
	}
}

// acceptLowQuality finalizes a below-threshold result. The record is
// kept, not discarded, with the shortfall made visible on the report.
func (o *Orchestrator) acceptLowQuality(result *Result) *Result {
	result.State = StateLowQualityAccepted
	if !result.Report.HasFlag(models.IssueLowQualityResult) {
		result.Report.Flags = append(result.Report.Flags, models.QualityFlag{
			Field: "overall",
			Issue: models.IssueLowQualityResult,
		})
	}
	log.Printf("[PIPELINE] url=%s state=%s score=%.2f escalations=%d extraction=%s",
		result.Event.Provenance.SourceURL, result.State, result.Report.OverallScore, result.Escalations,
		extract.Summarize(result.Outcomes))
	return result
}

// Process is the single-call entry point: one document in, one scored
// canonical event out. A zero-value config is replaced by defaults.
func Process(html, sourcePlatform, sourceURL string, scrapedAt time.Time, cfg Config) (models.CanonicalEvent, models.QualityReport, error) {
	cfg = cfg.normalized()

	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	result, err := NewOrchestrator(cfg).Run(ctx, html, sourcePlatform, sourceURL, scrapedAt)
	if err != nil {
		return models.CanonicalEvent{}, models.QualityReport{}, err
	}
	return *result.Event, result.Report, nil
}
