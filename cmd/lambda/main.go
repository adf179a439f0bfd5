package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"

	"ibiza-events-aggregator/internal/models"
	"ibiza-events-aggregator/internal/pipeline"
	"ibiza-events-aggregator/internal/services"
)

// AggregationEvent is the EventBridge trigger payload
type AggregationEvent struct {
	Source       string   `json:"source"`
	DetailType   string   `json:"detail-type"`
	TriggerType  string   `json:"trigger-type,omitempty"`
	SourceFilter []string `json:"source-filter,omitempty"`
}

// AggregationResponse summarizes one aggregation run
type AggregationResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	RunID          string   `json:"run_id"`
	TotalEvents    int      `json:"total_events"`
	Accepted       int64    `json:"accepted"`
	LowQuality     int64    `json:"low_quality"`
	Failed         int64    `json:"failed"`
	ProcessingTime int64    `json:"processing_time_ms"`
	UploadedFiles  []string `json:"uploaded_files,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

// aggregator wires the fetch, pipeline, storage and export layers for
// one run.
type aggregator struct {
	runID    string
	registry *services.SourceRegistry
	fetcher  *services.FetcherService
	pool     *pipeline.Pool
	storage  *services.EventStorageService
	exporter *services.EventExportService
	metrics  *services.PipelineMetrics
}

func newAggregator(ctx context.Context) (*aggregator, error) {
	storage, err := services.NewEventStorageServiceFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	exporter, err := services.NewEventExportServiceFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing exporter: %w", err)
	}

	workers := 3
	if raw := os.Getenv("PIPELINE_WORKERS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			workers = parsed
		}
	}

	return &aggregator{
		runID:    uuid.New().String(),
		registry: services.NewSourceRegistry(),
		fetcher:  services.NewFetcherService(),
		pool:     pipeline.NewPool(pipeline.NewOrchestrator(pipeline.DefaultConfig()), workers),
		storage:  storage,
		exporter: exporter,
		metrics:  services.NewPipelineMetrics(),
	}, nil
}

// run fetches every configured listing page, processes the documents
// through the pipeline and persists the accepted results.
func (a *aggregator) run(ctx context.Context, sourceFilter []string) (*AggregationResponse, error) {
	start := time.Now()

	sources := a.registry.Filter(sourceFilter)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no enabled sources match the filter %v", sourceFilter)
	}
	log.Printf("[RUN] id=%s scraping %d sources", a.runID, len(sources))

	var documents []pipeline.Document
	var fetchErrors []string
	for _, source := range sources {
		for _, url := range source.URLs {
			result, err := a.fetcher.FetchPage(ctx, url)
			if err != nil {
				log.Printf("[RUN] fetch failed for %s: %v", url, err)
				fetchErrors = append(fetchErrors, fmt.Sprintf("%s: %v", url, err))
				continue
			}
			documents = append(documents, pipeline.Document{
				HTML:           result.HTML,
				SourcePlatform: source.Platform,
				SourceURL:      url,
				ScrapedAt:      result.FetchedAt,
			})
		}
	}

	results := a.pool.ProcessAll(ctx, documents)

	var events []models.CanonicalEvent
	var reports []models.QualityReport
	for _, result := range results {
		if result == nil {
			continue
		}
		platform := "unknown"
		if result.Event != nil {
			platform = result.Event.Provenance.SourcePlatform
		}
		a.metrics.RecordResult(platform, string(result.State), result.Report.OverallScore, result.Escalations)

		if result.State == pipeline.StateAccepted || result.State == pipeline.StateLowQualityAccepted {
			events = append(events, *result.Event)
			reports = append(reports, result.Report)
		}
	}
	a.metrics.LogSummary()

	stored, err := a.storage.UpsertAll(ctx, events, reports)
	if err != nil {
		return nil, fmt.Errorf("storing events: %w", err)
	}
	log.Printf("[RUN] id=%s stored %d/%d events", a.runID, stored, len(events))

	var uploaded []string
	platforms := make([]string, 0, len(sources))
	for _, source := range sources {
		platforms = append(platforms, source.Platform)
	}
	if latest, err := a.exporter.UploadLatestEvents(ctx, events, platforms); err != nil {
		log.Printf("[RUN] export failed: %v", err)
		fetchErrors = append(fetchErrors, fmt.Sprintf("export: %v", err))
	} else {
		uploaded = append(uploaded, latest.Key)
	}
	if backup, err := a.exporter.BackupEvents(ctx, events, platforms); err != nil {
		log.Printf("[RUN] backup failed: %v", err)
	} else {
		uploaded = append(uploaded, backup.Key)
	}

	stats := a.pool.Stats()
	return &AggregationResponse{
		Success:        stats.Accepted+stats.LowQuality > 0,
		Message:        fmt.Sprintf("aggregated %d events from %d sources", len(events), len(sources)),
		RunID:          a.runID,
		TotalEvents:    len(events),
		Accepted:       stats.Accepted,
		LowQuality:     stats.LowQuality,
		Failed:         stats.Failed,
		ProcessingTime: time.Since(start).Milliseconds(),
		UploadedFiles:  uploaded,
		Errors:         fetchErrors,
	}, nil
}

// HandleAggregationEvent is the Lambda entry point
func HandleAggregationEvent(ctx context.Context, event AggregationEvent) (AggregationResponse, error) {
	start := time.Now()

	triggerType := event.TriggerType
	if triggerType == "" {
		if event.Source == "aws.events" {
			triggerType = "scheduled"
		} else {
			triggerType = "manual"
		}
	}
	log.Printf("[LAMBDA] trigger=%s filter=%v", triggerType, event.SourceFilter)

	agg, err := newAggregator(ctx)
	if err != nil {
		log.Printf("[LAMBDA] initialization failed: %v", err)
		return AggregationResponse{
			Success:        false,
			Message:        err.Error(),
			ProcessingTime: time.Since(start).Milliseconds(),
		}, err
	}

	response, err := agg.run(ctx, event.SourceFilter)
	if err != nil {
		log.Printf("[LAMBDA] run failed: %v", err)
		return AggregationResponse{
			Success:        false,
			Message:        err.Error(),
			RunID:          agg.runID,
			ProcessingTime: time.Since(start).Milliseconds(),
		}, err
	}

	log.Printf("[LAMBDA] completed: %s", response.Message)
	return *response, nil
}

func main() {
	lambda.Start(HandleAggregationEvent)
}
