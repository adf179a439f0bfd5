package pipeline

import (
	"context"
	"fmt"
	"testing"
)

func TestPoolProcessesBatch(t *testing.T) {
	documents := []Document{
		{HTML: richEventHTML, SourcePlatform: "ticketsibiza", SourceURL: "https://ticketsibiza.com/event/carl-cox", ScrapedAt: testScrapedAt},
		{HTML: sparseEventHTML, SourcePlatform: "unknown", SourceURL: "https://example.com/e/1", ScrapedAt: testScrapedAt},
		{HTML: "<html><body><p>no title here</p></body></html>", SourcePlatform: "unknown", SourceURL: "https://example.com/e/2", ScrapedAt: testScrapedAt},
	}

	pool := NewPool(NewOrchestrator(DefaultConfig()), 2)
	results := pool.ProcessAll(context.Background(), documents)

	if len(results) != 3 {
		t.Fatalf("results = %d, want one per document", len(results))
	}
	if results[0] == nil || results[0].State != StateAccepted {
		t.Errorf("rich document state = %+v, want ACCEPTED", results[0])
	}
	if results[1] == nil || results[1].State != StateLowQualityAccepted {
		t.Errorf("sparse document state = %+v, want LOW_QUALITY_ACCEPTED", results[1])
	}
	if results[2] == nil || results[2].State != StateFailed {
		t.Errorf("untitled document state = %+v, want FAILED", results[2])
	}

	stats := pool.Stats()
	if stats.Processed != 3 {
		t.Errorf("processed = %d", stats.Processed)
	}
	if stats.Accepted != 1 || stats.LowQuality != 1 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Escalations != int64(DefaultConfig().MaxEscalations) {
		t.Errorf("escalations = %d, want the sparse document's escalation limit", stats.Escalations)
	}
}

func TestPoolFailureDoesNotStopBatch(t *testing.T) {
	var documents []Document
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			documents = append(documents, Document{HTML: "", SourceURL: fmt.Sprintf("https://example.com/bad/%d", i), SourcePlatform: "unknown", ScrapedAt: testScrapedAt})
		} else {
			documents = append(documents, Document{HTML: richEventHTML, SourceURL: fmt.Sprintf("https://ticketsibiza.com/event/%d", i), SourcePlatform: "ticketsibiza", ScrapedAt: testScrapedAt})
		}
	}

	pool := NewPool(NewOrchestrator(DefaultConfig()), 4)
	results := pool.ProcessAll(context.Background(), documents)

	accepted := 0
	for _, result := range results {
		if result != nil && result.State == StateAccepted {
			accepted++
		}
	}
	if accepted != 5 {
		t.Errorf("accepted = %d, want every valid document processed", accepted)
	}

	stats := pool.Stats()
	if stats.Failed != 5 {
		t.Errorf("failed = %d", stats.Failed)
	}
	if stats.Processed != 10 {
		t.Errorf("processed = %d", stats.Processed)
	}
}
