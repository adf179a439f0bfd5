package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Document is one fetched page queued for processing
type Document struct {
	HTML           string
	SourcePlatform string
	SourceURL      string
	ScrapedAt      time.Time
}

// PoolStats are the shared counters a batch run maintains. They are
// the only state workers share, and every update is atomic.
type PoolStats struct {
	Processed   int64 `json:"processed"`
	Accepted    int64 `json:"accepted"`
	LowQuality  int64 `json:"low_quality"`
	Failed      int64 `json:"failed"`
	Escalations int64 `json:"escalations"`
}

// Pool processes independent documents concurrently with bounded
// workers. Each document's pipeline run is strictly sequential inside;
// the pool only parallelizes across documents.
type Pool struct {
	orchestrator *Orchestrator
	workers      int

	processed   atomic.Int64
	accepted    atomic.Int64
	lowQuality  atomic.Int64
	failed      atomic.Int64
	escalations atomic.Int64
}

// NewPool creates a pool over a shared orchestrator. The orchestrator
// is stateless across documents, so sharing it is safe.
func NewPool(orchestrator *Orchestrator, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{orchestrator: orchestrator, workers: workers}
}

// ProcessAll runs every document through the pipeline and returns the
// results in input order. A failing document occupies its slot as a
// nil-event result; it never stops the batch.
func (p *Pool) ProcessAll(ctx context.Context, documents []Document) []*Result {
	results := make([]*Result, len(documents))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.workers)

	for i, document := range documents {
		wg.Add(1)
		go func(index int, doc Document) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[index] = p.processOne(ctx, doc)
		}(i, document)
	}

	wg.Wait()

	stats := p.Stats()
	log.Printf("[POOL] processed=%d accepted=%d low_quality=%d failed=%d escalations=%d",
		stats.Processed, stats.Accepted, stats.LowQuality, stats.Failed, stats.Escalations)

	return results
}

func (p *Pool) processOne(ctx context.Context, doc Document) *Result {
	defer func() {
		if r := recover(); r != nil {
			// A panicking document must not take the batch down
			p.failed.Add(1)
			p.processed.Add(1)
			log.Printf("[POOL] panic processing %s: %v", doc.SourceURL, r)
		}
	}()

	result, err := p.orchestrator.Run(ctx, doc.HTML, doc.SourcePlatform, doc.SourceURL, doc.ScrapedAt)
	p.processed.Add(1)

	if err != nil {
		p.failed.Add(1)
		var extractionErr *ExtractionError
		if !errors.As(err, &extractionErr) {
			log.Printf("[POOL] unexpected error for %s: %v", doc.SourceURL, err)
		}
		return result
	}

	p.escalations.Add(int64(result.Escalations))
	switch result.State {
	case StateAccepted:
		p.accepted.Add(1)
	case StateLowQualityAccepted:
		p.lowQuality.Add(1)
	}
	return result
}

// Stats snapshots the counters
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Processed:   p.processed.Load(),
		Accepted:    p.accepted.Load(),
		LowQuality:  p.lowQuality.Load(),
		Failed:      p.failed.Load(),
		Escalations: p.escalations.Load(),
	}
}
