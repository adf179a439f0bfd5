package services

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// PipelineMetrics aggregates per-source outcomes of pipeline runs for
// observability. One instance is created per batch run and passed
// where needed; there is no global instance.
type PipelineMetrics struct {
	mu sync.RWMutex

	TotalProcessed  int64                    `json:"total_processed"`
	TotalAccepted   int64                    `json:"total_accepted"`
	TotalLowQuality int64                    `json:"total_low_quality"`
	TotalFailed     int64                    `json:"total_failed"`
	SourceMetrics   map[string]*SourceMetric `json:"source_metrics"`
	LastUpdated     time.Time                `json:"last_updated"`
}

// SourceMetric tracks outcomes for one source platform
type SourceMetric struct {
	Platform      string    `json:"platform"`
	Processed     int64     `json:"processed"`
	Accepted      int64     `json:"accepted"`
	LowQuality    int64     `json:"low_quality"`
	Failed        int64     `json:"failed"`
	Escalations   int64     `json:"escalations"`
	QualitySum    float64   `json:"-"`
	AvgQuality    float64   `json:"avg_quality"`
	SuccessRate   float64   `json:"success_rate"`
	LastProcessed time.Time `json:"last_processed"`
}

// MetricsAlert flags a source whose numbers crossed a threshold
type MetricsAlert struct {
	Platform  string  `json:"platform"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Message   string  `json:"message"`
}

// Alert thresholds; sources under these trigger a review alert
const (
	minSourceSuccessRate = 0.5
	minSourceAvgQuality  = 0.6
)

// NewPipelineMetrics creates an empty metrics collector
func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		SourceMetrics: make(map[string]*SourceMetric),
	}
}

// RecordResult records one document's terminal outcome.
// state is the pipeline's terminal state string; score is the overall
// quality score (ignored for failures).
func (m *PipelineMetrics) RecordResult(platform, state string, score float64, escalations int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, ok := m.SourceMetrics[platform]
	if !ok {
		source = &SourceMetric{Platform: platform}
		m.SourceMetrics[platform] = source
	}

	m.TotalProcessed++
	source.Processed++
	source.Escalations += int64(escalations)
	source.LastProcessed = time.Now().UTC()

	switch state {
	case "ACCEPTED":
		m.TotalAccepted++
		source.Accepted++
		source.QualitySum += score
	case "LOW_QUALITY_ACCEPTED":
		m.TotalLowQuality++
		source.LowQuality++
		source.QualitySum += score
	default:
		m.TotalFailed++
		source.Failed++
	}

	produced := source.Accepted + source.LowQuality
	if produced > 0 {
		source.AvgQuality = source.QualitySum / float64(produced)
	}
	source.SuccessRate = float64(source.Accepted) / float64(source.Processed)

	m.LastUpdated = time.Now().UTC()
}

// Alerts returns the sources currently under the review thresholds.
// A source needs a few runs on record before it can alert.
func (m *PipelineMetrics) Alerts() []MetricsAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var alerts []MetricsAlert
	for platform, source := range m.SourceMetrics {
		if source.Processed < 3 {
			continue
		}
		if source.SuccessRate < minSourceSuccessRate {
			alerts = append(alerts, MetricsAlert{
				Platform:  platform,
				Metric:    "success_rate",
				Value:     source.SuccessRate,
				Threshold: minSourceSuccessRate,
				Message:   fmt.Sprintf("source %s success rate %.2f below %.2f", platform, source.SuccessRate, minSourceSuccessRate),
			})
		}
		if source.AvgQuality > 0 && source.AvgQuality < minSourceAvgQuality {
			alerts = append(alerts, MetricsAlert{
				Platform:  platform,
				Metric:    "avg_quality",
				Value:     source.AvgQuality,
				Threshold: minSourceAvgQuality,
				Message:   fmt.Sprintf("source %s average quality %.2f below %.2f", platform, source.AvgQuality, minSourceAvgQuality),
			})
		}
	}
	return alerts
}

// Snapshot returns a copy safe to serialize
func (m *PipelineMetrics) Snapshot() PipelineMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := PipelineMetrics{
		TotalProcessed:  m.TotalProcessed,
		TotalAccepted:   m.TotalAccepted,
		TotalLowQuality: m.TotalLowQuality,
		TotalFailed:     m.TotalFailed,
		SourceMetrics:   make(map[string]*SourceMetric, len(m.SourceMetrics)),
		LastUpdated:     m.LastUpdated,
	}
	for platform, source := range m.SourceMetrics {
		copied := *source
		snapshot.SourceMetrics[platform] = &copied
	}
	return snapshot
}

// LogSummary writes the batch summary in one line per source
func (m *PipelineMetrics) LogSummary() {
	snapshot := m.Snapshot()
	log.Printf("[METRICS] processed=%d accepted=%d low_quality=%d failed=%d",
		snapshot.TotalProcessed, snapshot.TotalAccepted, snapshot.TotalLowQuality, snapshot.TotalFailed)
	for platform, source := range snapshot.SourceMetrics {
		log.Printf("[METRICS] source=%s processed=%d accepted=%d avg_quality=%.2f success_rate=%.2f",
			platform, source.Processed, source.Accepted, source.AvgQuality, source.SuccessRate)
	}
}
