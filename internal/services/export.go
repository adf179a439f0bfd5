package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"ibiza-events-aggregator/internal/models"
)

const (
	latestEventsKey = "data/events/latest.json"
	backupKeyFormat = "data/events/backups/events-%s.json"
)

// ExportResult describes one completed upload
type ExportResult struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	Events     int       `json:"events"`
	UploadedAt time.Time `json:"uploaded_at"`
	PublicURL  string    `json:"public_url"`
}

// EventExportService publishes the aggregated event set to S3 as JSON
// for the site frontend to consume.
type EventExportService struct {
	client *s3.Client
	bucket string
	region string
}

// NewEventExportService creates an export service over an existing S3
// client.
func NewEventExportService(client *s3.Client, bucket, region string) *EventExportService {
	return &EventExportService{client: client, bucket: bucket, region: region}
}

// NewEventExportServiceFromEnv builds the client from the default AWS
// config chain, with the bucket from S3_BUCKET_NAME.
func NewEventExportServiceFromEnv(ctx context.Context) (*EventExportService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	bucket := os.Getenv("S3_BUCKET_NAME")
	if bucket == "" {
		bucket = "ibiza-events-aggregator-data"
	}

	return NewEventExportService(s3.NewFromConfig(cfg), bucket, cfg.Region), nil
}

// UploadLatestEvents replaces the latest.json the frontend reads
func (e *EventExportService) UploadLatestEvents(ctx context.Context, events []models.CanonicalEvent, sources []string) (*ExportResult, error) {
	return e.upload(ctx, events, sources, latestEventsKey)
}

// BackupEvents writes a timestamped copy next to latest.json
func (e *EventExportService) BackupEvents(ctx context.Context, events []models.CanonicalEvent, sources []string) (*ExportResult, error) {
	key := fmt.Sprintf(backupKeyFormat, time.Now().UTC().Format("2006-01-02T15-04-05"))
	return e.upload(ctx, events, sources, key)
}

func (e *EventExportService) upload(ctx context.Context, events []models.CanonicalEvent, sources []string, key string) (*ExportResult, error) {
	output := models.EventsOutput{
		Metadata: models.NewEventsMetadata(len(events), sources),
		Events:   events,
	}

	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events to JSON: %w", err)
	}

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(e.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(jsonData),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("max-age=300"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	result := &ExportResult{
		Key:        key,
		Size:       int64(len(jsonData)),
		Events:     len(events),
		UploadedAt: time.Now().UTC(),
		PublicURL:  fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", e.bucket, e.region, key),
	}

	log.Printf("[EXPORT] uploaded %s (%d events, %d bytes)", key, result.Events, result.Size)
	return result, nil
}
