package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ibiza-events-aggregator/internal/models"
)

const defaultEventsTable = "ibiza-events"

// sourcePlatformIndex is the GSI projecting events by the platform
// they were scraped from.
const sourcePlatformIndex = "source-platform-index"

// StoredEvent is the DynamoDB shape of a canonical event: the event
// itself plus the quality assessment and the write timestamp. The
// partition key is the content-derived event id, so repeated writes of
// the same event overwrite instead of duplicating.
type StoredEvent struct {
	EventID        string                `dynamodbav:"event_id" json:"event_id"`
	SourcePlatform string                `dynamodbav:"source_platform" json:"source_platform"`
	Event          models.CanonicalEvent `dynamodbav:"event" json:"event"`
	QualityScore   float64               `dynamodbav:"quality_score" json:"quality_score"`
	QualityLevel   string                `dynamodbav:"quality_level" json:"quality_level"`
	UpdatedAt      time.Time             `dynamodbav:"updated_at" json:"updated_at"`
}

// EventStorageService persists canonical events in DynamoDB
type EventStorageService struct {
	client *dynamodb.Client
	table  string
}

// NewEventStorageService creates a storage service over an existing
// DynamoDB client.
func NewEventStorageService(client *dynamodb.Client, table string) *EventStorageService {
	if table == "" {
		table = defaultEventsTable
	}
	return &EventStorageService{client: client, table: table}
}

// NewEventStorageServiceFromEnv builds the client from the default AWS
// config chain, with the table name from EVENTS_TABLE_NAME.
func NewEventStorageServiceFromEnv(ctx context.Context) (*EventStorageService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewEventStorageService(dynamodb.NewFromConfig(cfg), os.Getenv("EVENTS_TABLE_NAME")), nil
}

// Upsert writes an event keyed by its event id. The write is
// idempotent: same id overwrites, never duplicates.
func (s *EventStorageService) Upsert(ctx context.Context, event models.CanonicalEvent, report models.QualityReport) error {
	if event.EventID == "" {
		return fmt.Errorf("cannot store event without an event_id")
	}

	stored := StoredEvent{
		EventID:        event.EventID,
		SourcePlatform: event.Provenance.SourcePlatform,
		Event:          event,
		QualityScore:   report.OverallScore,
		QualityLevel:   report.Level,
		UpdatedAt:      time.Now().UTC(),
	}

	item, err := attributevalue.MarshalMap(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert event %s: %w", event.EventID, err)
	}

	return nil
}

// Get retrieves one stored event by id
func (s *EventStorageService) Get(ctx context.Context, eventID string) (*StoredEvent, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("event %s not found", eventID)
	}

	var stored StoredEvent
	if err := attributevalue.UnmarshalMap(result.Item, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event %s: %w", eventID, err)
	}
	return &stored, nil
}

// Delete removes a stored event
func (s *EventStorageService) Delete(ctx context.Context, eventID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

// ListBySourcePlatform queries the platform GSI
func (s *EventStorageService) ListBySourcePlatform(ctx context.Context, platform string) ([]StoredEvent, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(sourcePlatformIndex),
		KeyConditionExpression: aws.String("source_platform = :platform"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":platform": &types.AttributeValueMemberS{Value: platform},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query events for platform %s: %w", platform, err)
	}

	var events []StoredEvent
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events for platform %s: %w", platform, err)
	}
	return events, nil
}

// UpsertAll writes a batch of results, skipping failures and reporting
// how many landed.
func (s *EventStorageService) UpsertAll(ctx context.Context, events []models.CanonicalEvent, reports []models.QualityReport) (int, error) {
	if len(events) != len(reports) {
		return 0, fmt.Errorf("events and reports length mismatch: %d vs %d", len(events), len(reports))
	}

	stored := 0
	for i := range events {
		if err := s.Upsert(ctx, events[i], reports[i]); err != nil {
			log.Printf("[STORAGE] upsert failed for %s: %v", events[i].EventID, err)
			continue
		}
		stored++
	}
	return stored, nil
}
