package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"ibiza-events-aggregator/internal/models"
)

// EnrichmentService fills gaps on low quality events with an LLM pass
// over the page text. It runs outside the core pipeline, only for
// records the pipeline already tagged as low quality, so a model
// failure never affects normal processing.
type EnrichmentService struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// EnrichmentResult carries the model's gap-fill suggestions. Only
// fields the pipeline left empty are ever applied.
type EnrichmentResult struct {
	VenueName    string   `json:"venue_name,omitempty"`
	DateText     string   `json:"date_text,omitempty"`
	Performers   []string `json:"performers,omitempty"`
	Description  string   `json:"description,omitempty"`
	TokensUsed   int      `json:"tokens_used"`
	ProcessingMS int64    `json:"processing_ms"`
}

// NewEnrichmentService creates the service; it fails rather than
// producing a client that errors on first use.
func NewEnrichmentService() (*EnrichmentService, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	return &EnrichmentService{
		client:      openai.NewClient(apiKey),
		model:       "gpt-4o-mini",
		temperature: 0.1,
		maxTokens:   1000,
	}, nil
}

// EnrichEvent asks the model for the fields the pipeline could not
// extract. pageText should be the visible text of the source page.
func (e *EnrichmentService) EnrichEvent(ctx context.Context, event *models.CanonicalEvent, pageText string) (*EnrichmentResult, error) {
	if len(pageText) < 200 {
		return nil, fmt.Errorf("page text too short (%d chars) to enrich from", len(pageText))
	}

	missing := missingFields(event)
	if len(missing) == 0 {
		return &EnrichmentResult{}, nil
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: enrichmentSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: e.buildPrompt(event, pageText, missing)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("enrichment request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("enrichment returned no choices")
	}

	var result EnrichmentResult
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse enrichment response: %w", err)
	}

	result.TokensUsed = resp.Usage.TotalTokens
	result.ProcessingMS = time.Since(start).Milliseconds()

	log.Printf("[ENRICH] event=%s fields=%v tokens=%d", event.EventID, missing, result.TokensUsed)
	return &result, nil
}

// Apply copies suggestions into the event, touching only fields the
// pipeline left empty.
func (e *EnrichmentService) Apply(event *models.CanonicalEvent, result *EnrichmentResult) {
	if result.VenueName != "" && event.Venue == nil {
		event.Venue = &models.Venue{
			VenueID: models.GenerateVenueID(result.VenueName),
			Name:    result.VenueName,
		}
	}
	if result.DateText != "" && event.DateTime == nil {
		event.DateTime = &models.EventDateTime{DisplayText: result.DateText}
	}
	if len(result.Performers) > 0 && len(event.Performers) == 0 {
		for i, name := range result.Performers {
			role := models.RoleSupport
			if i == 0 {
				role = models.RoleHeadliner
			}
			event.Performers = append(event.Performers, models.Performer{
				ActID: models.GenerateActID(name),
				Name:  name,
				Role:  role,
			})
		}
	}
	if result.Description != "" && event.Content == nil {
		event.Content = &models.Content{Description: result.Description}
	}
}

const enrichmentSystemPrompt = `You extract event details from Ibiza party listing pages.
Respond with a single JSON object containing only the requested keys.
Use null for anything the page does not state. Never invent venues,
dates or artist names.`

func (e *EnrichmentService) buildPrompt(event *models.CanonicalEvent, pageText string, missing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event title: %s\n", event.Title)
	fmt.Fprintf(&b, "Missing fields to find: %s\n", strings.Join(missing, ", "))
	b.WriteString("Page text:\n")

	if len(pageText) > 6000 {
		pageText = pageText[:6000]
	}
	b.WriteString(pageText)

	return b.String()
}

func missingFields(event *models.CanonicalEvent) []string {
	var missing []string
	if event.Venue == nil {
		missing = append(missing, "venue_name")
	}
	if event.DateTime == nil {
		missing = append(missing, "date_text")
	}
	if len(event.Performers) == 0 {
		missing = append(missing, "performers")
	}
	if event.Content == nil {
		missing = append(missing, "description")
	}
	return missing
}
