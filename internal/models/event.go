package models

import (
	"fmt"
	"time"
)

// EventsOutput represents the complete JSON structure for exported canonical events
type EventsOutput struct {
	Metadata EventsMetadata   `json:"metadata"`
	Events   []CanonicalEvent `json:"events"`
}

// EventsMetadata contains metadata about the exported dataset
type EventsMetadata struct {
	LastUpdated time.Time `json:"lastUpdated"`
	TotalEvents int       `json:"totalEvents"`
	Sources     []string  `json:"sources"`
	Version     string    `json:"version"`
	Region      string    `json:"region"`
}

// CanonicalEvent is the single normalized representation of an event,
// independent of the source site it was scraped from.
//
// Optional groups are nil when the source never produced them, so a
// missing field is never confused with a present-but-zero value.
type CanonicalEvent struct {
	EventID     string `json:"event_id"`
	CanonicalID string `json:"canonical_id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Status      string `json:"status"`

	DateTime   *EventDateTime `json:"datetime,omitempty"`
	Venue      *Venue         `json:"venue,omitempty"`
	Performers []Performer    `json:"performers,omitempty"`
	Ticketing  *Ticketing     `json:"ticketing,omitempty"`
	Content    *Content       `json:"content,omitempty"`
	Media      *Media         `json:"media,omitempty"`

	Provenance Provenance `json:"provenance"`
}

// EventDateTime holds the normalized schedule for an event.
// StartUTC and EndUTC are always UTC; DisplayText preserves the
// original locale string unmodified for audit.
type EventDateTime struct {
	StartUTC    *time.Time `json:"start_utc,omitempty"`
	EndUTC      *time.Time `json:"end_utc,omitempty"`
	Timezone    string     `json:"timezone,omitempty"`
	DisplayText string     `json:"display_text,omitempty"`
	Recurring   bool       `json:"recurring"`
}

// Venue describes where an event takes place
type Venue struct {
	VenueID     string       `json:"venue_id"`
	Name        string       `json:"name"`
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Stages      []string     `json:"stages,omitempty"`
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Performer is a single act on the lineup. The first-listed performer
// is the headliner by convention unless the source marked one explicitly.
type Performer struct {
	ActID string `json:"act_id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Ticketing contains price and purchase information
type Ticketing struct {
	Tiers       []TicketTier `json:"tiers,omitempty"`
	IsFree      bool         `json:"is_free"`
	MinPrice    *float64     `json:"min_price,omitempty"`
	Currency    string       `json:"currency,omitempty"`
	PurchaseURL string       `json:"purchase_url,omitempty"`
}

// TicketTier is a single named price point
type TicketTier struct {
	Name     string  `json:"name,omitempty"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
}

// Content holds free-text event content
type Content struct {
	Description string `json:"description"`
}

// Media holds image references for the event
type Media struct {
	ImageURLs []string `json:"image_urls"`
}

// Provenance tracks where the event data came from. SourcePlatform and
// SourceURL are mandatory at construction time.
type Provenance struct {
	SourcePlatform string    `json:"source_platform"`
	SourceURL      string    `json:"source_url"`
	ScrapedAt      time.Time `json:"scraped_at"`
}

// Event type constants
const (
	TypeClubNight = "club-night"
	TypeConcert   = "concert"
	TypeFestival  = "festival"
	TypeDayParty  = "day-party"
	TypeEvent     = "event"
)

// Event status constants
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
	StatusPostponed = "postponed"
	StatusSoldOut   = "sold-out"
)

// Performer role constants
const (
	RoleHeadliner = "headliner"
	RoleSupport   = "support"
)

// NewCanonicalEvent constructs the minimal valid event. Title, source
// platform and source URL are required; everything else is attached by
// the schema mapper as the merged record provides it.
func NewCanonicalEvent(title, sourcePlatform, sourceURL string, scrapedAt time.Time) (*CanonicalEvent, error) {
	if title == "" {
		return nil, fmt.Errorf("canonical event requires a title")
	}
	if sourcePlatform == "" {
		return nil, fmt.Errorf("canonical event requires a source platform")
	}
	if sourceURL == "" {
		return nil, fmt.Errorf("canonical event requires a source URL")
	}

	return &CanonicalEvent{
		Title:  title,
		Type:   TypeEvent,
		Status: StatusScheduled,
		Provenance: Provenance{
			SourcePlatform: sourcePlatform,
			SourceURL:      sourceURL,
			ScrapedAt:      scrapedAt,
		},
	}, nil
}

// ValidateEventType checks if the event type is valid
func ValidateEventType(eventType string) bool {
	validTypes := []string{
		TypeClubNight,
		TypeConcert,
		TypeFestival,
		TypeDayParty,
		TypeEvent,
	}

	for _, validType := range validTypes {
		if eventType == validType {
			return true
		}
	}
	return false
}

// ValidateEventStatus checks if the event status is valid
func ValidateEventStatus(status string) bool {
	validStatuses := []string{
		StatusScheduled,
		StatusCancelled,
		StatusPostponed,
		StatusSoldOut,
	}

	for _, validStatus := range validStatuses {
		if status == validStatus {
			return true
		}
	}
	return false
}

// NewEventsMetadata creates metadata for an events export
func NewEventsMetadata(totalEvents int, sources []string) EventsMetadata {
	return EventsMetadata{
		LastUpdated: time.Now(),
		TotalEvents: totalEvents,
		Sources:     sources,
		Version:     "1.0.0",
		Region:      "Ibiza",
	}
}
