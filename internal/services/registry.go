package services

import (
	"encoding/json"
	"fmt"
	"os"
)

// Source is one listing site the aggregator scrapes
type Source struct {
	Name     string   `json:"name"`
	Platform string   `json:"platform"`
	Domain   string   `json:"domain"`
	URLs     []string `json:"urls"`
	Enabled  bool     `json:"enabled"`
}

// SourceRegistry holds the configured scrape targets
type SourceRegistry struct {
	sources []Source
}

// NewSourceRegistry returns the registry with the built-in source set
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{sources: defaultSources()}
}

// LoadSourceRegistry reads a registry from a JSON file
func LoadSourceRegistry(path string) (*SourceRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source registry: %w", err)
	}

	var sources []Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parsing source registry: %w", err)
	}
	for i, source := range sources {
		if source.Platform == "" || len(source.URLs) == 0 {
			return nil, fmt.Errorf("source %d: platform and urls are required", i)
		}
	}

	return &SourceRegistry{sources: sources}, nil
}

// Enabled returns the sources that should be scraped
func (r *SourceRegistry) Enabled() []Source {
	var enabled []Source
	for _, source := range r.sources {
		if source.Enabled {
			enabled = append(enabled, source)
		}
	}
	return enabled
}

// Filter keeps sources matching any of the given names or domains.
// An empty filter keeps everything.
func (r *SourceRegistry) Filter(names []string) []Source {
	if len(names) == 0 {
		return r.Enabled()
	}

	var filtered []Source
	for _, source := range r.Enabled() {
		for _, name := range names {
			if source.Name == name || source.Domain == name || source.Platform == name {
				filtered = append(filtered, source)
				break
			}
		}
	}
	return filtered
}

func defaultSources() []Source {
	return []Source{
		{
			Name:     "Tickets Ibiza",
			Platform: "ticketsibiza",
			Domain:   "ticketsibiza.com",
			URLs: []string{
				"https://ticketsibiza.com/events/",
			},
			Enabled: true,
		},
		{
			Name:     "Club Tickets",
			Platform: "clubtickets",
			Domain:   "clubtickets.com",
			URLs: []string{
				"https://www.clubtickets.com/ibiza",
			},
			Enabled: true,
		},
		{
			Name:     "Ibiza Spotlight",
			Platform: "ibiza-spotlight",
			Domain:   "ibiza-spotlight.com",
			URLs: []string{
				"https://www.ibiza-spotlight.com/night/events",
			},
			Enabled: true,
		},
	}
}
