package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// BoundingBox is a rectangular lat/lng region used for coordinate
// plausibility checks.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether the coordinates fall inside the box
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// IbizaBounds covers Ibiza and Formentera with a little slack for
// boats and beach venues.
var IbizaBounds = BoundingBox{MinLat: 38.6, MaxLat: 39.2, MinLng: 1.1, MaxLng: 1.7}

// ParseCoordinate parses a single scraped coordinate value
func ParseCoordinate(s string) (float64, error) {
	s = CleanText(s)
	if s == "" {
		return 0, fmt.Errorf("empty coordinate")
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	return value, nil
}

// ParseCoordinatePair parses a "lat,lng" fragment
func ParseCoordinatePair(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected lat,lng pair, got %q", s)
	}
	lat, err = ParseCoordinate(parts[0])
	if err != nil {
		return 0, 0, err
	}
	lng, err = ParseCoordinate(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

// ValidCoordinates checks the values are on the globe at all
func ValidCoordinates(lat, lng float64) bool {
	if lat == 0 && lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
