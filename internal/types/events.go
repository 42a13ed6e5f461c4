// Package types provides type definitions for structured data used throughout the events map builder.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EventRecord represents a single event row after normalization.
// Lat and Lon are nil when the location could not be geocoded or is empty,
// in which case the consuming map page simply does not plot the event.
type EventRecord struct {
	ID        string `json:"id"`
	Region    string `json:"region"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Location  string `json:"location"`
	// LocationKey is the canonical form of Location used as the geocode
	// cache key: lowercased, trimmed, inner whitespace collapsed.
	LocationKey string   `json:"location_key,omitempty"`
	EventType   string   `json:"event_type"`
	Notes       string   `json:"notes"`
	Lead        string   `json:"lead"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

// Meta describes a single build of the output document.
type Meta struct {
	GeneratedAt     string `json:"generated_at"`
	BuildID         string `json:"build_id"`
	SourceExcel     string `json:"source_excel"`
	EventCount      int    `json:"event_count"`
	UniqueLocations int    `json:"unique_locations"`
}

// OutputDocument is the full document written to the output JSON file.
// It is regenerated wholesale on every build; there is no merge with
// prior output.
type OutputDocument struct {
	Meta   Meta          `json:"meta"`
	Events []EventRecord `json:"events"`
}

// NewMeta assembles build metadata with a UTC generation timestamp.
func NewMeta(buildID, sourceExcel string, eventCount, uniqueLocations int) Meta {
	return Meta{
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		BuildID:         buildID,
		SourceExcel:     sourceExcel,
		EventCount:      eventCount,
		UniqueLocations: uniqueLocations,
	}
}
