// Package amenity finds points of interest around a coordinate through an
// Overpass-style provider, caches them spatially, and aggregates them into
// per-radius statistics.
package amenity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Amenity is a single point of interest.
type Amenity struct {
	Type             string          `json:"type"`
	Name             string          `json:"name,omitempty"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	FormattedAddress string          `json:"formatted_address,omitempty"`
	Provider         string          `json:"provider"`
	ProviderPlaceID  string          `json:"provider_place_id,omitempty"`
	Raw              json.RawMessage `json:"raw,omitempty"`
	LastSeenAt       time.Time       `json:"last_seen_at"`
}

// PlaceKey is the cache identity within a provider: the provider's place id,
// or "{type}:{lat},{lon}" at six decimals when the provider supplied none.
func (a Amenity) PlaceKey() string {
	if a.ProviderPlaceID != "" {
		return a.ProviderPlaceID
	}
	return SyntheticPlaceID(a.Type, a.Latitude, a.Longitude)
}

// SyntheticPlaceID builds the fallback place key for id-less POIs.
func SyntheticPlaceID(amenityType string, lat, lon float64) string {
	return fmt.Sprintf("%s:%.6f,%.6f", amenityType, lat, lon)
}
