// Package model holds the persisted entities: projects, their candidate
// locations, amenity statistics and scores.
package model

import (
	"time"

	"github.com/sells-group/locality-cli/pkg/geocode"
)

// GeocodingStatus tracks a project's geocoding lifecycle.
type GeocodingStatus string

const (
	GeocodingNotGeocoded GeocodingStatus = "NOT_GEOCODED"
	GeocodingPending     GeocodingStatus = "PENDING"
	GeocodingSuccess     GeocodingStatus = "SUCCESS"
	GeocodingFailed      GeocodingStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s GeocodingStatus) Valid() bool {
	switch s {
	case GeocodingNotGeocoded, GeocodingPending, GeocodingSuccess, GeocodingFailed:
		return true
	}
	return false
}

// Project is a property whose location is being resolved and scored.
type Project struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Address             geocode.AddressParts `json:"address"`
	NormalizedAddress   string               `json:"normalized_address,omitempty"`
	Latitude            *float64             `json:"latitude,omitempty"`
	Longitude           *float64             `json:"longitude,omitempty"`
	GeocodingStatus     GeocodingStatus      `json:"geocoding_status"`
	GeocodingSource     string               `json:"geocoding_source,omitempty"`
	GeoPrecision        string               `json:"geo_precision,omitempty"`
	GeoConfidence       *float64             `json:"geo_confidence,omitempty"`
	GeoFormattedAddress string               `json:"geo_formatted_address,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// HasCoordinates reports whether the project has a canonical point.
func (p *Project) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// SourceType names where a candidate location came from.
type SourceType string

const (
	SourceManualPin         SourceType = "manual_pin"
	SourceRegistryPin       SourceType = "registry_pin"
	SourceGeocodeNormalized SourceType = "geocode_normalized"
	SourceDistrictCentroid  SourceType = "district_centroid"
	SourceTehsilCentroid    SourceType = "tehsil_centroid"
	SourceOther             SourceType = "other"
)

// ProjectLocation is one candidate coordinate for a project. A project may
// have many; one is chosen as canonical at a time.
type ProjectLocation struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"project_id"`
	SourceType       SourceType `json:"source_type"`
	PrecisionLevel   string     `json:"precision_level,omitempty"`
	ConfidenceScore  *float64   `json:"confidence_score,omitempty"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	FormattedAddress string     `json:"formatted_address,omitempty"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
}

// AmenitySliceStats is one (type, radius) statistics row for a project.
type AmenitySliceStats struct {
	ProjectID   string    `json:"project_id"`
	AmenityType string    `json:"amenity_type"`
	RadiusKM    float64   `json:"radius_km"`
	Count       int       `json:"count_within_radius"`
	NearestKM   *float64  `json:"nearest_distance_km"`
	ComputedAt  time.Time `json:"computed_at"`
}
